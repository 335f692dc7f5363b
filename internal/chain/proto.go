package chain

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"OroswapBot/internal/model"
)

// Type URLs and query paths used by the client.
const (
	typeMsgExecuteContract = "/cosmwasm.wasm.v1.MsgExecuteContract"
	typeSecp256k1PubKey    = "/cosmos.crypto.secp256k1.PubKey"
	typeBaseAccount        = "/cosmos.auth.v1beta1.BaseAccount"

	pathBalance    = "/cosmos.bank.v1beta1.Query/Balance"
	pathSmartQuery = "/cosmwasm.wasm.v1.Query/SmartContractState"
	pathAccount    = "/cosmos.auth.v1beta1.Query/Account"
	pathSimulate   = "/cosmos.tx.v1beta1.Service/Simulate"
)

// Sign modes from cosmos.tx.signing.v1beta1.SignMode.
const (
	signModeUnspecified = 0
	signModeDirect      = 1
)

var errTruncated = errors.New("truncated protobuf message")

// builder appends protobuf fields. Scalar zero values are omitted like proto3 does.
type builder struct {
	b []byte
}

func (w *builder) string(num protowire.Number, v string) *builder {
	if v == "" {
		return w
	}
	return w.rawBytes(num, []byte(v))
}

func (w *builder) bytes(num protowire.Number, v []byte) *builder {
	if len(v) == 0 {
		return w
	}
	return w.rawBytes(num, v)
}

// rawBytes always writes the field, including empty values inside repeated fields.
func (w *builder) rawBytes(num protowire.Number, v []byte) *builder {
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendBytes(w.b, v)
	return w
}

func (w *builder) uint(num protowire.Number, v uint64) *builder {
	if v == 0 {
		return w
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, v)
	return w
}

func (w *builder) done() []byte { return w.b }

func encodeAny(typeURL string, value []byte) []byte {
	return new(builder).string(1, typeURL).bytes(2, value).done()
}

func encodeCoin(c model.Coin) []byte {
	return new(builder).string(1, c.Denom).string(2, c.Amount).done()
}

func encodeMsgExecuteContract(sender, contract string, msg []byte, funds []model.Coin) []byte {
	w := new(builder).string(1, sender).string(2, contract).bytes(3, msg)
	for _, c := range model.SortCoins(funds) {
		w.rawBytes(5, encodeCoin(c))
	}
	return w.done()
}

func encodeTxBody(messages [][]byte, memo string) []byte {
	w := new(builder)
	for _, m := range messages {
		w.rawBytes(1, m)
	}
	return w.string(2, memo).done()
}

func encodeAuthInfo(pubKey []byte, sequence uint64, signMode uint64, fee []model.Coin, gasLimit uint64) []byte {
	pk := encodeAny(typeSecp256k1PubKey, new(builder).bytes(1, pubKey).done())
	single := new(builder).uint(1, signMode).done()
	modeInfo := new(builder).rawBytes(1, single).done()
	signerInfo := new(builder).rawBytes(1, pk).rawBytes(2, modeInfo).uint(3, sequence).done()

	feeMsg := new(builder)
	for _, c := range fee {
		feeMsg.rawBytes(1, encodeCoin(c))
	}
	feeMsg.uint(2, gasLimit)

	return new(builder).rawBytes(1, signerInfo).rawBytes(2, feeMsg.done()).done()
}

func encodeSignDoc(body, authInfo []byte, chainID string, accountNumber uint64) []byte {
	return new(builder).bytes(1, body).bytes(2, authInfo).string(3, chainID).uint(4, accountNumber).done()
}

func encodeTxRaw(body, authInfo []byte, signatures [][]byte) []byte {
	w := new(builder).bytes(1, body).bytes(2, authInfo)
	for _, s := range signatures {
		w.rawBytes(3, s)
	}
	return w.done()
}

// field is one decoded protobuf field. Only varint and length-delimited values are kept.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func parseFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", errTruncated, protowire.ParseError(n))
		}
		b = b[n:]
		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", errTruncated, protowire.ParseError(m))
			}
			f.varint, n = v, m
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", errTruncated, protowire.ParseError(m))
			}
			f.bytes, n = v, m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %v", errTruncated, protowire.ParseError(n))
			}
		}
		b = b[n:]
		out = append(out, f)
	}
	return out, nil
}

// lookup returns the last occurrence of a field, matching proto3 merge semantics.
func lookup(fields []field, num protowire.Number) (field, bool) {
	var (
		found field
		ok    bool
	)
	for _, f := range fields {
		if f.num == num {
			found, ok = f, true
		}
	}
	return found, ok
}

func messageField(b []byte, num protowire.Number) ([]byte, error) {
	fields, err := parseFields(b)
	if err != nil {
		return nil, err
	}
	f, _ := lookup(fields, num)
	return f.bytes, nil
}

func decodeCoin(b []byte) (model.Coin, error) {
	fields, err := parseFields(b)
	if err != nil {
		return model.Coin{}, err
	}
	denom, _ := lookup(fields, 1)
	amount, _ := lookup(fields, 2)
	return model.Coin{Denom: string(denom.bytes), Amount: string(amount.bytes)}, nil
}

// Account carries the signer fields of a BaseAccount.
type Account struct {
	Address  string
	Number   uint64
	Sequence uint64
}

func decodeAccountResponse(b []byte) (Account, error) {
	anyBytes, err := messageField(b, 1)
	if err != nil {
		return Account{}, err
	}
	fields, err := parseFields(anyBytes)
	if err != nil {
		return Account{}, err
	}
	typeURL, _ := lookup(fields, 1)
	value, _ := lookup(fields, 2)
	if string(typeURL.bytes) != typeBaseAccount {
		return Account{}, fmt.Errorf("unsupported account type %q", typeURL.bytes)
	}
	acc, err := parseFields(value.bytes)
	if err != nil {
		return Account{}, err
	}
	addr, _ := lookup(acc, 1)
	number, _ := lookup(acc, 3)
	seq, _ := lookup(acc, 4)
	return Account{Address: string(addr.bytes), Number: number.varint, Sequence: seq.varint}, nil
}

// GasInfo is the simulation estimate.
type GasInfo struct {
	GasWanted uint64
	GasUsed   uint64
}

func decodeSimulateResponse(b []byte) (GasInfo, error) {
	info, err := messageField(b, 1)
	if err != nil {
		return GasInfo{}, err
	}
	fields, err := parseFields(info)
	if err != nil {
		return GasInfo{}, err
	}
	wanted, _ := lookup(fields, 1)
	used, _ := lookup(fields, 2)
	return GasInfo{GasWanted: wanted.varint, GasUsed: used.varint}, nil
}
