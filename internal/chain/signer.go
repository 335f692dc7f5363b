package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"OroswapBot/internal/model"
	"OroswapBot/internal/wallet"
)

// ExecuteRequest is one MsgExecuteContract. GasLimit zero means "auto": simulate and adjust.
type ExecuteRequest struct {
	Sender   string
	Contract string
	Msg      any
	Memo     string
	Funds    []model.Coin
	GasLimit uint64
}

// TxResult describes a transaction included in a block.
type TxResult struct {
	Hash      string
	Height    int64
	GasWanted int64
	GasUsed   int64
	Fee       model.Coin
}

// SigningClient sends transactions on behalf of one identity.
type SigningClient struct {
	*Client
	id      *wallet.Identity
	chainID string
}

// Address returns the signer address.
func (s *SigningClient) Address() string { return s.id.Address() }

// Execute signs, broadcasts and waits for a contract execution.
func (s *SigningClient) Execute(ctx context.Context, req ExecuteRequest) (*TxResult, error) {
	if req.Sender == "" {
		req.Sender = s.id.Address()
	}
	if req.Sender != s.id.Address() {
		return nil, fmt.Errorf("sender %s does not match signer %s", req.Sender, s.id.Address())
	}

	msg, err := json.Marshal(req.Msg)
	if err != nil {
		return nil, fmt.Errorf("marshal execute msg: %w", err)
	}
	anyMsg := encodeAny(typeMsgExecuteContract, encodeMsgExecuteContract(req.Sender, req.Contract, msg, req.Funds))
	body := encodeTxBody([][]byte{anyMsg}, req.Memo)

	acc, err := s.Account(ctx, req.Sender)
	if err != nil {
		return nil, err
	}

	gasLimit := req.GasLimit
	if gasLimit == 0 {
		info, err := s.simulate(ctx, body, acc.Sequence)
		if err != nil {
			return nil, err
		}
		gasLimit = adjustGas(info.GasUsed, s.gasAdjustment)
	}
	fee := s.gasPrice.Fee(gasLimit)

	authInfo := encodeAuthInfo(s.id.PubKey(), acc.Sequence, signModeDirect, []model.Coin{fee}, gasLimit)
	sig, err := s.id.Sign(encodeSignDoc(body, authInfo, s.chainID, acc.Number))
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	txBytes := encodeTxRaw(body, authInfo, [][]byte{sig})

	res, err := s.broadcastTxSync(ctx, txBytes)
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, rejection("broadcast_tx_sync", res.Code, res.Codespace, res.Log)
	}

	hash := TxHash(txBytes)
	result, err := s.waitForTx(ctx, hash)
	if err != nil {
		return nil, err
	}
	result.Fee = fee
	return result, nil
}

func (s *SigningClient) simulate(ctx context.Context, body []byte, sequence uint64) (GasInfo, error) {
	authInfo := encodeAuthInfo(s.id.PubKey(), sequence, signModeUnspecified, nil, 0)
	txBytes := encodeTxRaw(body, authInfo, [][]byte{{}})
	resp, err := s.abciQuery(ctx, pathSimulate, new(builder).bytes(2, txBytes).done())
	if err != nil {
		return GasInfo{}, fmt.Errorf("simulate: %w", err)
	}
	info, err := decodeSimulateResponse(resp)
	if err != nil {
		return GasInfo{}, fmt.Errorf("decode simulation: %w", err)
	}
	if info.GasUsed == 0 {
		return GasInfo{}, fmt.Errorf("simulation returned no gas estimate")
	}
	return info, nil
}

// waitForTx polls until the transaction is indexed or the confirmation timeout passes.
func (c *Client) waitForTx(ctx context.Context, hash string) (*TxResult, error) {
	raw, err := hex.DecodeString(hash)
	if err != nil {
		return nil, fmt.Errorf("decode tx hash: %w", err)
	}
	deadline := time.Now().Add(c.txTimeout)

	for {
		res, err := c.tx(ctx, raw)
		switch {
		case err == nil:
			if res.TxResult.Code != 0 {
				return nil, rejection("tx "+hash, res.TxResult.Code, res.TxResult.Codespace, res.TxResult.Log)
			}
			return &TxResult{
				Hash:      hash,
				Height:    parseInt64(res.Height),
				GasWanted: parseInt64(res.TxResult.GasWanted),
				GasUsed:   parseInt64(res.TxResult.GasUsed),
			}, nil
		case !pending(err):
			return nil, err
		}

		if time.Now().Add(c.pollInterval).After(deadline) {
			return nil, &Error{
				Kind: KindTimeout,
				Op:   "tx " + hash,
				Err:  fmt.Errorf("not included after %s", c.txTimeout),
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// pending reports whether a tx lookup failure means "not indexed yet".
func pending(err error) bool {
	var re *rpcError
	if errors.As(err, &re) {
		return strings.Contains(re.Message, "not found") || strings.Contains(re.Data, "not found")
	}
	return KindOf(err) == KindNetwork
}

// TxHash is the uppercase hex sha256 of the raw transaction bytes.
func TxHash(txBytes []byte) string {
	sum := sha256.Sum256(txBytes)
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
