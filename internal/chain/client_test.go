package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OroswapBot/internal/model"
	"OroswapBot/internal/wallet"
)

const testKey = "1111111111111111111111111111111111111111111111111111111111111111"

// fakeNode is a minimal CometBFT JSON-RPC endpoint.
type fakeNode struct {
	t *testing.T

	mu        sync.Mutex
	calls     map[string]int
	queries   map[string][]byte
	abci      func(path string, data []byte) (uint32, string, []byte)
	broadcast func(tx []byte) broadcastResult
	txLookup  func(hash []byte, attempt int) (*txResult, *rpcError)
	lastTx    []byte
}

func newFakeNode(t *testing.T) (*fakeNode, *httptest.Server) {
	n := &fakeNode{t: t, calls: map[string]int{}, queries: map[string][]byte{}}
	srv := httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(srv.Close)
	return n, srv
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     uint64                     `json:"id"`
		Method string                     `json:"method"`
		Params map[string]json.RawMessage `json:"params"`
	}
	assert.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))

	n.mu.Lock()
	n.calls[req.Method]++
	attempt := n.calls[req.Method]
	n.mu.Unlock()

	var (
		result any
		rpcErr *rpcError
	)
	switch req.Method {
	case "status":
		result = map[string]any{"node_info": map[string]any{"network": "zig-test-2"}}
	case "abci_query":
		var path, data string
		assert.NoError(n.t, json.Unmarshal(req.Params["path"], &path))
		assert.NoError(n.t, json.Unmarshal(req.Params["data"], &data))
		raw, err := hex.DecodeString(data)
		assert.NoError(n.t, err)
		n.mu.Lock()
		n.queries[path] = raw
		n.mu.Unlock()
		code, codespace, value := n.abci(path, raw)
		log := ""
		if code != 0 {
			log = "query failed: " + codespace
		}
		result = map[string]any{"response": map[string]any{
			"code": code, "codespace": codespace, "log": log, "value": value,
		}}
	case "broadcast_tx_sync":
		var tx []byte
		assert.NoError(n.t, json.Unmarshal(req.Params["tx"], &tx))
		n.mu.Lock()
		n.lastTx = tx
		n.mu.Unlock()
		res := n.broadcast(tx)
		res.Hash = TxHash(tx)
		result = res
	case "tx":
		var hash []byte
		assert.NoError(n.t, json.Unmarshal(req.Params["hash"], &hash))
		res, e := n.txLookup(hash, attempt)
		result, rpcErr = res, e
	default:
		rpcErr = &rpcError{Code: -32601, Message: "Method not found"}
	}

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	assert.NoError(n.t, json.NewEncoder(w).Encode(resp))
}

func accountResponse(number, sequence uint64) []byte {
	base := new(builder).string(1, "zig1anything").uint(3, number).uint(4, sequence).done()
	return new(builder).rawBytes(1, encodeAny(typeBaseAccount, base)).done()
}

func simulateResponse(gasUsed uint64) []byte {
	info := new(builder).uint(1, gasUsed*2).uint(2, gasUsed).done()
	return new(builder).rawBytes(1, info).done()
}

func TestChainIDIsFetchedOnce(t *testing.T) {
	node, srv := newFakeNode(t)
	c := NewClient(srv.URL)

	for i := 0; i < 3; i++ {
		id, err := c.ChainID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "zig-test-2", id)
	}
	assert.Equal(t, 1, node.count("status"))
}

func TestChainIDPinned(t *testing.T) {
	node, srv := newFakeNode(t)
	c := NewClient(srv.URL, WithChainID("zig-pinned"))

	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "zig-pinned", id)
	assert.Zero(t, node.count("status"))
}

func TestBalance(t *testing.T) {
	node, srv := newFakeNode(t)
	node.abci = func(path string, data []byte) (uint32, string, []byte) {
		require.Equal(t, pathBalance, path)
		coin := encodeCoin(model.Coin{Denom: "uzig", Amount: "1500000"})
		return 0, "", new(builder).rawBytes(1, coin).done()
	}
	c := NewClient(srv.URL)

	coin, err := c.Balance(context.Background(), "zig1abc", "uzig")
	require.NoError(t, err)
	assert.Equal(t, "uzig", coin.Denom)
	assert.Equal(t, "1500000", coin.Amount)

	fields, err := parseFields(node.queries[pathBalance])
	require.NoError(t, err)
	addr, _ := lookup(fields, 1)
	denom, _ := lookup(fields, 2)
	assert.Equal(t, "zig1abc", string(addr.bytes))
	assert.Equal(t, "uzig", string(denom.bytes))
}

func TestBalanceMissingReadsZero(t *testing.T) {
	node, srv := newFakeNode(t)
	node.abci = func(string, []byte) (uint32, string, []byte) { return 0, "", nil }
	c := NewClient(srv.URL)

	coin, err := c.Balance(context.Background(), "zig1abc", "uoro")
	require.NoError(t, err)
	assert.Equal(t, "uoro", coin.Denom)
	assert.Equal(t, "0", coin.Amount)
	assert.True(t, coin.IsZero())
}

func TestQuerySmart(t *testing.T) {
	node, srv := newFakeNode(t)
	node.abci = func(path string, data []byte) (uint32, string, []byte) {
		require.Equal(t, pathSmartQuery, path)
		return 0, "", new(builder).bytes(1, []byte(`{"total_share":"42"}`)).done()
	}
	c := NewClient(srv.URL)

	var out struct {
		TotalShare string `json:"total_share"`
	}
	err := c.QuerySmart(context.Background(), "zig1pair", map[string]any{"pool": struct{}{}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "42", out.TotalShare)

	fields, err := parseFields(node.queries[pathSmartQuery])
	require.NoError(t, err)
	contract, _ := lookup(fields, 1)
	query, _ := lookup(fields, 2)
	assert.Equal(t, "zig1pair", string(contract.bytes))
	assert.JSONEq(t, `{"pool":{}}`, string(query.bytes))
}

func TestQueryRejectionIsClassified(t *testing.T) {
	tests := []struct {
		name      string
		code      uint32
		codespace string
		want      Kind
	}{
		{"wasm failure", 5, "wasm", KindRejected},
		{"insufficient funds", 5, "sdk", KindInsufficientFunds},
		{"unknown address", 9, "sdk", KindRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, srv := newFakeNode(t)
			node.abci = func(string, []byte) (uint32, string, []byte) { return tt.code, tt.codespace, nil }
			c := NewClient(srv.URL)

			_, err := c.Balance(context.Background(), "zig1abc", "uzig")
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
		})
	}
}

func TestNetworkErrorIsClassified(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.ChainID(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestExecuteSignsAndWaits(t *testing.T) {
	id, err := wallet.Parse(testKey, wallet.Options{})
	require.NoError(t, err)

	node, srv := newFakeNode(t)
	node.abci = func(path string, data []byte) (uint32, string, []byte) {
		switch path {
		case pathAccount:
			return 0, "", accountResponse(7, 3)
		case pathSimulate:
			return 0, "", simulateResponse(100000)
		}
		t.Errorf("unexpected query %s", path)
		return 0, "", nil
	}
	node.broadcast = func([]byte) broadcastResult { return broadcastResult{} }
	node.txLookup = func(hash []byte, attempt int) (*txResult, *rpcError) {
		if attempt == 1 {
			return nil, &rpcError{Code: -32603, Message: "Internal error", Data: "tx (ABCD) not found"}
		}
		res := &txResult{Height: "1234"}
		res.TxResult.GasUsed = "98000"
		res.TxResult.GasWanted = "140000"
		return res, nil
	}

	c := NewClient(srv.URL, WithConfirmation(time.Millisecond, time.Second))
	signer, err := c.Signer(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id.Address(), signer.Address())

	res, err := signer.Execute(context.Background(), ExecuteRequest{
		Contract: "zig1pair",
		Msg:      map[string]any{"withdraw_liquidity": struct{}{}},
		Memo:     "Withdraw",
		Funds:    []model.Coin{model.Coin{Denom: "uzig", Amount: "10"}},
	})
	require.NoError(t, err)
	assert.Equal(t, TxHash(node.lastTx), res.Hash)
	assert.Equal(t, int64(1234), res.Height)
	assert.Equal(t, int64(98000), res.GasUsed)
	assert.Equal(t, "4200", res.Fee.Amount)
	assert.Equal(t, "uzig", res.Fee.Denom)
	assert.Equal(t, 2, node.count("tx"))

	// Decode the broadcast TxRaw and verify the signature over the sign doc.
	raw, err := parseFields(node.lastTx)
	require.NoError(t, err)
	body, _ := lookup(raw, 1)
	authInfo, _ := lookup(raw, 2)
	sig, _ := lookup(raw, 3)
	require.Len(t, sig.bytes, 64)

	digest := sha256.Sum256(encodeSignDoc(body.bytes, authInfo.bytes, "zig-test-2", 7))
	assert.True(t, crypto.VerifySignature(id.PubKey(), digest[:], sig.bytes))

	auth, err := parseFields(authInfo.bytes)
	require.NoError(t, err)
	feeField, _ := lookup(auth, 2)
	fee, err := parseFields(feeField.bytes)
	require.NoError(t, err)
	gas, _ := lookup(fee, 2)
	assert.Equal(t, uint64(140000), gas.varint)

	signerInfo, _ := lookup(auth, 1)
	si, err := parseFields(signerInfo.bytes)
	require.NoError(t, err)
	seq, _ := lookup(si, 3)
	assert.Equal(t, uint64(3), seq.varint)

	// The message is a MsgExecuteContract carrying the JSON payload and memo.
	bodyFields, err := parseFields(body.bytes)
	require.NoError(t, err)
	memo, _ := lookup(bodyFields, 2)
	assert.Equal(t, "Withdraw", string(memo.bytes))
	anyMsg, _ := lookup(bodyFields, 1)
	anyFields, err := parseFields(anyMsg.bytes)
	require.NoError(t, err)
	typeURL, _ := lookup(anyFields, 1)
	assert.Equal(t, typeMsgExecuteContract, string(typeURL.bytes))
	value, _ := lookup(anyFields, 2)
	msgFields, err := parseFields(value.bytes)
	require.NoError(t, err)
	payload, _ := lookup(msgFields, 3)
	assert.JSONEq(t, `{"withdraw_liquidity":{}}`, string(payload.bytes))
}

func TestExecuteRejectedInBlock(t *testing.T) {
	id, err := wallet.Parse(testKey, wallet.Options{})
	require.NoError(t, err)

	node, srv := newFakeNode(t)
	node.abci = func(path string, _ []byte) (uint32, string, []byte) {
		if path == pathAccount {
			return 0, "", accountResponse(1, 0)
		}
		return 0, "", simulateResponse(50000)
	}
	node.broadcast = func([]byte) broadcastResult { return broadcastResult{} }
	node.txLookup = func([]byte, int) (*txResult, *rpcError) {
		res := &txResult{Height: "9"}
		res.TxResult.Code = 5
		res.TxResult.Codespace = "wasm"
		res.TxResult.Log = "Operation exceeds max spread limit"
		return res, nil
	}

	c := NewClient(srv.URL, WithChainID("zig-test-2"), WithConfirmation(time.Millisecond, time.Second))
	signer, err := c.Signer(context.Background(), id)
	require.NoError(t, err)

	_, err = signer.Execute(context.Background(), ExecuteRequest{Contract: "zig1pair", Msg: map[string]any{}})
	require.Error(t, err)
	assert.Equal(t, KindRejected, KindOf(err))
	assert.Contains(t, err.Error(), "max spread")
}

func TestExecuteBroadcastCheckTxFailure(t *testing.T) {
	id, err := wallet.Parse(testKey, wallet.Options{})
	require.NoError(t, err)

	node, srv := newFakeNode(t)
	node.abci = func(path string, _ []byte) (uint32, string, []byte) {
		if path == pathAccount {
			return 0, "", accountResponse(1, 0)
		}
		return 0, "", simulateResponse(50000)
	}
	node.broadcast = func([]byte) broadcastResult {
		return broadcastResult{Code: 5, Codespace: "sdk", Log: "spendable balance 1uzig is smaller than 1500uzig: insufficient funds"}
	}

	c := NewClient(srv.URL, WithChainID("zig-test-2"))
	signer, err := c.Signer(context.Background(), id)
	require.NoError(t, err)

	_, err = signer.Execute(context.Background(), ExecuteRequest{Contract: "zig1pair", Msg: map[string]any{}})
	require.Error(t, err)
	assert.Equal(t, KindInsufficientFunds, KindOf(err))
	assert.Zero(t, node.count("tx"))
}

func TestExecuteTimesOut(t *testing.T) {
	id, err := wallet.Parse(testKey, wallet.Options{})
	require.NoError(t, err)

	node, srv := newFakeNode(t)
	node.abci = func(path string, _ []byte) (uint32, string, []byte) {
		if path == pathAccount {
			return 0, "", accountResponse(1, 0)
		}
		return 0, "", simulateResponse(50000)
	}
	node.broadcast = func([]byte) broadcastResult { return broadcastResult{} }
	node.txLookup = func([]byte, int) (*txResult, *rpcError) {
		return nil, &rpcError{Code: -32603, Message: "Internal error", Data: "tx not found"}
	}

	c := NewClient(srv.URL, WithChainID("zig-test-2"), WithConfirmation(5*time.Millisecond, 30*time.Millisecond))
	signer, err := c.Signer(context.Background(), id)
	require.NoError(t, err)

	_, err = signer.Execute(context.Background(), ExecuteRequest{Contract: "zig1pair", Msg: map[string]any{}})
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestExecuteRejectsForeignSender(t *testing.T) {
	id, err := wallet.Parse(testKey, wallet.Options{})
	require.NoError(t, err)
	_, srv := newFakeNode(t)

	c := NewClient(srv.URL, WithChainID("zig-test-2"))
	signer, err := c.Signer(context.Background(), id)
	require.NoError(t, err)

	_, err = signer.Execute(context.Background(), ExecuteRequest{Sender: "zig1someoneelse", Contract: "zig1pair"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "does not match"))
}
