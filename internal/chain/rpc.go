package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// rpcRequest represents a JSON-RPC 2.0 request with named params, as CometBFT accepts them.
type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      uint64         `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *rpcError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("RPC error %d: %s: %s", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

type abciResponse struct {
	Response struct {
		Code      uint32 `json:"code"`
		Log       string `json:"log"`
		Value     []byte `json:"value"`
		Codespace string `json:"codespace"`
	} `json:"response"`
}

type statusResult struct {
	NodeInfo struct {
		Network string `json:"network"`
	} `json:"node_info"`
}

type broadcastResult struct {
	Code      uint32 `json:"code"`
	Log       string `json:"log"`
	Codespace string `json:"codespace"`
	Hash      string `json:"hash"`
}

type txResult struct {
	Hash     string `json:"hash"`
	Height   string `json:"height"`
	TxResult struct {
		Code      uint32 `json:"code"`
		Log       string `json:"log"`
		Codespace string `json:"codespace"`
		GasWanted string `json:"gas_wanted"`
		GasUsed   string `json:"gas_used"`
	} `json:"tx_result"`
}

// call performs one JSON-RPC call. There are no retries; the caller decides what a failure means.
func (c *Client) call(ctx context.Context, method string, params map[string]any, result any) (err error) {
	start := time.Now()
	defer func() {
		if c.observe != nil {
			c.observe(method, time.Since(start), err)
		}
	}()

	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return networkError(method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(method, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK && len(respBody) == 0 {
		return networkError(method, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return networkError(method, fmt.Errorf("unmarshal response (status %d): %w", resp.StatusCode, err))
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) status(ctx context.Context) (*statusResult, error) {
	var res statusResult
	if err := c.call(ctx, "status", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// abciQuery runs a gRPC-style query through the node and returns the raw protobuf response.
func (c *Client) abciQuery(ctx context.Context, path string, data []byte) ([]byte, error) {
	var res abciResponse
	params := map[string]any{
		"path":  path,
		"data":  hex.EncodeToString(data),
		"prove": false,
	}
	if err := c.call(ctx, "abci_query", params, &res); err != nil {
		return nil, err
	}
	if res.Response.Code != 0 {
		return nil, rejection(path, res.Response.Code, res.Response.Codespace, res.Response.Log)
	}
	return res.Response.Value, nil
}

func (c *Client) broadcastTxSync(ctx context.Context, tx []byte) (*broadcastResult, error) {
	var res broadcastResult
	if err := c.call(ctx, "broadcast_tx_sync", map[string]any{"tx": tx}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) tx(ctx context.Context, hash []byte) (*txResult, error) {
	var res txResult
	if err := c.call(ctx, "tx", map[string]any{"hash": hash, "prove": false}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
