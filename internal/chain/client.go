// Package chain talks to a ZIGChain node over CometBFT JSON-RPC: bank and wasm
// queries, account lookup, simulation and signed MsgExecuteContract broadcasts.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"OroswapBot/internal/model"
	"OroswapBot/internal/wallet"
)

// Defaults for fee estimation and confirmation polling.
const (
	DefaultGasPrice         = "0.03uzig"
	DefaultGasAdjustment    = 1.4
	DefaultPollInterval     = 3 * time.Second
	DefaultBroadcastTimeout = 60 * time.Second
)

// Observer receives the duration and outcome of every RPC call.
type Observer func(method string, d time.Duration, err error)

// Client is a read-only connection to one node. It is safe for concurrent use.
type Client struct {
	endpoint  string
	http      *http.Client
	requestID atomic.Uint64
	observe   Observer

	gasPrice      GasPrice
	gasAdjustment float64
	pollInterval  time.Duration
	txTimeout     time.Duration

	mu      sync.Mutex
	chainID string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithChainID pins the chain id instead of asking the node for it.
func WithChainID(id string) Option {
	return func(c *Client) { c.chainID = id }
}

// WithGasPrice sets the price used for auto fees.
func WithGasPrice(p GasPrice) Option {
	return func(c *Client) { c.gasPrice = p }
}

// WithGasAdjustment sets the multiplier applied to simulated gas.
func WithGasAdjustment(f float64) Option {
	return func(c *Client) {
		if f > 0 {
			c.gasAdjustment = f
		}
	}
}

// WithConfirmation sets how often and how long to poll for inclusion.
func WithConfirmation(interval, timeout time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
		if timeout > 0 {
			c.txTimeout = timeout
		}
	}
}

// WithObserver registers a per-call hook, used for metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

// NewClient creates a client for the node at endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	gp, _ := ParseGasPrice(DefaultGasPrice)
	c := &Client{
		endpoint:      strings.TrimSpace(endpoint),
		http:          &http.Client{Timeout: 30 * time.Second},
		gasPrice:      gp,
		gasAdjustment: DefaultGasAdjustment,
		pollInterval:  DefaultPollInterval,
		txTimeout:     DefaultBroadcastTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChainID returns the configured chain id or the one the node reports, caching the answer.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.chainID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}

	st, err := c.status(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch node status: %w", err)
	}
	if st.NodeInfo.Network == "" {
		return "", fmt.Errorf("node status has no network id")
	}

	c.mu.Lock()
	c.chainID = st.NodeInfo.Network
	c.mu.Unlock()
	return st.NodeInfo.Network, nil
}

// Balance returns the bank balance of address in denom. Missing balances read as zero.
func (c *Client) Balance(ctx context.Context, address, denom string) (model.Coin, error) {
	req := new(builder).string(1, address).string(2, denom).done()
	resp, err := c.abciQuery(ctx, pathBalance, req)
	if err != nil {
		return model.Coin{}, fmt.Errorf("query balance %s: %w", denom, err)
	}
	coinBytes, err := messageField(resp, 1)
	if err != nil {
		return model.Coin{}, fmt.Errorf("decode balance: %w", err)
	}
	coin, err := decodeCoin(coinBytes)
	if err != nil {
		return model.Coin{}, fmt.Errorf("decode balance: %w", err)
	}
	if coin.Denom == "" {
		coin.Denom = denom
	}
	if coin.Amount == "" {
		coin.Amount = "0"
	}
	return coin, nil
}

// QuerySmart runs a contract smart query and decodes the JSON answer into out.
func (c *Client) QuerySmart(ctx context.Context, contract string, query, out any) error {
	payload, err := json.Marshal(query)
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}
	req := new(builder).string(1, contract).bytes(2, payload).done()
	resp, err := c.abciQuery(ctx, pathSmartQuery, req)
	if err != nil {
		return fmt.Errorf("smart query %s: %w", contract, err)
	}
	data, err := messageField(resp, 1)
	if err != nil {
		return fmt.Errorf("decode smart query: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal smart query: %w", err)
	}
	return nil
}

// Account returns the account number and sequence of address.
func (c *Client) Account(ctx context.Context, address string) (Account, error) {
	req := new(builder).string(1, address).done()
	resp, err := c.abciQuery(ctx, pathAccount, req)
	if err != nil {
		return Account{}, fmt.Errorf("query account %s: %w", address, err)
	}
	acc, err := decodeAccountResponse(resp)
	if err != nil {
		return Account{}, fmt.Errorf("decode account: %w", err)
	}
	return acc, nil
}

// Signer binds the client to one identity so it can send transactions.
func (c *Client) Signer(ctx context.Context, id *wallet.Identity) (*SigningClient, error) {
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &SigningClient{Client: c, id: id, chainID: chainID}, nil
}
