package model

import (
	"math/big"
	"sort"
	"strings"
)

// Asset describes one denomination the bot works with.
type Asset struct {
	Denom    string `yaml:"denom"`
	Symbol   string `yaml:"symbol"`
	Decimals int    `yaml:"decimals"`
}

// Label returns the display symbol, falling back to the denom.
func (a Asset) Label() string {
	if a.Symbol != "" {
		return a.Symbol
	}
	return a.Denom
}

// Coin is an amount in base units, as the chain reports and accepts it.
type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Int parses the base-unit amount. Empty or malformed amounts read as zero.
func (c Coin) Int() *big.Int {
	n, ok := new(big.Int).SetString(strings.TrimSpace(c.Amount), 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

// IsZero reports whether the coin carries no value.
func (c Coin) IsZero() bool {
	return c.Int().Sign() <= 0
}

// NewCoin builds a coin from a base-unit integer.
func NewCoin(denom string, amount *big.Int) Coin {
	if amount == nil {
		amount = new(big.Int)
	}
	return Coin{Denom: denom, Amount: amount.String()}
}

// SortCoins returns a copy of coins ordered by denom, the canonical order the chain expects.
func SortCoins(coins []Coin) []Coin {
	out := make([]Coin, len(coins))
	copy(out, coins)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}
