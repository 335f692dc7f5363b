package calculator

import (
	"math"
	"math/big"

	"OroswapBot/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is the exponent assumed for denoms missing from the table.
// It is a configurable default, not a property of the chain.
const DefaultDecimals = 6

// Units converts between human amounts and integer base units using a fixed decimals table.
type Units struct {
	decimals map[string]int
	fallback int
}

// NewUnits builds a conversion table from the given assets. A negative fallback selects DefaultDecimals.
func NewUnits(fallback int, assets ...model.Asset) Units {
	if fallback < 0 {
		fallback = DefaultDecimals
	}
	u := Units{decimals: make(map[string]int, len(assets)), fallback: fallback}
	for _, a := range assets {
		if a.Denom == "" {
			continue
		}
		d := a.Decimals
		if d < 0 {
			d = fallback
		}
		u.decimals[a.Denom] = d
	}
	return u
}

// Decimals returns the exponent for denom.
func (u Units) Decimals(denom string) int {
	if d, ok := u.decimals[denom]; ok {
		return d
	}
	return u.fallback
}

// ToBaseUnits scales amount by 10^decimals and truncates toward zero.
// It never rounds up, so a converted amount cannot exceed the balance it was read from.
// Negative, NaN and infinite inputs yield zero.
func (u Units) ToBaseUnits(amount float64, denom string) *big.Int {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return new(big.Int)
	}
	scaled := decimal.NewFromFloat(amount).Shift(int32(u.Decimals(denom)))
	return scaled.Truncate(0).BigInt()
}

// FromBaseUnits scales a base-unit integer back to a human amount. Display only.
func (u Units) FromBaseUnits(amount *big.Int, denom string) float64 {
	if amount == nil {
		return 0
	}
	f, _ := decimal.NewFromBigInt(amount, -int32(u.Decimals(denom))).Float64()
	return f
}

// FromCoin is FromBaseUnits for a coin as returned by a balance query.
func (u Units) FromCoin(c model.Coin) float64 {
	return u.FromBaseUnits(c.Int(), c.Denom)
}
