package calculator

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// PriceDigits is the number of fractional digits in a belief price.
const PriceDigits = 18

// ErrEmptyReserve is returned when a reserve is zero or missing.
var ErrEmptyReserve = errors.New("pool reserve is empty")

// BeliefPrice returns reserve(counter)/reserve(offer) with exactly PriceDigits fractional digits.
func BeliefPrice(offerReserve, counterReserve *big.Int) (string, error) {
	if offerReserve == nil || counterReserve == nil || offerReserve.Sign() <= 0 || counterReserve.Sign() <= 0 {
		return "", ErrEmptyReserve
	}
	offer := decimal.NewFromBigInt(offerReserve, 0)
	counter := decimal.NewFromBigInt(counterReserve, 0)
	return counter.DivRound(offer, PriceDigits).StringFixed(PriceDigits), nil
}

// MaxSpread converts a slippage percentage into the fraction the contract expects.
func MaxSpread(slippagePercent float64) string {
	return decimal.NewFromFloat(slippagePercent).Div(decimal.NewFromInt(100)).String()
}
