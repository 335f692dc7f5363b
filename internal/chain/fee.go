package chain

import (
	"fmt"
	"math/big"
	"regexp"

	"github.com/shopspring/decimal"

	"OroswapBot/internal/model"
)

var gasPricePattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)([a-zA-Z][a-zA-Z0-9/:._-]{2,127})$`)

// GasPrice is a price per unit of gas, such as 0.03uzig.
type GasPrice struct {
	Amount decimal.Decimal
	Denom  string
}

// ParseGasPrice parses "<amount><denom>".
func ParseGasPrice(s string) (GasPrice, error) {
	m := gasPricePattern.FindStringSubmatch(s)
	if m == nil {
		return GasPrice{}, fmt.Errorf("invalid gas price %q", s)
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return GasPrice{}, fmt.Errorf("invalid gas price amount %q: %w", m[1], err)
	}
	return GasPrice{Amount: amount, Denom: m[2]}, nil
}

func (g GasPrice) String() string {
	return g.Amount.String() + g.Denom
}

// Fee returns ceil(gasLimit * price) in the price denom.
func (g GasPrice) Fee(gasLimit uint64) model.Coin {
	gas := decimal.NewFromBigInt(new(big.Int).SetUint64(gasLimit), 0)
	return model.NewCoin(g.Denom, g.Amount.Mul(gas).Ceil().BigInt())
}

// adjustGas scales a simulated amount and rounds to the nearest unit.
func adjustGas(used uint64, adjustment float64) uint64 {
	gas := decimal.NewFromBigInt(new(big.Int).SetUint64(used), 0).
		Mul(decimal.NewFromFloat(adjustment)).
		Round(0)
	return gas.BigInt().Uint64()
}
