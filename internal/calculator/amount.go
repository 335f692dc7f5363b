package calculator

import (
	"math/rand/v2"

	"OroswapBot/internal/model"
)

// RandomAmount draws a uniform amount from r. The result always lies within [Min, Max];
// a degenerate or inverted range yields Min.
func RandomAmount(r *rand.Rand, rng model.Range) float64 {
	if rng.Max <= rng.Min {
		return rng.Min
	}
	v := rng.Min + r.Float64()*(rng.Max-rng.Min)
	if v > rng.Max {
		v = rng.Max
	}
	return v
}
