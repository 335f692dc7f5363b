package model

import "math/big"

// PoolSnapshot holds the two reserves read right before a swap.
// It is used for exactly one swap and then discarded.
type PoolSnapshot struct {
	OfferDenom     string
	OfferReserve   *big.Int
	CounterDenom   string
	CounterReserve *big.Int
}
