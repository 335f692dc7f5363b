// Package executor performs the three pair actions for one connected wallet:
// swap, provide liquidity and withdraw liquidity. Each action reports a plain
// success flag; failures are logged, recorded and never retried.
package executor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"OroswapBot/internal/calculator"
	"OroswapBot/internal/chain"
	"OroswapBot/internal/console"
	"OroswapBot/internal/model"
	"OroswapBot/internal/recorder"
)

// SwapMemo is attached to every swap transaction.
const SwapMemo = "Swap (Native)"

// DefaultSlippageTolerance is sent with provide_liquidity when none is configured.
const DefaultSlippageTolerance = "0.5"

const summaryLimit = 200

// ErrUnexpectedPool is returned when the pair does not hold exactly the two configured native denoms.
var ErrUnexpectedPool = errors.New("unexpected pool composition")

// Chain is the subset of the chain client the executors need.
type Chain interface {
	Address() string
	Balance(ctx context.Context, address, denom string) (model.Coin, error)
	QuerySmart(ctx context.Context, contract string, query, out any) error
	Execute(ctx context.Context, req chain.ExecuteRequest) (*chain.TxResult, error)
}

// Config carries the pair settings the executors use.
type Config struct {
	Contract          string
	LPToken           string
	Primary           model.Asset
	Secondary         model.Asset
	SwapSlippage      float64 // percent
	// InvertBeliefPrice quotes offer per counter, the pair contract's belief_price unit.
	InvertBeliefPrice bool
	SlippageTolerance string
	ExplorerTxURL     string
}

// Executor runs actions for the wallet behind its Chain.
type Executor struct {
	chain Chain
	cfg   Config
	units calculator.Units
	log   *console.Logger
	rec   recorder.Recorder
}

// New creates an executor. A nil recorder discards events.
func New(c Chain, cfg Config, units calculator.Units, logger *console.Logger, rec recorder.Recorder) *Executor {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = console.Discard()
	}
	if cfg.SlippageTolerance == "" {
		cfg.SlippageTolerance = DefaultSlippageTolerance
	}
	return &Executor{chain: c, cfg: cfg, units: units, log: logger, rec: rec}
}

func (e *Executor) symbol(denom string) string {
	switch denom {
	case e.cfg.Primary.Denom:
		return e.cfg.Primary.Label()
	case e.cfg.Secondary.Denom:
		return e.cfg.Secondary.Label()
	}
	return denom
}

func (e *Executor) counterDenom(offer string) (string, bool) {
	switch offer {
	case e.cfg.Primary.Denom:
		return e.cfg.Secondary.Denom, true
	case e.cfg.Secondary.Denom:
		return e.cfg.Primary.Denom, true
	}
	return "", false
}

// Pool reads the reserves and orients them for a swap offering offerDenom.
func (e *Executor) Pool(ctx context.Context, offerDenom string) (model.PoolSnapshot, error) {
	counter, ok := e.counterDenom(offerDenom)
	if !ok {
		return model.PoolSnapshot{}, fmt.Errorf("%w: %s is not a pair asset", ErrUnexpectedPool, offerDenom)
	}

	var pool PoolResponse
	if err := e.chain.QuerySmart(ctx, e.cfg.Contract, poolQuery{}, &pool); err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("query pool: %w", err)
	}
	if len(pool.Assets) != 2 {
		return model.PoolSnapshot{}, fmt.Errorf("%w: %d assets", ErrUnexpectedPool, len(pool.Assets))
	}

	reserves := make(map[string]*big.Int, 2)
	for _, a := range pool.Assets {
		if a.Info.NativeToken == nil {
			return model.PoolSnapshot{}, fmt.Errorf("%w: non-native asset", ErrUnexpectedPool)
		}
		amount := model.Coin{Amount: a.Amount}.Int()
		if amount.Sign() <= 0 {
			return model.PoolSnapshot{}, fmt.Errorf("%w: empty reserve for %s", ErrUnexpectedPool, a.Info.NativeToken.Denom)
		}
		reserves[a.Info.NativeToken.Denom] = amount
	}

	snap := model.PoolSnapshot{
		OfferDenom:     offerDenom,
		OfferReserve:   reserves[offerDenom],
		CounterDenom:   counter,
		CounterReserve: reserves[counter],
	}
	if snap.OfferReserve == nil || snap.CounterReserve == nil {
		return model.PoolSnapshot{}, fmt.Errorf("%w: denoms do not match configuration", ErrUnexpectedPool)
	}
	return snap, nil
}

// Swap offers amount of offerDenom to the pair at the current reserve price.
func (e *Executor) Swap(ctx context.Context, offerDenom string, amount float64) bool {
	e.log.Step("Attempting to swap %.5f %s...", amount, e.symbol(offerDenom))

	base := e.units.ToBaseUnits(amount, offerDenom)
	if base.Sign() <= 0 {
		e.log.Warn("Swap amount %.6f %s is below one base unit, skipping.", amount, e.symbol(offerDenom))
		e.record(recorder.ActionSwap, nil, nil, true)
		return false
	}

	snap, err := e.Pool(ctx, offerDenom)
	if err != nil {
		return e.fail(recorder.ActionSwap, "Swap failed", err)
	}
	offerReserve, counterReserve := snap.OfferReserve, snap.CounterReserve
	if e.cfg.InvertBeliefPrice {
		offerReserve, counterReserve = counterReserve, offerReserve
	}
	price, err := calculator.BeliefPrice(offerReserve, counterReserve)
	if err != nil {
		return e.fail(recorder.ActionSwap, "Swap failed", err)
	}

	offer := model.NewCoin(offerDenom, base)
	msg := swapMsg{Swap: swapBody{
		OfferAsset:  nativeAsset(offer.Denom, offer.Amount),
		BeliefPrice: price,
		MaxSpread:   calculator.MaxSpread(e.cfg.SwapSlippage),
	}}
	res, err := e.execute(ctx, msg, SwapMemo, []model.Coin{offer})
	if err != nil {
		return e.fail(recorder.ActionSwap, "Swap failed", err)
	}
	e.succeed(recorder.ActionSwap, "Swap successful!", res)
	return true
}

// AddLiquidity provides both pair assets in one transaction.
func (e *Executor) AddLiquidity(ctx context.Context, amountPrimary, amountSecondary float64) bool {
	e.log.Step("Attempting to add liquidity: %g %s & %g %s...",
		amountPrimary, e.cfg.Primary.Label(), amountSecondary, e.cfg.Secondary.Label())

	funds := model.SortCoins([]model.Coin{
		model.NewCoin(e.cfg.Primary.Denom, e.units.ToBaseUnits(amountPrimary, e.cfg.Primary.Denom)),
		model.NewCoin(e.cfg.Secondary.Denom, e.units.ToBaseUnits(amountSecondary, e.cfg.Secondary.Denom)),
	})
	for _, c := range funds {
		if c.IsZero() {
			e.log.Warn("Liquidity amount for %s is below one base unit, skipping.", e.symbol(c.Denom))
			e.record(recorder.ActionAddLiq, nil, nil, true)
			return false
		}
	}

	assets := make([]Asset, 0, len(funds))
	for _, c := range funds {
		assets = append(assets, nativeAsset(c.Denom, c.Amount))
	}
	msg := provideLiquidityMsg{ProvideLiquidity: provideLiquidityBody{
		Assets:            assets,
		SlippageTolerance: e.cfg.SlippageTolerance,
		AutoStake:         false,
	}}
	res, err := e.execute(ctx, msg, "", funds)
	if err != nil {
		return e.fail(recorder.ActionAddLiq, "Add liquidity failed", err)
	}
	e.succeed(recorder.ActionAddLiq, "Add liquidity successful!", res)
	return true
}

// WithdrawLiquidity burns the wallet's whole LP balance. A zero balance sends nothing.
func (e *Executor) WithdrawLiquidity(ctx context.Context) bool {
	lp, err := e.chain.Balance(ctx, e.chain.Address(), e.cfg.LPToken)
	if err != nil {
		return e.fail(recorder.ActionWithdraw, "Withdraw liquidity failed", err)
	}
	if lp.IsZero() {
		e.log.Warn("No liquidity (LP Tokens) to withdraw.")
		e.record(recorder.ActionWithdraw, nil, nil, true)
		return false
	}

	e.log.Step("Attempting to withdraw %s LP Tokens...", lp.Amount)
	res, err := e.execute(ctx, withdrawLiquidityMsg{}, "", []model.Coin{model.NewCoin(e.cfg.LPToken, lp.Int())})
	if err != nil {
		return e.fail(recorder.ActionWithdraw, "Withdraw liquidity failed", err)
	}
	e.succeed(recorder.ActionWithdraw, "Withdraw liquidity successful!", res)
	return true
}

func (e *Executor) execute(ctx context.Context, msg any, memo string, funds []model.Coin) (*chain.TxResult, error) {
	return e.chain.Execute(ctx, chain.ExecuteRequest{
		Sender:   e.chain.Address(),
		Contract: e.cfg.Contract,
		Msg:      msg,
		Memo:     memo,
		Funds:    funds,
	})
}

// TxLink returns the explorer URL for hash.
func (e *Executor) TxLink(hash string) string {
	base := e.cfg.ExplorerTxURL
	if base == "" {
		return hash
	}
	return strings.TrimRight(base, "/") + "/" + hash
}

func (e *Executor) succeed(action, msg string, res *chain.TxResult) {
	e.log.Info("%s", msg)
	e.log.Link("Tx: %s", e.TxLink(res.Hash))
	e.record(action, res, nil, false)
}

func (e *Executor) fail(action, prefix string, err error) bool {
	kind := chain.KindOf(err)
	if errors.Is(err, ErrUnexpectedPool) {
		e.log.Error("%s: %s", prefix, chain.Summarize(err, summaryLimit))
	} else {
		e.log.Error("%s (%s): %s", prefix, kind, chain.Summarize(err, summaryLimit))
	}
	e.record(action, nil, err, false)
	return false
}

func (e *Executor) record(action string, res *chain.TxResult, err error, skipped bool) {
	evt := &recorder.ActionEvent{
		Wallet:  e.chain.Address(),
		Action:  action,
		Success: err == nil && !skipped,
		Skipped: skipped,
		At:      time.Now(),
	}
	if res != nil {
		evt.TxHash = res.Hash
	}
	if err != nil {
		evt.Kind = string(chain.KindOf(err))
		evt.Error = chain.Summarize(err, summaryLimit)
	}
	if rerr := e.rec.RecordAction(evt); rerr != nil {
		e.log.Warn("record %s: %v", action, rerr)
	}
}
