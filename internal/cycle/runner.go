// Package cycle runs the per-wallet transaction cycle: status, swaps, then the
// liquidity round trip, followed by the between-loops rest.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"

	"OroswapBot/internal/calculator"
	"OroswapBot/internal/console"
	"OroswapBot/internal/executor"
	"OroswapBot/internal/model"
	"OroswapBot/internal/points"
	"OroswapBot/internal/recorder"
	"OroswapBot/internal/wallet"
)

// Dialer opens a signing session for one identity.
type Dialer func(ctx context.Context, id *wallet.Identity) (executor.Chain, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Settings is the cycle part of the run configuration.
type Settings struct {
	SwapEnabled   bool
	SwapCount     int
	SwapPrimary   model.Range
	SwapSecondary model.Range

	PoolsEnabled    bool
	WithdrawEnabled bool
	PoolPrimary     float64
	PoolSecondary   float64

	BetweenTx    time.Duration
	BetweenLoops time.Duration

	Executor executor.Config
	Units    calculator.Units
}

// Runner executes cycles. It holds no per-wallet state between cycles.
type Runner struct {
	settings Settings
	dial     Dialer
	points   points.Fetcher
	log      *console.Logger
	rec      recorder.Recorder
	sleep    SleepFunc
	rng      *rand.Rand
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the console logger.
func WithLogger(l *console.Logger) Option { return func(r *Runner) { r.log = l } }

// WithRecorder sets where actions and cycles are recorded.
func WithRecorder(rec recorder.Recorder) Option { return func(r *Runner) { r.rec = rec } }

// WithSleep replaces the delay function, mainly for tests.
func WithSleep(fn SleepFunc) Option { return func(r *Runner) { r.sleep = fn } }

// WithRand sets the source for swap amounts.
func WithRand(rng *rand.Rand) Option { return func(r *Runner) { r.rng = rng } }

// New creates a runner.
func New(s Settings, dial Dialer, pts points.Fetcher, opts ...Option) *Runner {
	r := &Runner{
		settings: s,
		dial:     dial,
		points:   pts,
		log:      console.Discard(),
		rec:      recorder.NewNoopRecorder(),
		sleep:    Sleep,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6f726f)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sleep waits for d, returning early with ctx.Err() on cancellation.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Cycle runs one full cycle for id. Only a failed connection or cancellation is returned;
// action failures are logged and the cycle moves on.
func (r *Runner) Cycle(ctx context.Context, id *wallet.Identity) (err error) {
	log := r.log.With(id.Short())
	started := time.Now()
	defer func() {
		evt := &recorder.CycleEvent{Wallet: id.Address(), Started: started, Finished: time.Now()}
		p := recover()
		switch {
		case p != nil:
			evt.Error = fmt.Sprintf("panic: %v", p)
		case err != nil:
			evt.Error = err.Error()
		}
		if rerr := r.rec.RecordCycle(evt); rerr != nil {
			log.Warn("record cycle: %v", rerr)
		}
		if p != nil {
			panic(p)
		}
	}()

	c, err := r.dial(ctx, id)
	if err != nil {
		return fmt.Errorf("connect wallet %s: %w", id.Short(), err)
	}
	ex := executor.New(c, r.settings.Executor, r.settings.Units, log, r.rec)

	r.displayStatus(ctx, log, c)

	if r.settings.SwapEnabled {
		if err := r.swaps(ctx, log, c.Address(), ex); err != nil {
			return err
		}
	}
	if r.settings.PoolsEnabled {
		if err := r.pools(ctx, log, c.Address(), ex); err != nil {
			return err
		}
	}
	return nil
}

// Rest logs completion and waits the between-loops delay.
func (r *Runner) Rest(ctx context.Context) error {
	r.log.Loop("CYCLE COMPLETE. Waiting for %s for the next loop...", r.settings.BetweenLoops)
	return r.sleep(ctx, r.settings.BetweenLoops)
}

// RunSingle loops forever over one wallet. It returns when ctx is cancelled or a cycle fails.
func (r *Runner) RunSingle(ctx context.Context, id *wallet.Identity) error {
	r.log.Info("Bot started for wallet: %s", id.Address())
	for loop := 1; ; loop++ {
		r.log.Loop("STARTING LOOP #%d", loop)
		if err := r.Cycle(ctx, id); err != nil {
			return err
		}
		if err := r.Rest(ctx); err != nil {
			return err
		}
	}
}

func (r *Runner) swaps(ctx context.Context, log *console.Logger, addr string, ex *executor.Executor) error {
	s := r.settings
	log.Step("Starting swap cycle (%d transactions)...", s.SwapCount)
	for i := 0; i < s.SwapCount; i++ {
		denom, rng := s.Executor.Primary.Denom, s.SwapPrimary
		if i%2 == 1 {
			denom, rng = s.Executor.Secondary.Denom, s.SwapSecondary
		}
		if ex.Swap(ctx, denom, calculator.RandomAmount(r.rng, rng)) {
			r.refreshPoints(ctx, log, addr)
		}
		log.Info("Waiting for %s...", s.BetweenTx)
		if err := r.sleep(ctx, s.BetweenTx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) pools(ctx context.Context, log *console.Logger, addr string, ex *executor.Executor) error {
	s := r.settings
	log.Step("Starting pool cycle...")
	if !ex.AddLiquidity(ctx, s.PoolPrimary, s.PoolSecondary) {
		return ctx.Err()
	}
	r.refreshPoints(ctx, log, addr)
	if !s.WithdrawEnabled {
		return nil
	}

	log.Info("Waiting for %s before withdrawing liquidity...", s.BetweenTx)
	if err := r.sleep(ctx, s.BetweenTx); err != nil {
		return err
	}
	if ex.WithdrawLiquidity(ctx) {
		r.refreshPoints(ctx, log, addr)
	}
	return ctx.Err()
}

// displayStatus reads both balances and the points record concurrently and prints
// them once all reads are done. Failures only produce a warning.
func (r *Runner) displayStatus(ctx context.Context, log *console.Logger, c executor.Chain) {
	log.Step("Loading account status...")
	var (
		primary, secondary model.Coin
		record             *model.PointsRecord
		pa, sa             = r.settings.Executor.Primary, r.settings.Executor.Secondary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		primary, err = c.Balance(gctx, c.Address(), pa.Denom)
		return err
	})
	g.Go(func() error {
		var err error
		secondary, err = c.Balance(gctx, c.Address(), sa.Denom)
		return err
	})
	g.Go(func() error {
		// Points are optional here; a miss never fails the status read.
		record, _ = r.points.FetchPoints(gctx, c.Address())
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Warn("Failed to load account info: %v", err)
		return
	}

	log.Info("Wallet: %s", c.Address())
	log.Info("Balance: %.4f %s | %.4f %s",
		r.settings.Units.FromCoin(primary), pa.Label(),
		r.settings.Units.FromCoin(secondary), sa.Label())
	if record != nil {
		log.Info("Points: %g | Swaps: %d | Pools: %d", record.Points, record.SwapsCount, record.JoinPoolCount)
		r.recordPoints(log, c.Address(), record)
	}
}

func (r *Runner) refreshPoints(ctx context.Context, log *console.Logger, addr string) {
	record, err := r.points.FetchPoints(ctx, addr)
	switch {
	case errors.Is(err, points.ErrNoPoints):
		return
	case err != nil:
		log.Warn("Could not refresh points data: %v", err)
		return
	}
	log.Info("Points updated: %g (Swaps: %d, Pools: %d)", record.Points, record.SwapsCount, record.JoinPoolCount)
	r.recordPoints(log, addr, record)
}

func (r *Runner) recordPoints(log *console.Logger, addr string, record *model.PointsRecord) {
	if err := r.rec.RecordPoints(&recorder.PointsEvent{Wallet: addr, Record: *record, At: time.Now()}); err != nil {
		log.Warn("record points: %v", err)
	}
}
