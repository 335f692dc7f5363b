package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"OroswapBot/internal/notifier"
	"OroswapBot/internal/recorder"
	"OroswapBot/internal/wallet"
)

// ErrNoWallets is returned when there is nothing to schedule.
var ErrNoWallets = errors.New("no wallets configured")

// CycleRunner runs one wallet cycle and the rest that follows it.
type CycleRunner interface {
	Cycle(ctx context.Context, id *wallet.Identity) error
	Rest(ctx context.Context) error
}

// Notifier delivers round summaries.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// History exposes recorded state for summaries and commands.
type History interface {
	Snapshot() recorder.Snapshot
}

// Scheduler runs rounds over every wallet, back to back or on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   CycleRunner
	Wallets  []*wallet.Identity
	Notifier Notifier
	Recorder recorder.Recorder
	History  History
	Ctx      context.Context

	mu    sync.Mutex
	round int
}

// NewScheduler creates a new Scheduler. Notifier and history may be nil.
func NewScheduler(ctx context.Context, runner CycleRunner, wallets []*wallet.Identity, n Notifier, rec recorder.Recorder, hist History) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))),
		),
		Runner:   runner,
		Wallets:  wallets,
		Notifier: n,
		Recorder: rec,
		History:  hist,
		Ctx:      ctx,
	}
}

// Run executes rounds back to back until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.Wallets) == 0 {
		return ErrNoWallets
	}
	log.Printf("[INFO] scheduler running %d wallets continuously", len(s.Wallets))
	for {
		if err := s.RunRound(ctx); err != nil {
			return err
		}
	}
}

// Register schedules one round per tick of expr (six fields, seconds first).
// A tick that fires while a round is still running is skipped.
func (s *Scheduler) Register(expr string) error {
	if len(s.Wallets) == 0 {
		return ErrNoWallets
	}
	if _, err := s.Cron.AddFunc(expr, s.roundTask); err != nil {
		return fmt.Errorf("register round task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for a running round to return.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

func (s *Scheduler) roundTask() {
	if err := s.RunRound(s.Ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[ERROR] round: %v", err)
	}
}

// RunRound runs every wallet once, in order. A wallet's error or panic is logged and the
// round moves on; only cancellation ends a round early.
func (s *Scheduler) RunRound(ctx context.Context) error {
	s.mu.Lock()
	s.round++
	evt := &recorder.RoundEvent{Number: s.round, Wallets: len(s.Wallets), Started: time.Now()}
	s.mu.Unlock()

	log.Printf("[INFO] round %d started with %d wallets", evt.Number, evt.Wallets)
	for i, id := range s.Wallets {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Printf("[INFO] round %d: wallet %d/%d %s", evt.Number, i+1, len(s.Wallets), id.Short())
		if err := s.runWallet(ctx, id); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			evt.Failed++
			log.Printf("[ERROR] wallet %s cycle failed: %v", id.Short(), err)
		}
		if err := s.Runner.Rest(ctx); err != nil {
			return err
		}
	}
	evt.Finished = time.Now()

	log.Printf("[INFO] round %d complete: %d wallets, %d failed, took %s",
		evt.Number, evt.Wallets, evt.Failed, evt.Finished.Sub(evt.Started).Round(time.Second))
	if err := s.Recorder.RecordRound(evt); err != nil {
		log.Printf("[ERROR] record round: %v", err)
	}
	s.notifyRound(ctx, evt)
	return nil
}

// runWallet is the per-wallet failure boundary.
func (s *Scheduler) runWallet(ctx context.Context, id *wallet.Identity) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return s.Runner.Cycle(ctx, id)
}

func (s *Scheduler) snapshot() recorder.Snapshot {
	if s.History == nil {
		return recorder.Snapshot{}
	}
	return s.History.Snapshot()
}

func (s *Scheduler) notifyRound(ctx context.Context, evt *recorder.RoundEvent) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Send(ctx, notifier.FormatRoundSummary(evt, s.snapshot())); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch notifier.CommandName(command) {
	case "/status":
		return notifier.FormatStatus(s.snapshot(), time.Now())
	case "/wallets":
		return notifier.FormatWallets(s.snapshot())
	default:
		return notifier.FormatHelp()
	}
}
