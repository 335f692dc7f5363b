package recorder

import (
	"errors"
	"time"

	"OroswapBot/internal/model"
)

// Action names used in ActionEvent.
const (
	ActionSwap     = "swap"
	ActionAddLiq   = "add_liquidity"
	ActionWithdraw = "withdraw_liquidity"
)

// ActionEvent records one executor attempt.
type ActionEvent struct {
	Wallet  string
	Action  string
	Success bool
	Skipped bool   // no transaction was sent, e.g. zero LP balance
	TxHash  string
	Kind    string // chain error class on failure
	Error   string
	At      time.Time
}

// CycleEvent records one wallet cycle.
type CycleEvent struct {
	Wallet   string
	Error    string
	Started  time.Time
	Finished time.Time
}

// RoundEvent records one pass over every configured wallet.
type RoundEvent struct {
	Number   int
	Wallets  int
	Failed   int
	Started  time.Time
	Finished time.Time
}

// PointsEvent records a refreshed points record.
type PointsEvent struct {
	Wallet string
	Record model.PointsRecord
	At     time.Time
}

// Recorder keeps run history for the lifetime of the process.
type Recorder interface {
	RecordAction(evt *ActionEvent) error
	RecordCycle(evt *CycleEvent) error
	RecordRound(evt *RoundEvent) error
	RecordPoints(evt *PointsEvent) error
	Close() error
}

// Multi fans every event out to all recorders and joins their errors.
type Multi []Recorder

func (m Multi) RecordAction(evt *ActionEvent) error {
	return m.each(func(r Recorder) error { return r.RecordAction(evt) })
}

func (m Multi) RecordCycle(evt *CycleEvent) error {
	return m.each(func(r Recorder) error { return r.RecordCycle(evt) })
}

func (m Multi) RecordRound(evt *RoundEvent) error {
	return m.each(func(r Recorder) error { return r.RecordRound(evt) })
}

func (m Multi) RecordPoints(evt *PointsEvent) error {
	return m.each(func(r Recorder) error { return r.RecordPoints(evt) })
}

func (m Multi) Close() error {
	return m.each(func(r Recorder) error { return r.Close() })
}

func (m Multi) each(fn func(Recorder) error) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := fn(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
