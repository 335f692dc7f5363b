package recorder

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"OroswapBot/internal/model"
)

// DefaultEventLimit bounds the recent-action buffer.
const DefaultEventLimit = 200

// Counter is a success/failure pair.
type Counter struct {
	OK      int
	Failed  int
	Skipped int
}

// WalletStats aggregates one wallet's activity since start.
type WalletStats struct {
	Wallet    string
	Swaps     Counter
	Adds      Counter
	Withdraws Counter
	Cycles    Counter
	Points    *model.PointsRecord
	LastError string
	LastCycle time.Time
}

// Snapshot is a consistent copy of the recorder state.
type Snapshot struct {
	RunID     string
	Started   time.Time
	Rounds    int
	LastRound *RoundEvent
	Wallets   []WalletStats
	Recent    []ActionEvent
}

// MemoryRecorder keeps bounded history in process memory. It is safe for concurrent use.
type MemoryRecorder struct {
	mu        sync.Mutex
	runID     string
	started   time.Time
	limit     int
	recent    []ActionEvent
	wallets   map[string]*WalletStats
	order     []string
	rounds    int
	lastRound *RoundEvent
	now       func() time.Time
}

// NewMemoryRecorder creates a recorder holding at most limit recent actions.
func NewMemoryRecorder(limit int) *MemoryRecorder {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	return &MemoryRecorder{
		runID:   uuid.NewString(),
		started: time.Now(),
		limit:   limit,
		wallets: make(map[string]*WalletStats),
		now:     time.Now,
	}
}

// RunID identifies this process run in logs and notifications.
func (m *MemoryRecorder) RunID() string { return m.runID }

func (m *MemoryRecorder) wallet(addr string) *WalletStats {
	w, ok := m.wallets[addr]
	if !ok {
		w = &WalletStats{Wallet: addr}
		m.wallets[addr] = w
		m.order = append(m.order, addr)
	}
	return w
}

func (m *MemoryRecorder) RecordAction(evt *ActionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := *evt
	if e.At.IsZero() {
		e.At = m.now()
	}
	m.recent = append(m.recent, e)
	if len(m.recent) > m.limit {
		m.recent = m.recent[len(m.recent)-m.limit:]
	}

	w := m.wallet(e.Wallet)
	var c *Counter
	switch e.Action {
	case ActionSwap:
		c = &w.Swaps
	case ActionAddLiq:
		c = &w.Adds
	case ActionWithdraw:
		c = &w.Withdraws
	}
	if c != nil {
		switch {
		case e.Skipped:
			c.Skipped++
		case e.Success:
			c.OK++
		default:
			c.Failed++
		}
	}
	if !e.Success && e.Error != "" {
		w.LastError = e.Error
	}
	return nil
}

func (m *MemoryRecorder) RecordCycle(evt *CycleEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := m.wallet(evt.Wallet)
	if evt.Error != "" {
		w.Cycles.Failed++
		w.LastError = evt.Error
	} else {
		w.Cycles.OK++
	}
	w.LastCycle = evt.Finished
	return nil
}

func (m *MemoryRecorder) RecordRound(evt *RoundEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rounds++
	e := *evt
	m.lastRound = &e
	return nil
}

func (m *MemoryRecorder) RecordPoints(evt *PointsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := evt.Record
	m.wallet(evt.Wallet).Points = &rec
	return nil
}

func (m *MemoryRecorder) Close() error { return nil }

// Snapshot returns a copy of the current state, wallets in first-seen order
// and recent actions newest first.
func (m *MemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{RunID: m.runID, Started: m.started, Rounds: m.rounds}
	if m.lastRound != nil {
		r := *m.lastRound
		s.LastRound = &r
	}
	for _, addr := range m.order {
		w := *m.wallets[addr]
		if w.Points != nil {
			p := *w.Points
			w.Points = &p
		}
		s.Wallets = append(s.Wallets, w)
	}
	s.Recent = make([]ActionEvent, len(m.recent))
	copy(s.Recent, m.recent)
	sort.SliceStable(s.Recent, func(i, j int) bool { return s.Recent[i].At.After(s.Recent[j].At) })
	return s
}
