package energy

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a ledger movement.
type Kind string

const (
	KindGeneration  Kind = "generation"
	KindConsumption Kind = "consumption"
	KindTransfer    Kind = "transfer"
)

// Level is raised after a debit leaves the pool at or below a threshold.
type Level string

const (
	LevelLow      Level = "low"
	LevelCritical Level = "critical"
)

const (
	historyCap        = 100
	lowThreshold      = 20.0
	criticalThreshold = 5.0
)

// Transaction is one entry of the audit history. Amount is signed: credits
// are positive, debits negative. Failed debits are recorded with Success=false.
type Transaction struct {
	ID        string    `json:"id"`
	EntityID  string    `json:"entityId"`
	Amount    float64   `json:"amount"`
	Kind      Kind      `json:"kind"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// Stats summarises the pool since the last reset.
type Stats struct {
	Total            float64 `json:"total"`
	Generated        float64 `json:"generated"`
	Consumed         float64 `json:"consumed"`
	TransactionCount int     `json:"transactionCount"`
}

// LevelFunc is notified after a successful debit crosses a threshold.
type LevelFunc func(level Level, total float64)

// Ledger is the single global energy pool. Every debit and credit in the
// combat core goes through it.
type Ledger struct {
	mu        sync.Mutex
	total     float64
	generated float64
	consumed  float64
	history   []Transaction // ring, len <= historyCap
	head      int           // next write slot once the ring is full
	count     int
	listeners []LevelFunc
	clk       func() time.Time
}

type Option func(*Ledger)

// WithClock overrides the timestamp source. Tests and the simulation pass the
// simulated clock so transaction times line up with frame times.
func WithClock(clk func() time.Time) Option {
	return func(l *Ledger) {
		if clk != nil {
			l.clk = clk
		}
	}
}

// NewLedger starts the pool at initial. Negative values start at zero.
func NewLedger(initial float64, opts ...Option) *Ledger {
	l := &Ledger{clk: time.Now}
	for _, o := range opts {
		o(l)
	}
	l.Reset(initial)
	return l
}

// Reset replaces the pool and clears the history. Listeners are kept.
func (l *Ledger) Reset(initial float64) {
	if initial < 0 || initial != initial {
		slog.Warn("energy reset with invalid amount, using 0", "initial", initial)
		initial = 0
	}
	l.mu.Lock()
	l.total = initial
	l.generated = 0
	l.consumed = 0
	l.history = make([]Transaction, 0, historyCap)
	l.head = 0
	l.count = 0
	l.mu.Unlock()
	slog.Info("energy ledger initialized", "total", initial)
}

// OnLevel registers a level listener.
func (l *Ledger) OnLevel(fn LevelFunc) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// CanConsume reports whether amount could be debited right now.
func (l *Ledger) CanConsume(amount float64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canConsume(amount)
}

func (l *Ledger) canConsume(amount float64) bool {
	return amount >= 0 && l.total >= amount
}

// Consume debits amount on behalf of entityID. The attempt is recorded
// whether or not it succeeds.
func (l *Ledger) Consume(entityID string, amount float64, action string) bool {
	l.mu.Lock()
	if !l.canConsume(amount) {
		total := l.total
		l.record(entityID, -amount, KindConsumption, action, false)
		l.mu.Unlock()
		slog.Debug("energy consume rejected", "entity", entityID, "amount", amount, "action", action, "total", total)
		return false
	}
	l.total -= amount
	l.consumed += amount
	l.record(entityID, -amount, KindConsumption, action, true)
	total := l.total
	listeners := l.listeners
	l.mu.Unlock()

	notify(listeners, total)
	return true
}

// Generate credits amount from source. Non-positive amounts are ignored and
// leave no transaction.
func (l *Ledger) Generate(entityID string, amount float64, source string) {
	if amount <= 0 || amount != amount {
		slog.Debug("energy generate ignored", "entity", entityID, "amount", amount, "source", source)
		return
	}
	l.mu.Lock()
	l.total += amount
	l.generated += amount
	l.record(entityID, amount, KindGeneration, source, true)
	l.mu.Unlock()
}

// Transfer moves amount between two entities' accounts. The pool is global so
// the total does not change; the pair of linked transactions is the audit trail.
// A transfer that the pool could not cover records a single failed entry.
func (l *Ledger) Transfer(from, to string, amount float64) bool {
	link := uuid.NewString()
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.canConsume(amount) {
		l.record(from, -amount, KindTransfer, "transfer:"+link, false)
		slog.Debug("energy transfer rejected", "from", from, "to", to, "amount", amount, "total", l.total)
		return false
	}
	l.record(from, -amount, KindTransfer, "transfer_out:"+link, true)
	l.record(to, amount, KindTransfer, "transfer_in:"+link, true)
	return true
}

// Transactions returns a copy of the history, oldest first.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, 0, len(l.history))
	if len(l.history) < historyCap {
		return append(out, l.history...)
	}
	out = append(out, l.history[l.head:]...)
	return append(out, l.history[:l.head]...)
}

func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Total:            l.total,
		Generated:        l.generated,
		Consumed:         l.consumed,
		TransactionCount: l.count,
	}
}

// record appends to the ring. Caller holds mu.
func (l *Ledger) record(entityID string, amount float64, kind Kind, action string, ok bool) {
	tx := Transaction{
		ID:        uuid.NewString(),
		EntityID:  entityID,
		Amount:    amount,
		Kind:      kind,
		Action:    action,
		Timestamp: l.clk(),
		Success:   ok,
	}
	l.count++
	if len(l.history) < historyCap {
		l.history = append(l.history, tx)
		return
	}
	l.history[l.head] = tx
	l.head = (l.head + 1) % historyCap
}

func notify(listeners []LevelFunc, total float64) {
	var level Level
	switch {
	case total <= criticalThreshold:
		level = LevelCritical
	case total <= lowThreshold:
		level = LevelLow
	default:
		return
	}
	slog.Debug("energy level", "level", level, "total", total)
	for _, fn := range listeners {
		fn(level, total)
	}
}
