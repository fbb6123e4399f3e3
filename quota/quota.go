// Package quota tracks YouTube Data API consumption against the per-key
// daily budget and rotates between keys as they run dry.
package quota

import (
	"errors"
	"sync"
	"time"

	"trendflow/logger"
)

// ErrExhausted signals that every configured key has crossed the rotation
// threshold. This is the only condition that aborts a whole run.
var ErrExhausted = errors.New("api quota exhausted for all keys")

// RotateThreshold is the budget share after which the ledger moves to the
// next key.
const RotateThreshold = 0.9

// Ledger tracks cost units charged against each API key. All strategies of
// a run share one Ledger from separate goroutines, so access is
// mutex-guarded.
type Ledger struct {
	mu        sync.Mutex
	keys      []string
	usage     []int
	current   int
	budget    int
	lastReset time.Time
	now       func() time.Time
	log       *logger.Log
}

// NewLedger creates a ledger for the given keys and daily per-key budget.
func NewLedger(keys []string, dailyBudget int) *Ledger {
	l := &Ledger{
		keys:   keys,
		usage:  make([]int, len(keys)),
		budget: dailyBudget,
		now:    time.Now,
		log:    logger.GetLogger(),
	}
	l.lastReset = dateOf(l.now())
	return l
}

// CurrentKey returns the key subsequent requests should authenticate with.
// It fails with ErrExhausted when no key has capacity left today.
func (l *Ledger) CurrentKey() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkDailyReset()
	if l.usage[l.current] >= l.threshold() {
		if err := l.rotate(); err != nil {
			return "", err
		}
	}
	return l.keys[l.current], nil
}

// Charge records cost units against the currently selected key. The charge
// happens after each response is observed, matching how the API bills. When
// the charge pushes the key past the rotation threshold the ledger advances
// to the next key; a full cycle without capacity returns ErrExhausted.
func (l *Ledger) Charge(cost int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkDailyReset()
	l.usage[l.current] += cost
	if l.usage[l.current] >= l.threshold() {
		return l.rotate()
	}
	return nil
}

// Remaining reports the budget left on the currently selected key.
func (l *Ledger) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkDailyReset()
	if rem := l.budget - l.usage[l.current]; rem > 0 {
		return rem
	}
	return 0
}

// Used reports total cost units charged today across all keys.
func (l *Ledger) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checkDailyReset()
	total := 0
	for _, u := range l.usage {
		total += u
	}
	return total
}

func (l *Ledger) threshold() int {
	return int(float64(l.budget) * RotateThreshold)
}

// rotate advances to the next key with capacity. Caller holds l.mu.
func (l *Ledger) rotate() error {
	start := l.current
	for {
		l.current = (l.current + 1) % len(l.keys)
		if l.usage[l.current] < l.threshold() && l.current != start {
			l.log.WithComponent("quota").WithFields(logger.Fields{
				"key_index": l.current,
				"key_count": len(l.keys),
			}).Info("rotated api key")
			return nil
		}
		if l.current == start {
			if l.usage[l.current] < l.threshold() {
				// Single-key ledger that still has capacity.
				return nil
			}
			l.log.WithComponent("quota").Warn("all api keys exhausted")
			return ErrExhausted
		}
	}
}

// checkDailyReset zeroes all counters once per calendar-day boundary,
// observed lazily on the next access. Caller holds l.mu.
func (l *Ledger) checkDailyReset() {
	today := dateOf(l.now())
	if today.After(l.lastReset) {
		for i := range l.usage {
			l.usage[i] = 0
		}
		l.current = 0
		l.lastReset = today
		l.log.WithComponent("quota").Info("daily api quota reset")
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
