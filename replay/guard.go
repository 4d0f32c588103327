// Package replay provides the hardened, opt-in answer to the base design's
// replay gap: by default the same qualifying transaction can mint any
// number of sessions. A Guard records consumed transaction ids in a
// bounded TTL set so each one unlocks at most one session while the ledger
// finality window is open.
package replay

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Guard is an in-memory dedup set over transaction ids. Safe for
// concurrent use.
type Guard struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	clk        clock.Clock
	seen       map[string]time.Time
}

// NewGuard creates a guard. ttl should cover the ledger's finality window;
// maxEntries bounds memory under abuse, evicting the soonest-expiring
// entries first when exceeded.
func NewGuard(ttl time.Duration, maxEntries int, clk clock.Clock) *Guard {
	if clk == nil {
		clk = clock.New()
	}
	return &Guard{
		ttl:        ttl,
		maxEntries: maxEntries,
		clk:        clk,
		seen:       make(map[string]time.Time),
	}
}

// Consume marks a transaction id as used. It returns false when the id was
// already consumed and its entry has not yet expired.
func (g *Guard) Consume(transactionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clk.Now()
	g.purgeLocked(now)

	if exp, ok := g.seen[transactionID]; ok && exp.After(now) {
		return false
	}

	if g.maxEntries > 0 && len(g.seen) >= g.maxEntries {
		g.evictSoonestLocked()
	}
	g.seen[transactionID] = now.Add(g.ttl)
	return true
}

// Len reports the live entry count.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.purgeLocked(g.clk.Now())
	return len(g.seen)
}

func (g *Guard) purgeLocked(now time.Time) {
	for id, exp := range g.seen {
		if !exp.After(now) {
			delete(g.seen, id)
		}
	}
}

func (g *Guard) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for id, exp := range g.seen {
		if victim == "" || exp.Before(soonest) {
			victim = id
			soonest = exp
		}
	}
	if victim != "" {
		delete(g.seen, victim)
	}
}
