package configurator

import (
	"sync"

	"github.com/shadecraft/backend/internal/domain/shared/strategy"
)

// PriceTracker orders pricing responses. Each request takes a sequence
// number from Next; a response is applied only if its sequence is newer than
// the last applied one, so a slow stale response never overwrites a newer price.
type PriceTracker struct {
	mu       sync.Mutex
	issued   uint64
	applied  uint64
	latest   strategy.PricingResult
	hasQuote bool
}

// Next issues the next request sequence number
func (t *PriceTracker) Next() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.issued++
	return t.issued
}

// Apply records result for seq. It returns false and discards the result
// when a response with an equal or newer sequence was already applied.
func (t *PriceTracker) Apply(seq uint64, result strategy.PricingResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq <= t.applied {
		return false
	}
	t.applied = seq
	t.latest = result
	t.hasQuote = true
	return true
}

// Latest returns the last applied result and its sequence
func (t *PriceTracker) Latest() (strategy.PricingResult, uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest, t.applied, t.hasQuote
}

// Pending reports whether a newer request than the applied one was issued
func (t *PriceTracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.issued > t.applied
}
