package application

import (
	"sync"

	"vn.io.arda/provisioner/internal/domain"
)

// Ledger keeps the most recent batch results in memory for the ops endpoint.
// Single-instance model: results live in-process only; the durable record is
// the outcome repository.
type Ledger struct {
	mu      sync.RWMutex
	max     int
	results []*domain.BatchResult
	total   int
}

// NewLedger creates a Ledger retaining at most max results.
func NewLedger(max int) *Ledger {
	if max <= 0 {
		max = 20
	}
	return &Ledger{max: max}
}

// Record stores a completed batch result, newest first.
func (l *Ledger) Record(r *domain.BatchResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.results = append([]*domain.BatchResult{r}, l.results...)
	if len(l.results) > l.max {
		l.results = l.results[:l.max]
	}
	l.total++
}

// Recent returns a copy of the retained results, newest first.
func (l *Ledger) Recent() []*domain.BatchResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.BatchResult, len(l.results))
	copy(out, l.results)
	return out
}

// Total returns the number of batches recorded since startup.
func (l *Ledger) Total() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}
