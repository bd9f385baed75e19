package sync

import (
	"sync"
	"time"
)

// DefaultReconciliationInterval is the minimum time between two full reconciliations of a tag.
const DefaultReconciliationInterval = 24 * time.Hour

// ReconciliationPolicy rate-limits full deletion reconciliation per repository tag.
// A run is recorded when it is granted, not when it completes.
type ReconciliationPolicy struct {
	now      func() time.Time
	lastRun  map[string]time.Time
	forced   map[string]bool
	interval time.Duration
	mu       sync.Mutex
}

// NewReconciliationPolicy creates a policy. Zero interval means DefaultReconciliationInterval,
// nil now means time.Now.
func NewReconciliationPolicy(interval time.Duration, now func() time.Time) *ReconciliationPolicy {
	if interval <= 0 {
		interval = DefaultReconciliationInterval
	}
	if now == nil {
		now = time.Now
	}
	return &ReconciliationPolicy{
		now:      now,
		lastRun:  make(map[string]time.Time),
		forced:   make(map[string]bool),
		interval: interval,
	}
}

// ShouldRunFullReconciliation grants a run if the tag is forced, was never run,
// or last ran at least one interval ago.
func (p *ReconciliationPolicy) ShouldRunFullReconciliation(tag string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.forced[tag] {
		delete(p.forced, tag)
		p.lastRun[tag] = now
		return true
	}

	last, ok := p.lastRun[tag]
	if ok && now.Sub(last) < p.interval {
		return false
	}
	p.lastRun[tag] = now
	return true
}

// ForceNextFullReconciliation grants the next check of tag regardless of the interval.
func (p *ReconciliationPolicy) ForceNextFullReconciliation(tag string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forced[tag] = true
}

// ForceAll forgets every recorded run, so the next check of any tag is granted.
func (p *ReconciliationPolicy) ForceAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastRun = make(map[string]time.Time)
}

// LastRun returns when tag was last granted.
func (p *ReconciliationPolicy) LastRun(tag string) (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.lastRun[tag]
	return t, ok
}
