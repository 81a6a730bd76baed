package schedule

import (
	"sync"
	"time"
)

// Throttler admits at most one call per interval; calls inside the window are dropped.
type Throttler struct {
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last time.Time
	used bool
}

func NewThrottler(interval time.Duration) *Throttler {
	return &Throttler{interval: interval, now: time.Now}
}

// Allow reports whether a call may run now, and if so starts a new window.
func (t *Throttler) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if t.used && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.used = true
	return true
}

// Do runs fn when Allow admits it and reports whether it ran.
func (t *Throttler) Do(fn func()) bool {
	if !t.Allow() {
		return false
	}
	fn()
	return true
}
