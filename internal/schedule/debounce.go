// Package schedule implements the timing policies the surfaces share: debounce,
// throttle and the daily rollover timer.
package schedule

import (
	"sync"
	"time"
)

// Debouncer runs fn once the triggers have been quiet for the delay. A trigger that
// arrives while a run is pending cancels it and restarts the wait, so only the most
// recent trigger's value is delivered.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	value   T
}

func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger schedules fn(v), replacing any pending invocation.
func (d *Debouncer[T]) Trigger(v T) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.pending = true
	d.value = v
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.onTimer)
		d.mu.Unlock()
		return
	}
	d.timer.Reset(d.delay)
	d.mu.Unlock()
}

// Cancel drops the pending invocation, if any.
func (d *Debouncer[T]) Cancel() {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
}

func (d *Debouncer[T]) onTimer() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	v := d.value
	d.mu.Unlock()

	d.fn(v)
}
