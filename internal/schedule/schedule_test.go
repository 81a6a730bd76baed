package schedule

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_OnlyLastValueRuns(t *testing.T) {
	t.Parallel()

	got := make(chan string, 4)
	d := NewDebouncer(20*time.Millisecond, func(v string) { got <- v })
	d.Trigger("j")
	d.Trigger("jo")
	d.Trigger("joh")

	select {
	case v := <-got:
		if v != "joh" {
			t.Fatalf("debounced value = %q, want %q", v, "joh")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("debounced fn never ran")
	}
	select {
	case v := <-got:
		t.Fatalf("unexpected second run with %q", v)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func(int) { runs.Add(1) })
	d.Trigger(1)
	d.Cancel()
	time.Sleep(80 * time.Millisecond)
	if n := runs.Load(); n != 0 {
		t.Fatalf("runs = %d after Cancel", n)
	}

	var nilD *Debouncer[int]
	nilD.Trigger(1)
	nilD.Cancel()
}

func TestThrottler_DropsInsideWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	th := NewThrottler(300 * time.Millisecond)
	th.now = func() time.Time { return now }

	runs := 0
	inc := func() { runs++ }
	if !th.Do(inc) {
		t.Fatalf("first call throttled")
	}
	now = now.Add(100 * time.Millisecond)
	if th.Do(inc) {
		t.Fatalf("call inside window ran")
	}
	now = now.Add(200 * time.Millisecond)
	if !th.Do(inc) {
		t.Fatalf("call after window throttled")
	}
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fireLast advances the clock to the most recent timer's deadline and runs it.
func (c *fakeClock) fireLast(t *testing.T) time.Duration {
	t.Helper()
	c.mu.Lock()
	if len(c.timers) == 0 {
		c.mu.Unlock()
		t.Fatalf("no timer armed")
	}
	tm := c.timers[len(c.timers)-1]
	c.now = c.now.Add(tm.d)
	c.mu.Unlock()
	tm.f()
	return tm.d
}

func (c *fakeClock) lastDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[len(c.timers)-1].d
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRollover_FiresAtMidnightAndRearms(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 10, 15, 23, 0, 0, 0, time.UTC)}
	var fired []time.Time
	r := NewRollover(RolloverOpts{
		Action:    func(now time.Time) error { fired = append(fired, now); return nil },
		Now:       clock.Now,
		AfterFunc: clock.AfterFunc,
		Logger:    quietLogger(),
	})
	r.Start()

	if d := clock.lastDelay(); d != time.Hour+50*time.Millisecond {
		t.Fatalf("first delay = %v", d)
	}
	clock.fireLast(t)
	if len(fired) != 1 || fired[0].Day() != 16 {
		t.Fatalf("fired = %v", fired)
	}
	if d := clock.lastDelay(); d != 24*time.Hour {
		t.Fatalf("re-armed delay = %v, want 24h", d)
	}
}

func TestRollover_RetriesThenGivesUp(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 10, 15, 23, 59, 0, 0, time.UTC)}
	attempts := 0
	r := NewRollover(RolloverOpts{
		Action:    func(time.Time) error { attempts++; return errors.New("boom") },
		Now:       clock.Now,
		AfterFunc: clock.AfterFunc,
		Logger:    quietLogger(),
	})
	r.Start()

	clock.fireLast(t) // midnight attempt
	for i := 0; i < DefaultRolloverMaxRetries; i++ {
		if d := clock.lastDelay(); d != DefaultRolloverBackoff {
			t.Fatalf("retry %d delay = %v, want backoff", i+1, d)
		}
		clock.fireLast(t)
	}
	if attempts != 1+DefaultRolloverMaxRetries {
		t.Fatalf("attempts = %d", attempts)
	}
	next := r.Next()
	if next.Day() != 17 || next.Hour() != 0 {
		t.Fatalf("after giving up, next fire = %v, want next midnight", next)
	}
}

func TestRollover_StopPreventsRearm(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	var r *Rollover
	r = NewRollover(RolloverOpts{
		Action:    func(time.Time) error { r.Stop(); return nil },
		Now:       clock.Now,
		AfterFunc: clock.AfterFunc,
		Logger:    quietLogger(),
	})
	r.Start()
	clock.fireLast(t)
	if !r.Next().IsZero() {
		t.Fatalf("stopped rollover still armed for %v", r.Next())
	}
	if n := len(clock.timers); n != 1 {
		t.Fatalf("timers armed = %d, want 1", n)
	}
}
