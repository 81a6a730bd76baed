package schedule

import (
	"log/slog"
	"sync"
	"time"

	"votd/internal/daily"
)

// Timer is the part of *time.Timer the rollover needs.
type Timer interface {
	Stop() bool
}

// AfterFunc matches time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

const (
	DefaultRolloverBackoff    = time.Hour
	DefaultRolloverMaxRetries = 3
)

type RolloverOpts struct {
	// Action runs just after each local midnight with the firing time.
	Action func(now time.Time) error

	// Backoff between retries of a failed Action.
	Backoff time.Duration
	// MaxRetries bounds the retries after the first failed attempt of a day; once
	// spent, the rollover gives up until the next midnight. Zero means the default;
	// negative disables retries.
	MaxRetries int

	Now       func() time.Time
	AfterFunc AfterFunc
	Logger    *slog.Logger
}

// Rollover fires an action at every local midnight.
type Rollover struct {
	action     func(time.Time) error
	backoff    time.Duration
	maxRetries int
	now        func() time.Time
	afterFunc  AfterFunc
	logger     *slog.Logger

	mu       sync.Mutex
	timer    Timer
	retries  int
	stopped  bool
	nextFire time.Time
}

func NewRollover(opts RolloverOpts) *Rollover {
	r := &Rollover{
		action:     opts.Action,
		backoff:    opts.Backoff,
		maxRetries: opts.MaxRetries,
		now:        opts.Now,
		afterFunc:  opts.AfterFunc,
		logger:     opts.Logger,
	}
	if r.backoff <= 0 {
		r.backoff = DefaultRolloverBackoff
	}
	if r.maxRetries < 0 {
		r.maxRetries = 0
	} else if r.maxRetries == 0 {
		r.maxRetries = DefaultRolloverMaxRetries
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.afterFunc == nil {
		r.afterFunc = realAfterFunc
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Start arms the timer for the next midnight.
func (r *Rollover) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = false
	r.retries = 0
	r.armLocked(daily.NextRollover(r.now()))
}

// Stop disarms the timer. A Stop during a running action prevents rescheduling.
func (r *Rollover) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Next returns when the timer fires next; zero when stopped.
func (r *Rollover) Next() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.timer == nil {
		return time.Time{}
	}
	return r.nextFire
}

func (r *Rollover) armLocked(at time.Time) {
	if r.timer != nil {
		r.timer.Stop()
	}
	d := at.Sub(r.now())
	if d < 0 {
		d = 0
	}
	r.nextFire = at
	r.timer = r.afterFunc(d, r.fire)
}

func (r *Rollover) fire() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	now := r.now()
	err := r.action(now)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	if err == nil {
		r.retries = 0
		r.armLocked(daily.NextRollover(now))
		return
	}
	if r.retries < r.maxRetries {
		r.retries++
		r.logger.Warn("daily rollover failed, retrying", "err", err, "attempt", r.retries, "backoff", r.backoff)
		r.armLocked(now.Add(r.backoff))
		return
	}
	r.logger.Error("daily rollover failed, giving up until next midnight", "err", err, "retries", r.retries)
	r.retries = 0
	r.armLocked(daily.NextRollover(now))
}
