// Package notice carries short user-facing messages (the page's toasts) from the
// place a failure or success is handled to whichever surface shows it.
package notice

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultDuration is how long a notice stays visible unless it says otherwise.
const DefaultDuration = 1400 * time.Millisecond

type Notice struct {
	Kind     Kind          `json:"kind"`
	Text     string        `json:"text"`
	Duration time.Duration `json:"-"`
}

func New(kind Kind, text string) Notice {
	return Notice{Kind: kind, Text: text, Duration: DefaultDuration}
}

func Success(text string) Notice { return New(KindSuccess, text) }
func Error(text string) Notice   { return New(KindError, text) }
func Info(text string) Notice    { return New(KindInfo, text) }

// For returns a copy of n shown for d.
func (n Notice) For(d time.Duration) Notice {
	n.Duration = d
	return n
}

// Sink receives notices.
type Sink interface {
	Notify(Notice)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notice)

func (f SinkFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Sink = SinkFunc(func(Notice) {})

// Recorder buffers notices until drained.
type Recorder struct {
	mu  sync.Mutex
	out []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.out = append(r.out, n)
	r.mu.Unlock()
}

// Drain returns and clears the buffered notices.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	out := r.out
	r.out = nil
	r.mu.Unlock()
	if out == nil {
		out = []Notice{}
	}
	return out
}
