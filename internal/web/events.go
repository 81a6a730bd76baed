package web

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"votd/internal/logging"
	"votd/internal/notice"
)

type eventKind int

const (
	eventRollover eventKind = iota + 1
	eventSettings
)

type event struct {
	kind eventKind
}

// hub fans events out to every open page stream. Slow subscribers miss events
// rather than block the sender.
type hub struct {
	mu     sync.Mutex
	subs   map[chan event]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: map[chan event]struct{}{}}
}

func (h *hub) subscribe() (ch chan event, cancel func()) {
	ch = make(chan event, 8)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
}

func (h *hub) broadcast(e event) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// close ends every stream, e.g. on shutdown.
func (h *hub) close() {
	h.mu.Lock()
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

const keepAliveEvery = 25 * time.Second

// handleEvents streams card patches to an open page: after the midnight rollover,
// and after settings change in another tab.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sse := datastar.NewSSE(w, r)

	ch, cancel := s.hub.subscribe()
	defer cancel()
	s.metrics.LiveSubscribers.Inc()
	defer s.metrics.LiveSubscribers.Dec()

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case e, ok := <-ch:
			if !ok {
				return
			}
			view, err := s.renderFor(r, sess)
			if err != nil {
				_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
				continue
			}
			card, err := s.renderTemplate("verse_card", view)
			if err != nil {
				logging.FromContext(r.Context()).Error("render card", "err", err)
				continue
			}
			_ = sse.PatchElements(card, datastar.WithSelector("#verse-card"), datastar.WithMode(datastar.ElementPatchModeOuter))

			if e.kind == eventRollover {
				n := notice.Success("New verse for today!").For(2 * time.Second)
				if toast, err := s.renderTemplate("toast", &n); err == nil {
					_ = sse.PatchElements(toast, datastar.WithSelector("#toasts"), datastar.WithMode(datastar.ElementPatchModeInner))
				}
			}
		}
	}
}
