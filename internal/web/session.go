package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"votd/internal/logging"
	"votd/internal/notice"
	"votd/internal/session"
	"votd/internal/store"
)

const (
	sessionCookie = "votd_session"
	flashKey      = "votd.flash"
)

type sessionCtxKey struct{}

// reqSession is the browser session a request belongs to.
type reqSession struct {
	*session.Session
	ID string
	kv *store.MemoryKV
}

// withSession attaches the caller's session, creating one for new browsers. The
// cookie has no expiry, so like sessionStorage it ends with the browser session.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(sessionCookie); err == nil {
			if u, err := uuid.Parse(c.Value); err == nil {
				id = u.String()
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.cfg.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}
		kv := s.sessions.Get(id)
		sess := &reqSession{Session: session.New(kv), ID: id, kv: kv}

		// Coming back on a new day drops yesterday's shuffle.
		if rolled, err := sess.Resume(s.now()); err != nil {
			logging.FromContext(r.Context()).Warn("session resume", "err", err)
		} else if rolled {
			logging.FromContext(r.Context()).Debug("session rolled to new day", "session", id)
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *reqSession {
	sess, _ := r.Context().Value(sessionCtxKey{}).(*reqSession)
	return sess
}

// setFlash keeps n for the next page render of this session.
func (rs *reqSession) setFlash(n notice.Notice) {
	b, err := json.Marshal(struct {
		notice.Notice
		DurationMS int64 `json:"durationMs"`
	}{n, n.Duration.Milliseconds()})
	if err != nil {
		return
	}
	_ = rs.kv.SetItem(flashKey, string(b))
}

// takeFlash returns and clears the pending notice.
func (rs *reqSession) takeFlash() *notice.Notice {
	v, ok, _ := rs.kv.GetItem(flashKey)
	if !ok {
		return nil
	}
	_ = rs.kv.RemoveItem(flashKey)
	var raw struct {
		notice.Notice
		DurationMS int64 `json:"durationMs"`
	}
	if err := json.Unmarshal([]byte(v), &raw); err != nil || raw.Text == "" {
		return nil
	}
	n := notice.New(raw.Kind, raw.Text)
	if raw.DurationMS > 0 {
		n = n.For(msDuration(raw.DurationMS))
	}
	return &n
}
