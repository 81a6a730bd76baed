// Package web serves the verse page, the settings page and a JSON API over the same
// render controller the CLI and TUI use.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"votd/internal/logging"
	"votd/internal/metrics"
	"votd/internal/render"
	"votd/internal/schedule"
	"votd/internal/session"
	"votd/internal/settings"
	"votd/internal/share"
	"votd/internal/store"
	"votd/internal/verse"
)

//go:embed templates/*.html static/*.js static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr    string
	Catalog *verse.Catalog
	// Profile is the durable store holding the settings record.
	Profile store.KV

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time

	SessionSize int
	SessionTTL  time.Duration
	// SecureCookies marks the session cookie Secure (serve behind TLS).
	SecureCookies bool
}

type Server struct {
	cfg    ServerConfig
	tmpl   *template.Template
	logger *slog.Logger
	now    func() time.Time

	ctl      *render.Controller
	catalog  *verse.Catalog
	settings *settings.Manager
	sessions *store.Sessions
	metrics  *metrics.Metrics
	hub      *hub
	rollover *schedule.Rollover
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Catalog == nil || cfg.Catalog.Len() == 0 {
		return nil, verse.ErrCatalogUnavailable
	}
	if cfg.Profile == nil {
		return nil, errors.New("web: profile store is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"payload":   func(v render.View) string { return share.Payload(v.Ref, v.Translation, v.Passage) },
		"ms":        func(d time.Duration) int64 { return d.Milliseconds() },
		"cardStyle": cardStyle,
		"pageStyle": pageStyle,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		tmpl:     tmpl,
		logger:   cfg.Logger,
		now:      cfg.Now,
		ctl:      render.New(cfg.Catalog),
		catalog:  cfg.Catalog,
		settings: settings.NewManager(settings.NewStore(cfg.Profile), cfg.Logger),
		sessions: store.NewSessions(cfg.SessionSize, cfg.SessionTTL),
		metrics:  cfg.Metrics,
		hub:      newHub(),
	}
	s.rollover = schedule.NewRollover(schedule.RolloverOpts{
		Action: s.rolloverAll,
		Now:    cfg.Now,
		Logger: cfg.Logger,
	})
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	static, _ := fs.Sub(assetsFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Group(func(r chi.Router) {
		r.Use(s.withSession)

		r.Get("/", s.handleIndex)
		r.Get("/search", s.handleSearch)
		r.Post("/shuffle", s.handleShuffle)
		r.Post("/shuffle/reset", s.handleShuffleReset)
		r.Post("/select", s.handleSelect)
		r.Get("/settings", s.handleSettingsGet)
		r.Post("/settings", s.handleSettingsPost)
		r.Post("/settings/reset", s.handleSettingsReset)
		r.Get("/events", s.handleEvents)

		r.Route("/api", func(r chi.Router) {
			r.Get("/verse", s.apiVerse)
			r.Get("/search", s.apiSearch)
			r.Get("/settings", s.apiSettingsGet)
			r.Put("/settings", s.apiSettingsPut)
			r.Post("/settings/reset", s.apiSettingsReset)
			r.Post("/shuffle", s.apiShuffle)
			r.Delete("/shuffle", s.apiShuffleReset)
			r.Post("/shuffle/select", s.apiShuffleSelect)
			r.Get("/categories", s.apiCategories)
			r.Get("/categories/{name}", s.apiCategory)
			r.Get("/random", s.apiRandom)
		})
	})
	return r
}

// Run serves on ln until ctx is done, with the midnight rollover armed.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	s.rollover.Start()
	defer s.rollover.Stop()

	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.close()
		return hs.Shutdown(shutdownCtx)
	}
}

// rolloverAll clears every live session's shuffle and tells open pages to re-render.
func (s *Server) rolloverAll(now time.Time) error {
	var errs []error
	s.sessions.Each(func(id string, kv *store.MemoryKV) {
		if err := session.New(kv).Rollover(now); err != nil {
			errs = append(errs, err)
		}
	})
	if err := errors.Join(errs...); err != nil {
		s.metrics.Rollovers.WithLabelValues("error").Inc()
		return err
	}
	s.metrics.Rollovers.WithLabelValues("ok").Inc()
	s.hub.broadcast(event{kind: eventRollover})
	s.logger.Info("daily rollover", "date", now.Format(time.DateOnly), "sessions", s.sessions.Len())
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), l)))
		l.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "dur", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		logging.FromContext(r.Context()).Error("render template", "name", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}
