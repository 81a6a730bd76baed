// Package metrics exposes Prometheus counters for the web surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "votd"

// Metrics owns its registry so that several servers (and tests) can coexist.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	HTTPInFlight    prometheus.Gauge
	VerseRenders    *prometheus.CounterVec
	Searches        prometheus.Counter
	Shuffles        prometheus.Counter
	SettingsSaves   *prometheus.CounterVec
	Rollovers       *prometheus.CounterVec
	LiveSubscribers prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		}, []string{"method", "route"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_requests_in_flight",
			Help: "HTTP requests being served.",
		}),
		VerseRenders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "verse_renders_total",
			Help: "Verse views rendered, by translation and outcome.",
		}, []string{"translation", "outcome"}),
		Searches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "searches_total",
			Help: "Catalog searches run.",
		}),
		Shuffles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "shuffles_total",
			Help: "Shuffle requests.",
		}),
		SettingsSaves: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "settings_saves_total",
			Help: "Settings saves by result (ok, invalid, storage_error, reset).",
		}, []string{"result"}),
		Rollovers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "rollovers_total",
			Help: "Daily rollovers by result.",
		}, []string{"result"}),
		LiveSubscribers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "live_subscribers",
			Help: "Open page event streams.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Middleware records request counts and latency labelled by the matched chi route
// pattern, which keeps label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPInFlight.Inc()
		defer m.HTTPInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
