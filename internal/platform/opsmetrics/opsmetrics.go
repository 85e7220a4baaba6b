// Package opsmetrics is the process-level Prometheus registry used on the
// admin listener: request counts and latencies for the public API, distinct
// from the domain-level /api/v1/exporter endpoint in internal/httpapi, which
// serves derived region/group status snapshots rather than process counters.
package opsmetrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the process metrics and the handler that serves them.
type Registry struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New builds a fresh registry holding only the request counter and latency
// histogram this package adds; no Go runtime or process collectors are
// registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Registry{
		reg: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "watchdog_http_requests_total",
			Help: "Total HTTP requests served by the public API, by route and status code.",
		}, []string{"route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "watchdog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	return r
}

// Middleware wraps next, recording a request counter and latency histogram
// keyed by the raw request URL path (not the chi route pattern).
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, req)

		route := req.URL.Path
		r.requests.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		r.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus text exposition format for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
