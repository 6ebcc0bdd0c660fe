package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP and player collectors for one registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	SearchesTotal    *prometheus.CounterVec
	PlaysTotal       prometheus.Counter
}

// NewMetrics registers the allplay collectors, plus the Go and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allplay_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "allplay_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "allplay_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "allplay_searches_total",
				Help: "Total number of catalog searches",
			},
			[]string{"status"},
		),
		PlaysTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "allplay_plays_total",
				Help: "Total number of videos started",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSearch counts one search by outcome.
func (m *Metrics) ObserveSearch(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SearchesTotal.WithLabelValues(status).Inc()
}

// Middleware records request metrics, skipping the metrics and health endpoints.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		sw := newStatusWriter(w)
		start := time.Now()
		next.ServeHTTP(sw, r)

		path := normalizePath(r.URL.Path)
		m.RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps the first two segments to bound label cardinality.
func normalizePath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 2 {
		parts = append(parts[:2], "*")
	}
	return "/" + strings.Join(parts, "/")
}
