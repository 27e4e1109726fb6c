// Package metrics owns the Prometheus collectors of the server. Everything is
// registered on a dedicated registry so tests can build isolated instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskkeeper"

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Auth event outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics is safe to use as a nil pointer; recording is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	cacheRequests      *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec
	authEvents         *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Read-through cache lookups by resource kind and result.",
		}, []string{"kind", "result"}),
		cacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidation_failures_total",
			Help:      "Cache deletes that failed after a committed mutation.",
		}, []string{"kind"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Session operations by event and outcome.",
		}, []string{"event", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.cacheRequests,
		m.cacheInvalidations,
		m.authEvents,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) CacheRequest(kind, result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) CacheInvalidationFailed(kind string) {
	if m == nil {
		return
	}
	m.cacheInvalidations.WithLabelValues(kind).Inc()
}

// AuthEvent records a login, refresh, logout or authenticate attempt.
func (m *Metrics) AuthEvent(event string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.authEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
