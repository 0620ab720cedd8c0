// Package metrics exposes Prometheus metrics for the academy frontend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the metric vectors and the registry they live in.
// All methods are safe on a nil *Manager so callers never need to check.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	upstreamCalls        *prometheus.CounterVec
	upstreamCallDuration *prometheus.HistogramVec

	leaderboardSize prometheus.Gauge
	sessionEvents   *prometheus.CounterVec
	emailsSent      *prometheus.CounterVec
}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace sets the metric name prefix.
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

// WithRegistry uses an existing registry instead of a fresh one.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) { m.registry = r }
}

// WithHistogramBuckets overrides the duration buckets (milliseconds).
func WithHistogramBuckets(b []float64) Option {
	return func(m *Manager) { m.buckets = b }
}

// defaultBuckets covers 5ms..10s in milliseconds.
var defaultBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// NewManager registers every metric on a private registry.
// POST: Go runtime and process collectors are registered alongside
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "academy",
		buckets:   defaultBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Inbound requests by route pattern, method and status class.",
	}, []string{"route", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "Inbound request latency in milliseconds.",
		Buckets:   m.buckets,
	}, []string{"route", "method"})
	m.upstreamCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "calls_total",
		Help:      "Academy API calls by route template, method and status class.",
	}, []string{"route", "method", "status"})
	m.upstreamCallDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "upstream",
		Name:      "call_duration_milliseconds",
		Help:      "Academy API call latency in milliseconds.",
		Buckets:   m.buckets,
	}, []string{"route", "method"})
	m.leaderboardSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "dashboard",
		Name:      "leaderboard_entries",
		Help:      "Entries in the most recently rendered best-players leaderboard.",
	})
	m.sessionEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "events_total",
		Help:      "Session lifecycle events (created, refreshed, expired, revoked).",
	}, []string{"event"})
	m.emailsSent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "email",
		Name:      "reports_total",
		Help:      "Report emails by outcome.",
	}, []string{"outcome"})
	return m
}

// StatusClass folds a status code into "2xx".."5xx", or "error" for transport failures.
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

// ObserveRequest records one inbound request.
func (m *Manager) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, StatusClass(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(millis(d))
}

// ObserveUpstream records one academy API call. status 0 means no response.
func (m *Manager) ObserveUpstream(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.upstreamCalls.WithLabelValues(route, method, StatusClass(status)).Inc()
	m.upstreamCallDuration.WithLabelValues(route, method).Observe(millis(d))
}

// SetLeaderboardSize publishes the size of the last computed leaderboard.
func (m *Manager) SetLeaderboardSize(n int) {
	if m == nil {
		return
	}
	m.leaderboardSize.Set(float64(n))
}

// SessionEvent counts a session lifecycle event.
func (m *Manager) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.sessionEvents.WithLabelValues(event).Inc()
}

// EmailSent counts a report email by outcome ("sent" or "failed").
func (m *Manager) EmailSent(outcome string) {
	if m == nil {
		return
	}
	m.emailsSent.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
