// Package metrics provides Prometheus collectors for the meet engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Option func(*Manager)

func WithNamespace(namespace string) Option {
	return func(m *Manager) { m.namespace = namespace }
}

func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) { m.registry = registry }
}

func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) { m.buckets = buckets }
}

// Manager owns every collector. All methods are safe on a nil *Manager.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	heatsGenerated      *prometheus.CounterVec
	scheduleGenerations prometheus.Counter
	scheduleConflicts   *prometheus.CounterVec
	resultsSubmitted    *prometheus.CounterVec
	rerankFailures      prometheus.Counter
	operationDuration   *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "meet",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.heatsGenerated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "heats_generated_total",
		Help:      "Heats and flights persisted, by generator",
	}, []string{"generator"})
	m.scheduleGenerations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "schedule_generations_total",
		Help:      "Schedule generation runs",
	})
	m.scheduleConflicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "schedule_conflicts_total",
		Help:      "Conflicts reported by schedule generation, by type",
	}, []string{"type"})
	m.resultsSubmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "results_submitted_total",
		Help:      "Result rows stored, by status",
	}, []string{"status"})
	m.rerankFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rerank_failures_total",
		Help:      "Events whose rank recalculation failed",
	})
	m.operationDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of engine operations",
		Buckets:   m.buckets,
	}, []string{"operation"})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status code",
	}, []string{"route", "code"})

	return m
}

func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) HeatsGenerated(generator string, count int) {
	if m == nil {
		return
	}
	m.heatsGenerated.WithLabelValues(generator).Add(float64(count))
}

func (m *Manager) ScheduleGenerated(conflictsByType map[string]int) {
	if m == nil {
		return
	}
	m.scheduleGenerations.Inc()
	for t, n := range conflictsByType {
		m.scheduleConflicts.WithLabelValues(t).Add(float64(n))
	}
}

func (m *Manager) ResultsSubmitted(status string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.resultsSubmitted.WithLabelValues(status).Add(float64(count))
}

func (m *Manager) RerankFailed() {
	if m == nil {
		return
	}
	m.rerankFailures.Inc()
}

// ObserveOperation is meant to be deferred: defer m.ObserveOperation("x", time.Now()).
func (m *Manager) ObserveOperation(operation string, started time.Time) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (m *Manager) HTTPRequest(route, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, code).Inc()
}
