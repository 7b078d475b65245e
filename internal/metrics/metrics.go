// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "maturitymap"

// Metrics wraps the collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	Assessments        *prometheus.CounterVec
	AssessmentDuration prometheus.Histogram
	ChatRequests       *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
	PageTransitions    *prometheus.CounterVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Assessment requests by outcome",
		}, []string{"outcome"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_duration_seconds",
			Help:      "Latency of assessment requests to the AI service",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		}),
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Follow-up chat requests by outcome",
		}, []string{"outcome"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Client sessions currently held in memory",
		}),
		PageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_transitions_total",
			Help:      "Navigator page changes by target page",
		}, []string{"page"}),
	}

	reg.MustRegister(
		m.Assessments,
		m.AssessmentDuration,
		m.ChatRequests,
		m.ActiveSessions,
		m.PageTransitions,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveAssessment records one assessment request. Safe on a nil receiver.
func (m *Metrics) ObserveAssessment(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Assessments.WithLabelValues(outcome).Inc()
	m.AssessmentDuration.Observe(elapsed.Seconds())
}

// ObserveChat records one chat request. Safe on a nil receiver.
func (m *Metrics) ObserveChat(outcome string) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(outcome).Inc()
}

// ObservePage records a page transition. Safe on a nil receiver.
func (m *Metrics) ObservePage(page string) {
	if m == nil {
		return
	}
	m.PageTransitions.WithLabelValues(page).Inc()
}

// SetSessions reports the number of live sessions. Safe on a nil receiver.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
