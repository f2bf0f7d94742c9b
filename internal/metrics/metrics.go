// Package metrics exposes gateway counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	sessionTransitions *prometheus.CounterVec
	guardDecisions     *prometheus.CounterVec
	backendRequests    *prometheus.CounterVec
	backendLatency     *prometheus.HistogramVec
}

// New builds an isolated registry so tests can create as many as they like.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobportal",
			Name:      "session_transitions_total",
			Help:      "Session operations by name and result.",
		}, []string{"op", "result"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobportal",
			Name:      "guard_decisions_total",
			Help:      "Route guard outcomes by guard name.",
		}, []string{"guard", "outcome"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobportal",
			Name:      "backend_requests_total",
			Help:      "Requests sent to the job-matching backend by method and status code.",
		}, []string{"method", "code"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobportal",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend round-trip latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessionTransitions,
		m.guardDecisions,
		m.backendRequests,
		m.backendLatency,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Transition records a session operation. It satisfies session.Observer.
func (m *Metrics) Transition(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.sessionTransitions.WithLabelValues(op, result).Inc()
}

func (m *Metrics) GuardDecision(guard, outcome string) {
	m.guardDecisions.WithLabelValues(guard, outcome).Inc()
}

// InstrumentTransport counts and times requests made through next.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(
		m.backendRequests,
		promhttp.InstrumentRoundTripperDuration(m.backendLatency, next),
	)
}
