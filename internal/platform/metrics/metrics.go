package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the process-wide Prometheus metrics: HTTP latency and hook
// decisions. Checker-level metrics live in internal/reputation/metrics.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	HookDecisions   *prometheus.CounterVec
}

// New creates and registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mailguard_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status"}),
		HookDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mailguard_hook_decisions_total",
			Help: "Hook decisions by trigger point and reason",
		}, []string{"trigger", "allowed", "reason"}),
	}
}

// ObserveRequest records one HTTP request. Call with time.Now() at the start.
func (m *Metrics) ObserveRequest(method, route, status string, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}

// IncrementHookDecision counts a hook outcome.
func (m *Metrics) IncrementHookDecision(trigger string, allowed bool, reason string) {
	a := "false"
	if allowed {
		a = "true"
	}
	m.HookDecisions.WithLabelValues(trigger, a, reason).Inc()
}
