package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the reputation checker.
// Tracks check outcomes, token validations and remote call latency.
type Metrics struct {
	ChecksTotal      *prometheus.CounterVec
	TokenValidations *prometheus.CounterVec
	LookupDuration   prometheus.Histogram
}

// New registers the checker metrics with reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mailguard_reputation_checks_total",
			Help: "Email reputation checks by outcome (allowed, rejected, or error kind)",
		}, []string{"outcome"}),
		TokenValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mailguard_token_validations_total",
			Help: "API token validations by result",
		}, []string{"valid"}),
		LookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mailguard_reputation_lookup_duration_seconds",
			Help:    "Duration of outbound reputation API calls",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// IncrementCheck records a finished check under its outcome label.
func (m *Metrics) IncrementCheck(outcome string) {
	m.ChecksTotal.WithLabelValues(outcome).Inc()
}

// IncrementTokenValidation records a token validation result.
func (m *Metrics) IncrementTokenValidation(valid bool) {
	label := "false"
	if valid {
		label = "true"
	}
	m.TokenValidations.WithLabelValues(label).Inc()
}

// ObserveLookup records the duration of one outbound call.
// Call with time.Now() at the start of the call.
func (m *Metrics) ObserveLookup(start time.Time) {
	m.LookupDuration.Observe(time.Since(start).Seconds())
}
