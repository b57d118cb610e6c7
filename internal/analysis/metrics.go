package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of the evaluation counter.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Metrics counts evaluations and times them per analysis.
type Metrics struct {
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the pipeline collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firecrown",
			Name:      "evaluations_total",
			Help:      "Parameter points evaluated, by analysis and outcome.",
		}, []string{"analysis", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "firecrown",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating one parameter point, by analysis.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}, []string{"analysis"}),
	}
	for _, c := range []prometheus.Collector{m.evaluations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one evaluation of the named analysis.
func (m *Metrics) Observe(analysis string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeAccepted
	if err != nil {
		outcome = OutcomeRejected
	}
	m.evaluations.WithLabelValues(analysis, outcome).Inc()
	m.duration.WithLabelValues(analysis).Observe(time.Since(started).Seconds())
}

// Evaluations returns the counter for analysis and outcome.
func (m *Metrics) Evaluations(analysis, outcome string) prometheus.Counter {
	return m.evaluations.WithLabelValues(analysis, outcome)
}
