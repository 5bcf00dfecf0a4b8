package observability

import (
	"context"

	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the Prometheus collectors fed by session hooks.
type Metrics struct {
	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	StepSelections prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gmboard_generation_requests_total",
				Help: "Total number of generation requests by intent and outcome",
			},
			[]string{"intent", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gmboard_generation_duration_seconds",
				Help:    "Duration of generation requests",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 90},
			},
			[]string{"intent"},
		),
		StepSelections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gmboard_step_selections_total",
				Help: "Total number of step selections",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.Requests, m.Duration, m.StepSelections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(context.Context, *domain.StepEvent) {
			m.StepSelections.Inc()
		},
		OnRequestComplete: func(_ context.Context, e *domain.RequestEvent) {
			outcome := OutcomeSuccess
			if e.Failed {
				outcome = OutcomeFailure
			}
			m.Requests.WithLabelValues(string(e.Intent), outcome).Inc()
			m.Duration.WithLabelValues(string(e.Intent)).Observe(e.Duration.Seconds())
		},
	}
}
