package metrics

import (
	"propertysim/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "propertysim"

type Metrics struct {
	SimulationRunsTotal      *prometheus.CounterVec
	SimulationDuration       prometheus.Histogram
	SimulationTrialsTotal    prometheus.Counter
	CorrelationFallbackTotal prometheus.Counter
	SimulationFailuresTotal  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		SimulationRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_runs_total",
			Help:      "Completed simulation runs by recommended decision",
		}, []string{"decision"}),
		SimulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Wall time of a simulation run",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SimulationTrialsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_trials_total",
			Help:      "Trials executed across all completed runs",
		}),
		CorrelationFallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correlation_fallback_total",
			Help:      "Runs whose correlation matrix was rejected and sampled independently",
		}),
		SimulationFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulation_failures_total",
			Help:      "Runs that did not produce a result, by reason",
		}, []string{"reason"}),
	}
}

// Register adds every collector to r. Pass prometheus.DefaultRegisterer
// in main and a fresh registry in tests.
func (m *Metrics) Register(r prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.SimulationRunsTotal,
		m.SimulationDuration,
		m.SimulationTrialsTotal,
		m.CorrelationFallbackTotal,
		m.SimulationFailuresTotal,
	}
	for _, c := range collectors {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

type Recorder interface {
	RecordSimulation(result *domain.SimulationResult)
	RecordFailure(reason string)
}

func (m *Metrics) RecordSimulation(result *domain.SimulationResult) {
	m.SimulationRunsTotal.WithLabelValues(string(result.Decision)).Inc()
	m.SimulationDuration.Observe(float64(result.DurationMs) / 1000)
	m.SimulationTrialsTotal.Add(float64(result.Iterations))
	if result.CorrelationFallback {
		m.CorrelationFallbackTotal.Inc()
	}
}

func (m *Metrics) RecordFailure(reason string) {
	m.SimulationFailuresTotal.WithLabelValues(reason).Inc()
}

type noopRecorder struct{}

// NewNoopRecorder is for the CLI and tests that don't export metrics.
func NewNoopRecorder() Recorder {
	return noopRecorder{}
}

func (noopRecorder) RecordSimulation(*domain.SimulationResult) {}

func (noopRecorder) RecordFailure(string) {}
