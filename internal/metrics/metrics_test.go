package metrics

import (
	"propertysim/internal/domain"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordSimulation(t *testing.T) {
	m := New()
	require.NoError(t, m.Register(prometheus.NewRegistry()))

	m.RecordSimulation(&domain.SimulationResult{
		Iterations:          1000,
		Decision:            domain.DecisionBuy,
		DurationMs:          250,
		CorrelationFallback: true,
	})
	m.RecordSimulation(&domain.SimulationResult{
		Iterations: 500,
		Decision:   domain.DecisionPass,
	})
	m.RecordFailure("validation")

	require.Equal(t, 1.0, testutil.ToFloat64(m.SimulationRunsTotal.WithLabelValues("Buy")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SimulationRunsTotal.WithLabelValues("Pass")))
	require.Equal(t, 1500.0, testutil.ToFloat64(m.SimulationTrialsTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CorrelationFallbackTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SimulationFailuresTotal.WithLabelValues("validation")))
}

func TestMetrics_Register(t *testing.T) {
	t.Run("double registration fails", func(t *testing.T) {
		r := prometheus.NewRegistry()
		require.NoError(t, New().Register(r))
		require.Error(t, New().Register(r))
	})
}
