package l2_service

import (
	"propertysim/internal/domain"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func floatPointer(f float64) *float64 {
	return &f
}

func TestPercentile(t *testing.T) {
	t.Run("interpolates between ranks", func(t *testing.T) {
		sorted := []float64{1, 2, 3, 4, 5}
		require.Equal(t, 3.0, Percentile(sorted, 50))
		require.InDelta(t, 1.4, Percentile(sorted, 10), 1e-12)
		require.InDelta(t, 4.6, Percentile(sorted, 90), 1e-12)
		require.Equal(t, 1.0, Percentile(sorted, 0))
		require.Equal(t, 5.0, Percentile(sorted, 100))
	})

	t.Run("even population median", func(t *testing.T) {
		require.Equal(t, 2.5, Percentile([]float64{1, 2, 3, 4}, 50))
	})

	t.Run("single value", func(t *testing.T) {
		require.Equal(t, 7.0, Percentile([]float64{7}, 10))
	})

	t.Run("monotonic in p", func(t *testing.T) {
		sorted := []float64{-40, -3, 0, 0, 2, 9, 9, 15, 120}
		last := Percentile(sorted, 0)
		for p := 1.0; p <= 100; p++ {
			v := Percentile(sorted, p)
			require.GreaterOrEqual(t, v, last)
			last = v
		}
	})
}

func TestHistogram(t *testing.T) {
	t.Run("equal width buckets", func(t *testing.T) {
		got := Histogram([]float64{0, 1, 2, 3, 4, 10}, 5)
		expected := []domain.HistogramBucket{
			{Lower: 0, Upper: 2, Count: 2},
			{Lower: 2, Upper: 4, Count: 2},
			{Lower: 4, Upper: 6, Count: 1},
			{Lower: 6, Upper: 8, Count: 0},
			{Lower: 8, Upper: 10, Count: 1},
		}
		require.Equal(t, "", cmp.Diff(expected, got))
	})

	t.Run("counts sum to population", func(t *testing.T) {
		values := []float64{}
		for i := 0; i < 1013; i++ {
			values = append(values, float64(i*i%97)-40.5)
		}
		got := Histogram(values, 30)
		require.Len(t, got, 30)
		total := 0
		for _, b := range got {
			total += b.Count
		}
		require.Equal(t, len(values), total)
	})

	t.Run("no spread collapses to one bucket", func(t *testing.T) {
		got := Histogram([]float64{5, 5, 5}, 20)
		require.Equal(t, "", cmp.Diff([]domain.HistogramBucket{{Lower: 5, Upper: 5, Count: 3}}, got))
	})

	t.Run("empty", func(t *testing.T) {
		require.Empty(t, Histogram(nil, 10))
	})
}

func TestProbabilityCurve(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 10}
	got := ProbabilityCurve(values, Histogram(values, 5))
	require.Len(t, got, 5)
	require.InDelta(t, 2.0/6, got[0].CumulativeProbability, 1e-12)
	require.Equal(t, 2.0, got[0].Value)
	require.Equal(t, 1.0, got[4].CumulativeProbability)
	for i := 1; i < len(got); i++ {
		require.GreaterOrEqual(t, got[i].CumulativeProbability, got[i-1].CumulativeProbability)
	}
}

func TestSummarize(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		got, err := Summarize([]float64{5, 1, 4, 2, 3})
		require.NoError(t, err)
		require.Equal(t, 3.0, got.Median)
		require.Equal(t, 3.0, got.Mean)
		require.Equal(t, 1.0, got.Min)
		require.Equal(t, 5.0, got.Max)
		require.InDelta(t, 1.5811388, got.StdDev, 1e-6)
		require.LessOrEqual(t, got.P10, got.Median)
		require.LessOrEqual(t, got.Median, got.P90)
	})

	t.Run("does not reorder caller's slice", func(t *testing.T) {
		in := []float64{3, 1, 2}
		_, err := Summarize(in)
		require.NoError(t, err)
		require.Equal(t, []float64{3, 1, 2}, in)
	})

	t.Run("single value has no spread", func(t *testing.T) {
		got, err := Summarize([]float64{42})
		require.NoError(t, err)
		require.Equal(t, 0.0, got.StdDev)
		require.Equal(t, 42.0, got.P10)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Summarize(nil)
		require.Error(t, err)
	})
}

func TestAggregationService_Aggregate(t *testing.T) {
	svc := NewAggregationService(4)

	population := NewTrialPopulation(5)
	for i := 0; i < 5; i++ {
		population.Trials[i] = i
		population.GrossNpv[i] = float64(i) * 100
		population.NetNpv[i] = float64(i)*100 - 150
	}
	population.Irr[0] = nil
	population.Irr[1] = floatPointer(-0.05)
	population.Irr[2] = floatPointer(0.02)
	population.Irr[3] = floatPointer(0.06)
	population.Irr[4] = floatPointer(0.1)

	t.Run("gross mode", func(t *testing.T) {
		got, err := svc.Aggregate(population, domain.NpvModeGross)
		require.NoError(t, err)
		require.Equal(t, 200.0, got.Npv.Median)
		require.Equal(t, 50.0, got.NetNpv.Median)
		require.Equal(t, 1, got.UndefinedIrrCount)
		require.NotNil(t, got.Irr)
		require.InDelta(t, 0.04, got.Irr.Median, 1e-12)
		require.InDelta(t, 0.4, got.ProbabilityOfLoss, 1e-12)
		require.Equal(t, 2, got.MedianTrial)

		total := 0
		for _, b := range got.IrrHistogram {
			total += b.Count
		}
		require.Equal(t, 4, total)
		require.Len(t, got.NpvProbabilityCurve, len(got.NpvHistogram))
	})

	t.Run("net mode reports the net population", func(t *testing.T) {
		got, err := svc.Aggregate(population, domain.NpvModeNet)
		require.NoError(t, err)
		require.Equal(t, 50.0, got.Npv.Median)
		require.Equal(t, got.Npv, got.NetNpv)
	})

	t.Run("all irr undefined", func(t *testing.T) {
		p := NewTrialPopulation(2)
		got, err := svc.Aggregate(p, domain.NpvModeGross)
		require.NoError(t, err)
		require.Nil(t, got.Irr)
		require.Equal(t, 2, got.UndefinedIrrCount)
		require.Empty(t, got.IrrHistogram)
	})

	t.Run("empty population", func(t *testing.T) {
		_, err := svc.Aggregate(NewTrialPopulation(0), domain.NpvModeGross)
		require.Error(t, err)
	})
}

func TestCapRate(t *testing.T) {
	require.InDelta(t, 0.0436, CapRate(43600, 1000000), 1e-12)
	require.Equal(t, 0.0, CapRate(43600, 0))
}
