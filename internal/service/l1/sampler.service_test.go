package l1_service

import (
	"math"
	"propertysim/internal/domain"
	"propertysim/internal/logger"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestDeviate(t *testing.T) {
	t.Run("zero variance is neutral for every kind", func(t *testing.T) {
		for _, kind := range []domain.DistributionKind{
			domain.DistributionNormal,
			domain.DistributionLogNormal,
			domain.DistributionUniform,
			domain.DistributionTriangular,
		} {
			u := domain.DriverUncertainty{Kind: kind, VariancePct: 0}
			require.Equal(t, 1.0, Deviate(u, 2.5), kind)
		}
	})

	t.Run("normal scales z by relative sd", func(t *testing.T) {
		u := domain.DriverUncertainty{Kind: domain.DistributionNormal, VariancePct: 10}
		require.InDelta(t, 1.1, Deviate(u, 1), 1e-12)
		require.InDelta(t, 0.8, Deviate(u, -2), 1e-12)
	})

	t.Run("symmetric shapes map z=0 to 1", func(t *testing.T) {
		for _, kind := range []domain.DistributionKind{domain.DistributionUniform, domain.DistributionTriangular} {
			u := domain.DriverUncertainty{Kind: kind, VariancePct: 20}
			require.InDelta(t, 1.0, Deviate(u, 0), 1e-9, kind)
		}
	})

	t.Run("uniform stays inside its support", func(t *testing.T) {
		u := domain.DriverUncertainty{Kind: domain.DistributionUniform, VariancePct: 10}
		half := 0.1 * math.Sqrt(3)
		for _, z := range []float64{-40, -3, 3, 40} {
			m := Deviate(u, z)
			require.GreaterOrEqual(t, m, 1-half-1e-9)
			require.LessOrEqual(t, m, 1+half+1e-9)
		}
	})

	t.Run("lognormal is positive with mean 1", func(t *testing.T) {
		u := domain.DriverUncertainty{Kind: domain.DistributionLogNormal, VariancePct: 15}
		rng := NewTrialRand(7, 0)
		sum := 0.0
		n := 50000
		for i := 0; i < n; i++ {
			m := Deviate(u, rng.NormFloat64())
			require.Greater(t, m, 0.0)
			sum += m
		}
		require.InDelta(t, 1.0, sum/float64(n), 0.005)
	})
}

func TestNewDriverSampler(t *testing.T) {
	log := logger.NewNop()
	uncertainties := domain.Uncertainties{
		domain.DriverRent:    {Kind: domain.DistributionNormal, VariancePct: 10},
		domain.DriverVacancy: {Kind: domain.DistributionNormal, VariancePct: 10},
	}

	t.Run("no matrix samples independently", func(t *testing.T) {
		s := NewDriverSampler(uncertainties, nil, log)
		require.False(t, s.Correlated())
		require.False(t, s.FellBack())
		require.Empty(t, s.Warnings())
	})

	t.Run("identity matrix is treated as independent", func(t *testing.T) {
		s := NewDriverSampler(uncertainties, domain.CorrelationMatrix{
			"rent":    {"rent": 1, "vacancy": 0},
			"vacancy": {"vacancy": 1},
		}, log)
		require.False(t, s.Correlated())
		require.False(t, s.FellBack())
	})

	t.Run("out of range coefficient falls back", func(t *testing.T) {
		s := NewDriverSampler(uncertainties, domain.CorrelationMatrix{
			"rent": {"vacancy": 1.5},
		}, log)
		require.False(t, s.Correlated())
		require.True(t, s.FellBack())
		require.Len(t, s.Warnings(), 1)
	})

	t.Run("unknown driver name falls back", func(t *testing.T) {
		s := NewDriverSampler(uncertainties, domain.CorrelationMatrix{
			"rent": {"parking": 0.3},
		}, log)
		require.True(t, s.FellBack())
	})

	t.Run("asymmetric matrix falls back", func(t *testing.T) {
		s := NewDriverSampler(uncertainties, domain.CorrelationMatrix{
			"rent":    {"vacancy": 0.3},
			"vacancy": {"rent": -0.3},
		}, log)
		require.True(t, s.FellBack())
	})

	t.Run("non positive semi-definite matrix falls back", func(t *testing.T) {
		s := NewDriverSampler(uncertainties, domain.CorrelationMatrix{
			"rent":    {"vacancy": 0.9, "capitalGrowth": 0.9},
			"vacancy": {"capitalGrowth": -0.9},
		}, log)
		require.True(t, s.FellBack())
		require.Len(t, s.Warnings(), 1)
	})

	t.Run("perfectly correlated pair still factorizes", func(t *testing.T) {
		s := NewDriverSampler(uncertainties, domain.CorrelationMatrix{
			"rent": {"vacancy": 1},
		}, log)
		require.True(t, s.Correlated())
		require.False(t, s.FellBack())
	})

	t.Run("display names are used for lookups", func(t *testing.T) {
		named := domain.Uncertainties{
			domain.DriverRent:    {VariancePct: 10, Name: "Market Rent"},
			domain.DriverVacancy: {VariancePct: 10, Name: "Vacancy"},
		}
		s := NewDriverSampler(named, domain.CorrelationMatrix{
			"Market Rent": {"Vacancy": -0.5},
		}, log)
		require.True(t, s.Correlated())
	})
}

func TestDriverSampler_Sample(t *testing.T) {
	log := logger.NewNop()

	t.Run("zero variance gives neutral drivers", func(t *testing.T) {
		s := NewDriverSampler(domain.Uncertainties{}, nil, log)
		for trial := 0; trial < 10; trial++ {
			got := s.Sample(NewTrialRand(1, trial))
			require.Equal(t, "", cmp.Diff(domain.NeutralDrivers(), got))
		}
	})

	t.Run("same seed and trial reproduce the draw", func(t *testing.T) {
		s := NewDriverSampler(domain.Uncertainties{
			domain.DriverRent:         {VariancePct: 10},
			domain.DriverInterestRate: {Kind: domain.DistributionTriangular, VariancePct: 20},
		}, domain.CorrelationMatrix{"rent": {"interestRate": 0.4}}, log)

		a := s.Sample(NewTrialRand(99, 12))
		b := s.Sample(NewTrialRand(99, 12))
		c := s.Sample(NewTrialRand(99, 13))
		require.Equal(t, "", cmp.Diff(a, b))
		require.NotEqual(t, a, c)
	})

	t.Run("identity matrix matches no matrix", func(t *testing.T) {
		u := domain.Uncertainties{
			domain.DriverRent:    {VariancePct: 10},
			domain.DriverVacancy: {Kind: domain.DistributionUniform, VariancePct: 30},
		}
		plain := NewDriverSampler(u, nil, log)
		identity := NewDriverSampler(u, domain.CorrelationMatrix{
			"rent":    {"rent": 1, "vacancy": 0},
			"vacancy": {"vacancy": 1, "rent": 0},
		}, log)
		for trial := 0; trial < 50; trial++ {
			require.Equal(t, plain.Sample(NewTrialRand(5, trial)), identity.Sample(NewTrialRand(5, trial)))
		}
	})

	t.Run("correlated draws follow the matrix", func(t *testing.T) {
		s := NewDriverSampler(domain.Uncertainties{
			domain.DriverRent:    {VariancePct: 10},
			domain.DriverVacancy: {VariancePct: 10},
		}, domain.CorrelationMatrix{"rent": {"vacancy": -0.8}}, log)

		n := 20000
		rent := make([]float64, n)
		vacancy := make([]float64, n)
		for trial := 0; trial < n; trial++ {
			d := s.Sample(NewTrialRand(3, trial))
			rent[trial] = d.Rent
			vacancy[trial] = d.Vacancy
		}

		require.InDelta(t, -0.8, stat.Correlation(rent, vacancy, nil), 0.03)
		require.InDelta(t, 1.0, stat.Mean(rent, nil), 0.01)
		require.InDelta(t, 0.1, stat.StdDev(rent, nil), 0.01)
	})
}
