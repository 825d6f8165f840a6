package l3_service

import (
	"context"
	"fmt"
	"propertysim/internal/domain"
	l2_service "propertysim/internal/service/l2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func exampleDeal() domain.DealAssumptions {
	return domain.DealAssumptions{
		AskingPrice:        1000000,
		StampDutyRate:      5,
		LegalCosts:         2000,
		GrossRent:          52000,
		VacancyRate:        4,
		ManagementFeeRate:  7,
		Outgoings:          8000,
		LoanAmount:         800000,
		InterestRate:       6,
		LoanTermYears:      30,
		HoldingPeriodYears: 10,
		DiscountRate:       7,
		CapitalGrowthRate:  4,
		RentGrowthRate:     3,
	}
}

func exampleUncertainties() domain.Uncertainties {
	return domain.Uncertainties{
		domain.DriverRent:          {Kind: domain.DistributionNormal, VariancePct: 10},
		domain.DriverVacancy:       {Kind: domain.DistributionTriangular, VariancePct: 25},
		domain.DriverCapitalGrowth: {Kind: domain.DistributionLogNormal, VariancePct: 30},
		domain.DriverInterestRate:  {Kind: domain.DistributionUniform, VariancePct: 15},
	}
}

func newTestSimulationService(workers int) SimulationService {
	return NewSimulationService(
		l2_service.NewAggregationService(30),
		l2_service.NewThresholdDecisionRule(l2_service.DefaultDecisionThresholds()),
		SimulationServiceConfig{
			MaxIterations: 50000,
			Workers:       workers,
		},
	)
}

func seedPointer(s uint64) *uint64 {
	return &s
}

type failingDecisionRule struct{}

func (failingDecisionRule) Decide(l2_service.DecisionInput) (domain.Decision, error) {
	return "", fmt.Errorf("rule unavailable")
}

func TestSimulationService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("net differs from gross by the equity required", func(t *testing.T) {
		svc := newTestSimulationService(4)
		input := SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Iterations:    2000,
			Seed:          seedPointer(42),
		}
		gross, err := svc.Run(ctx, input)
		require.NoError(t, err)

		input.IncludeAcquisitionCost = true
		net, err := svc.Run(ctx, input)
		require.NoError(t, err)

		require.Equal(t, domain.NpvModeGross, gross.Mode)
		require.Equal(t, domain.NpvModeNet, net.Mode)
		require.InDelta(t, 252000, gross.EquityRequired, 1e-9)
		require.InDelta(t, 252000, gross.Npv.Median-net.Npv.Median, 1e-6)
		require.InDelta(t, 252000, gross.Npv.P10-net.Npv.P10, 1e-6)
		require.InDelta(t, 252000, gross.Npv.Mean-net.Npv.Mean, 1e-3)
		// decisions and loss probability ignore the reporting mode
		require.Equal(t, gross.Decision, net.Decision)
		require.Equal(t, gross.ProbabilityOfLoss, net.ProbabilityOfLoss)
	})

	t.Run("percentiles are ordered", func(t *testing.T) {
		svc := newTestSimulationService(4)
		result, err := svc.Run(ctx, SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Iterations:    3000,
			Seed:          seedPointer(7),
		})
		require.NoError(t, err)
		require.LessOrEqual(t, result.Npv.P10, result.Npv.Median)
		require.LessOrEqual(t, result.Npv.Median, result.Npv.P90)
		require.NotNil(t, result.Irr)
		require.LessOrEqual(t, result.Irr.P10, result.Irr.Median)
		require.LessOrEqual(t, result.Irr.Median, result.Irr.P90)
	})

	t.Run("histogram counts sum to iterations", func(t *testing.T) {
		svc := newTestSimulationService(3)
		result, err := svc.Run(ctx, SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Iterations:    1500,
			Seed:          seedPointer(11),
		})
		require.NoError(t, err)

		npvTotal := 0
		for _, b := range result.NpvHistogram {
			npvTotal += b.Count
		}
		require.Equal(t, 1500, npvTotal)

		irrTotal := 0
		for _, b := range result.IrrHistogram {
			irrTotal += b.Count
		}
		require.Equal(t, 1500-result.UndefinedIrrCount, irrTotal)

		last := result.NpvProbabilityCurve[len(result.NpvProbabilityCurve)-1]
		require.InDelta(t, 1, last.CumulativeProbability, 1e-12)
	})

	t.Run("zero variance collapses the population", func(t *testing.T) {
		svc := newTestSimulationService(4)
		result, err := svc.Run(ctx, SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: domain.Uncertainties{},
			Iterations:    500,
			Seed:          seedPointer(1),
		})
		require.NoError(t, err)
		require.Equal(t, result.Npv.P10, result.Npv.Median)
		require.Equal(t, result.Npv.Median, result.Npv.P90)
		require.InDelta(t, 0, result.Npv.StdDev, 1e-6)
		require.Len(t, result.NpvHistogram, 1)
		require.Equal(t, 500, result.NpvHistogram[0].Count)
		require.Len(t, result.RepresentativeLedger, 10)
	})

	t.Run("same seed reproduces regardless of worker count", func(t *testing.T) {
		input := SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Iterations:    1000,
			Seed:          seedPointer(2024),
		}
		a, err := newTestSimulationService(1).Run(ctx, input)
		require.NoError(t, err)
		b, err := newTestSimulationService(8).Run(ctx, input)
		require.NoError(t, err)

		require.Equal(t, "", cmp.Diff(a.Npv, b.Npv))
		require.Equal(t, "", cmp.Diff(a.NpvHistogram, b.NpvHistogram))
		require.Equal(t, "", cmp.Diff(a.RepresentativeLedger, b.RepresentativeLedger))
	})

	t.Run("identity correlation matches independent sampling", func(t *testing.T) {
		svc := newTestSimulationService(4)
		input := SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Iterations:    800,
			Seed:          seedPointer(9),
		}
		plain, err := svc.Run(ctx, input)
		require.NoError(t, err)

		input.Correlation = domain.CorrelationMatrix{
			"rent":    {"rent": 1, "vacancy": 0},
			"vacancy": {"vacancy": 1},
		}
		identity, err := svc.Run(ctx, input)
		require.NoError(t, err)

		require.Equal(t, "", cmp.Diff(plain.Npv, identity.Npv))
		require.Equal(t, "", cmp.Diff(plain.Irr, identity.Irr))
	})

	t.Run("invalid correlation falls back with a warning", func(t *testing.T) {
		svc := newTestSimulationService(4)
		result, err := svc.Run(ctx, SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Correlation:   domain.CorrelationMatrix{"rent": {"vacancy": 3}},
			Iterations:    100,
			Seed:          seedPointer(3),
		})
		require.NoError(t, err)
		require.True(t, result.CorrelationFallback)
		require.NotEmpty(t, result.Warnings)
	})

	t.Run("iterations outside the allowed range are rejected", func(t *testing.T) {
		svc := newTestSimulationService(2)
		for _, n := range []int{0, -5, 50001} {
			_, err := svc.Run(ctx, SimulationInput{
				Assumptions: exampleDeal(),
				Iterations:  n,
			})
			require.Error(t, err)
			require.True(t, domain.IsValidationError(err))
		}
	})

	t.Run("invalid assumptions are rejected", func(t *testing.T) {
		deal := exampleDeal()
		deal.HoldingPeriodYears = 0
		_, err := newTestSimulationService(2).Run(ctx, SimulationInput{
			Assumptions: deal,
			Iterations:  10,
		})
		require.True(t, domain.IsValidationError(err))
	})

	t.Run("cancelled run returns no result", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		result, err := newTestSimulationService(4).Run(cancelled, SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Iterations:    20000,
			Seed:          seedPointer(5),
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, result)
	})

	t.Run("zero variance matches the deterministic example exactly", func(t *testing.T) {
		deal := domain.DealAssumptions{
			AskingPrice:        1000000,
			StampDutyRate:      5,
			LegalCosts:         2000,
			GrossRent:          50000,
			VacancyRate:        5,
			Outgoings:          10000,
			LoanAmount:         800000,
			InterestRate:       6,
			LoanTermYears:      30,
			HoldingPeriodYears: 10,
			DiscountRate:       8,
			CapitalGrowthRate:  3,
		}
		zero := domain.Uncertainties{
			domain.DriverRent:          {Kind: domain.DistributionNormal},
			domain.DriverVacancy:       {Kind: domain.DistributionNormal},
			domain.DriverCapitalGrowth: {Kind: domain.DistributionNormal},
			domain.DriverInterestRate:  {Kind: domain.DistributionNormal},
		}
		input := SimulationInput{
			Assumptions:   deal,
			Uncertainties: zero,
			Iterations:    200,
			Seed:          seedPointer(99),
		}
		svc := newTestSimulationService(4)

		gross, err := svc.Run(ctx, input)
		require.NoError(t, err)
		input.IncludeAcquisitionCost = true
		net, err := svc.Run(ctx, input)
		require.NoError(t, err)

		require.InDelta(t, 252000, gross.EquityRequired, 1e-9)
		require.InDelta(t, 252000, gross.Npv.Median-net.Npv.Median, 1e-6)
		require.Equal(t, gross.Npv.P10, gross.Npv.P90)
		require.Equal(t, net.Npv.P10, net.Npv.P90)

		again, err := newTestSimulationService(1).Run(ctx, input)
		require.NoError(t, err)
		require.Equal(t, "", cmp.Diff(net.Npv, again.Npv))
		require.Equal(t, "", cmp.Diff(net.RepresentativeLedger, again.RepresentativeLedger))
		require.Equal(t, net.Decision, again.Decision)
	})

	t.Run("failed run still closes its spans", func(t *testing.T) {
		profile, _ := domain.NewProfile()
		svc := NewSimulationService(
			l2_service.NewAggregationService(30),
			failingDecisionRule{},
			SimulationServiceConfig{Workers: 2},
		)
		_, err := svc.Run(domain.NewCtxWithProfile(ctx, profile), SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Iterations:    50,
			Seed:          seedPointer(4),
		})
		require.ErrorContains(t, err, "rule unavailable")

		require.NotNil(t, profile.TotalMs)
		require.Len(t, profile.Spans, 2)
		for _, span := range profile.Spans {
			require.NotNil(t, span.Elapsed, span.Name)
		}
	})

	t.Run("cap rate uses deterministic year one noi", func(t *testing.T) {
		result, err := newTestSimulationService(2).Run(ctx, SimulationInput{
			Assumptions:   exampleDeal(),
			Uncertainties: exampleUncertainties(),
			Iterations:    10,
			Seed:          seedPointer(5),
		})
		require.NoError(t, err)
		// 52000 - 4% vacancy - 7% management - 8000 outgoings
		require.InDelta(t, 38280.0/1000000, result.CapRate, 1e-12)
	})
}
