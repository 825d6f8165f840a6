package l3_service

import (
	"context"
	"fmt"
	"propertysim/internal/domain"
	"propertysim/internal/logger"
	l1_service "propertysim/internal/service/l1"
	l2_service "propertysim/internal/service/l2"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultIterations    = 10000
	DefaultMaxIterations = 200000
)

type SimulationInput struct {
	DealID                 *uuid.UUID
	Assumptions            domain.DealAssumptions
	Uncertainties          domain.Uncertainties
	Correlation            domain.CorrelationMatrix
	Iterations             int
	Seed                   *uint64
	IncludeAcquisitionCost bool
}

type SimulationService interface {
	Run(ctx context.Context, input SimulationInput) (*domain.SimulationResult, error)
}

type SimulationServiceConfig struct {
	MaxIterations int
	// number of goroutines running trials, defaults to GOMAXPROCS
	Workers int
}

type simulationServiceHandler struct {
	AggregationService l2_service.AggregationService
	DecisionRule       l2_service.DecisionRule
	MaxIterations      int
	Workers            int
}

func NewSimulationService(
	aggregationService l2_service.AggregationService,
	decisionRule l2_service.DecisionRule,
	cfg SimulationServiceConfig,
) SimulationService {
	if cfg.MaxIterations < 1 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return simulationServiceHandler{
		AggregationService: aggregationService,
		DecisionRule:       decisionRule,
		MaxIterations:      cfg.MaxIterations,
		Workers:            cfg.Workers,
	}
}

func (h simulationServiceHandler) validate(input SimulationInput) error {
	if input.Iterations < 1 || input.Iterations > h.MaxIterations {
		return domain.ValidationError{
			Field:   "iterations",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", h.MaxIterations, input.Iterations),
		}
	}
	if err := input.Assumptions.Validate(); err != nil {
		return err
	}
	if err := input.Uncertainties.Validate(); err != nil {
		return err
	}
	return nil
}

// Run executes every trial and reduces them to a result. A cancelled
// context discards all trials; nothing is aggregated.
func (h simulationServiceHandler) Run(ctx context.Context, input SimulationInput) (*domain.SimulationResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx)
	profile, endProfile := domain.GetProfile(ctx)
	defer endProfile()

	if err := h.validate(input); err != nil {
		return nil, err
	}

	seed := uint64(start.UnixNano())
	if input.Seed != nil {
		seed = *input.Seed
	}
	mode := domain.NpvModeFromFlag(input.IncludeAcquisitionCost)
	assumptions := input.Assumptions
	equity := assumptions.EquityRequired()

	sampler := l1_service.NewDriverSampler(input.Uncertainties, input.Correlation, log)

	_, endSpan := profile.StartNewSpan("run trials")
	population, err := h.runTrials(ctx, sampler, assumptions, seed, input.Iterations)
	endSpan()
	if err != nil {
		log.Infow("simulation cancelled", "iterations", input.Iterations, "error", err.Error())
		return nil, err
	}

	_, endSpan = profile.StartNewSpan("aggregate trials")
	defer endSpan()
	agg, err := h.AggregationService.Aggregate(population, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate trials: %w", err)
	}
	decision, err := h.DecisionRule.Decide(l2_service.NewDecisionInput(agg, equity))
	if err != nil {
		return nil, fmt.Errorf("failed to decide: %w", err)
	}
	endSpan()

	// re-project the median trial from its own stream rather than
	// keeping every trial's ledger in memory
	representative := l1_service.ProjectCashFlows(
		assumptions,
		sampler.Sample(l1_service.NewTrialRand(seed, agg.MedianTrial)),
	)

	warnings := []string{}
	warnings = append(warnings, sampler.Warnings()...)
	if agg.UndefinedIrrCount > 0 {
		warnings = append(warnings, fmt.Sprintf("IRR undefined for %d of %d trials", agg.UndefinedIrrCount, population.Len()))
	}

	result := &domain.SimulationResult{
		ID:                     uuid.New(),
		DealID:                 input.DealID,
		Iterations:             input.Iterations,
		Seed:                   seed,
		RunAt:                  start.UTC(),
		Mode:                   mode,
		IncludeAcquisitionCost: input.IncludeAcquisitionCost,
		Npv:                    agg.Npv,
		Irr:                    agg.Irr,
		UndefinedIrrCount:      agg.UndefinedIrrCount,
		EquityRequired:         equity,
		CapRate:                l2_service.CapRate(l1_service.DeterministicYearOneNoi(assumptions), assumptions.AskingPrice),
		ProbabilityOfLoss:      agg.ProbabilityOfLoss,
		Decision:               decision,
		NpvHistogram:           agg.NpvHistogram,
		IrrHistogram:           agg.IrrHistogram,
		NpvProbabilityCurve:    agg.NpvProbabilityCurve,
		RepresentativeLedger:   representative,
		Warnings:               warnings,
		CorrelationFallback:    sampler.FellBack(),
		DurationMs:             time.Since(start).Milliseconds(),
	}

	log.Infow(
		"simulation complete",
		"simulationID", result.ID,
		"iterations", result.Iterations,
		"mode", result.Mode,
		"medianNpv", result.Npv.Median,
		"decision", result.Decision,
		"durationMs", result.DurationMs,
	)

	return result, nil
}

type trialResult struct {
	Trial     int
	Valuation l1_service.Valuation
}

// runTrials fans trials out over a fixed pool. Each trial draws from its
// own stream, so the population does not depend on scheduling.
func (h simulationServiceHandler) runTrials(
	ctx context.Context,
	sampler *l1_service.DriverSampler,
	assumptions domain.DealAssumptions,
	seed uint64,
	iterations int,
) (*l2_service.TrialPopulation, error) {
	equity := assumptions.EquityRequired()

	inputCh := make(chan int, iterations)
	resultCh := make(chan trialResult, iterations)
	for trial := 0; trial < iterations; trial++ {
		inputCh <- trial
	}
	close(inputCh)

	numGoroutines := h.Workers
	if numGoroutines > iterations {
		numGoroutines = iterations
	}

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case trial, ok := <-inputCh:
					if !ok {
						return
					}
					drivers := sampler.Sample(l1_service.NewTrialRand(seed, trial))
					ledger := l1_service.ProjectCashFlows(assumptions, drivers)
					resultCh <- trialResult{
						Trial:     trial,
						Valuation: l1_service.ReduceLedger(ledger, assumptions.DiscountRate, equity),
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	population := l2_service.NewTrialPopulation(iterations)
	received := 0
	for res := range resultCh {
		population.Trials[res.Trial] = res.Trial
		population.GrossNpv[res.Trial] = res.Valuation.GrossNpv
		population.NetNpv[res.Trial] = res.Valuation.NetNpv
		population.Irr[res.Trial] = res.Valuation.Irr
		received++
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if received != iterations {
		return nil, fmt.Errorf("expected %d trials, got %d", iterations, received)
	}

	return population, nil
}
