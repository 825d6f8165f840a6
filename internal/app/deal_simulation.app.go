package app

import (
	"context"
	"errors"
	"fmt"
	"propertysim/internal/domain"
	"propertysim/internal/logger"
	"propertysim/internal/metrics"
	"propertysim/internal/repository"
	l3_service "propertysim/internal/service/l3"

	"github.com/google/uuid"
)

type SimulateInput struct {
	DealID      *uuid.UUID
	Request     domain.SimulationRequest
	RequestedBy *string
}

// DealSimulationApp is the caller side of the engine: it runs a
// simulation, stores the result as an immutable snapshot and announces
// it. The engine itself never persists anything.
type DealSimulationApp interface {
	Simulate(ctx context.Context, input SimulateInput) (*domain.SimulationResult, error)
	GetSnapshot(ctx context.Context, simulationID uuid.UUID) (*domain.SimulationResult, error)
	ListSnapshots(ctx context.Context, dealID uuid.UUID, limit int) ([]domain.SimulationResult, error)
}

type dealSimulationAppHandler struct {
	SimulationService            l3_service.SimulationService
	SimulationSnapshotRepository repository.SimulationSnapshotRepository
	SimulationEventRepository    repository.SimulationEventRepository
	Metrics                      metrics.Recorder
	DefaultIterations            int
}

func NewDealSimulationApp(
	simulationService l3_service.SimulationService,
	simulationSnapshotRepository repository.SimulationSnapshotRepository,
	simulationEventRepository repository.SimulationEventRepository,
	recorder metrics.Recorder,
	defaultIterations int,
) DealSimulationApp {
	if recorder == nil {
		recorder = metrics.NewNoopRecorder()
	}
	return dealSimulationAppHandler{
		SimulationService:            simulationService,
		SimulationSnapshotRepository: simulationSnapshotRepository,
		SimulationEventRepository:    simulationEventRepository,
		Metrics:                      recorder,
		DefaultIterations:            defaultIterations,
	}
}

// BuildSimulationInput validates a caller's request and turns it into
// engine input. Iterations fall back to defaultIterations when omitted.
func BuildSimulationInput(req domain.SimulationRequest, dealID *uuid.UUID, defaultIterations int) (*l3_service.SimulationInput, error) {
	assumptions, assumptionsErr := req.Assumptions.ToDomain()
	uncertainties, uncertaintyErr := req.ToUncertainties()
	if err := errors.Join(assumptionsErr, uncertaintyErr); err != nil {
		return nil, err
	}

	iterations := defaultIterations
	if req.Iterations != nil {
		iterations = *req.Iterations
	}
	includeAcquisitionCost := false
	if req.IncludeAcquisitionCost != nil {
		includeAcquisitionCost = *req.IncludeAcquisitionCost
	}

	return &l3_service.SimulationInput{
		DealID:                 dealID,
		Assumptions:            *assumptions,
		Uncertainties:          uncertainties,
		Correlation:            req.Correlation,
		Iterations:             iterations,
		Seed:                   req.Seed,
		IncludeAcquisitionCost: includeAcquisitionCost,
	}, nil
}

func (h dealSimulationAppHandler) Simulate(ctx context.Context, input SimulateInput) (*domain.SimulationResult, error) {
	log := logger.FromContext(ctx)
	profile, endProfile := domain.GetProfile(ctx)
	defer endProfile()

	simInput, err := BuildSimulationInput(input.Request, input.DealID, h.DefaultIterations)
	if err != nil {
		h.Metrics.RecordFailure("validation")
		return nil, err
	}

	span, endSpan := profile.StartNewSpan("run simulation")
	result, err := h.SimulationService.Run(domain.NewCtxWithSubProfile(ctx, span), *simInput)
	endSpan()
	if err != nil {
		h.Metrics.RecordFailure(failureReason(err))
		return nil, err
	}

	_, endSpan = profile.StartNewSpan("persist snapshot")
	_, err = h.SimulationSnapshotRepository.Add(nil, *result, input.RequestedBy)
	endSpan()
	if err != nil {
		h.Metrics.RecordFailure("persist")
		return nil, fmt.Errorf("failed to persist simulation %s: %w", result.ID.String(), err)
	}

	h.Metrics.RecordSimulation(result)

	// the snapshot is the record of truth; a lost event is logged, not fatal
	_, endSpan = profile.StartNewSpan("publish event")
	if err := h.SimulationEventRepository.PublishCompleted(ctx, *result); err != nil {
		log.Warnw("failed to publish simulation event", "simulationID", result.ID, "error", err.Error())
	}
	endSpan()

	return result, nil
}

func (h dealSimulationAppHandler) GetSnapshot(ctx context.Context, simulationID uuid.UUID) (*domain.SimulationResult, error) {
	return h.SimulationSnapshotRepository.Get(simulationID)
}

func (h dealSimulationAppHandler) ListSnapshots(ctx context.Context, dealID uuid.UUID, limit int) ([]domain.SimulationResult, error) {
	return h.SimulationSnapshotRepository.ListByDeal(dealID, limit)
}

func failureReason(err error) string {
	switch {
	case domain.IsValidationError(err):
		return "validation"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "internal"
}
