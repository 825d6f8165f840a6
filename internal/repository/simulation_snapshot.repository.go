package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"propertysim/internal/db/models/postgres/public/model"
	"propertysim/internal/db/models/postgres/public/table"
	"propertysim/internal/domain"
	"strconv"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrSnapshotNotFound = errors.New("simulation snapshot not found")

const defaultSnapshotListLimit = 50

// SimulationSnapshotRepository is append-only: a snapshot is never
// updated or deleted once written.
type SimulationSnapshotRepository interface {
	Add(tx *sql.Tx, result domain.SimulationResult, requestedBy *string) (*model.SimulationSnapshot, error)
	Get(id uuid.UUID) (*domain.SimulationResult, error)
	ListByDeal(dealID uuid.UUID, limit int) ([]domain.SimulationResult, error)
}

type simulationSnapshotRepositoryHandler struct {
	Db *sql.DB
}

func NewSimulationSnapshotRepository(db *sql.DB) SimulationSnapshotRepository {
	return simulationSnapshotRepositoryHandler{Db: db}
}

func (h simulationSnapshotRepositoryHandler) Add(tx *sql.Tx, result domain.SimulationResult, requestedBy *string) (*model.SimulationSnapshot, error) {
	m, err := snapshotModelFromResult(result, requestedBy)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = time.Now().UTC()

	query := table.SimulationSnapshot.
		INSERT(table.SimulationSnapshot.AllColumns).
		MODEL(m).
		RETURNING(table.SimulationSnapshot.AllColumns)

	var db qrm.Queryable = h.Db
	if tx != nil {
		db = tx
	}

	out := model.SimulationSnapshot{}
	err = query.Query(db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to insert simulation snapshot: %w", err)
	}

	return &out, nil
}

func (h simulationSnapshotRepositoryHandler) Get(id uuid.UUID) (*domain.SimulationResult, error) {
	query := getSnapshotQuery(id)

	m := model.SimulationSnapshot{}
	err := query.Query(h.Db, &m)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get simulation snapshot %s: %w", id.String(), err)
	}

	return resultFromSnapshotModel(m)
}

func (h simulationSnapshotRepositoryHandler) ListByDeal(dealID uuid.UUID, limit int) ([]domain.SimulationResult, error) {
	query := listSnapshotsByDealQuery(dealID, limit)

	models := []model.SimulationSnapshot{}
	err := query.Query(h.Db, &models)
	if err != nil && !errors.Is(err, qrm.ErrNoRows) {
		return nil, fmt.Errorf("failed to list simulation snapshots for deal %s: %w", dealID.String(), err)
	}

	out := make([]domain.SimulationResult, 0, len(models))
	for _, m := range models {
		r, err := resultFromSnapshotModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}

	return out, nil
}

func getSnapshotQuery(id uuid.UUID) postgres.SelectStatement {
	return table.SimulationSnapshot.
		SELECT(table.SimulationSnapshot.AllColumns).
		WHERE(table.SimulationSnapshot.SimulationSnapshotID.EQ(postgres.UUID(id)))
}

func listSnapshotsByDealQuery(dealID uuid.UUID, limit int) postgres.SelectStatement {
	if limit < 1 {
		limit = defaultSnapshotListLimit
	}
	return table.SimulationSnapshot.
		SELECT(table.SimulationSnapshot.AllColumns).
		WHERE(table.SimulationSnapshot.DealID.EQ(postgres.UUID(dealID))).
		ORDER_BY(table.SimulationSnapshot.CreatedAt.DESC()).
		LIMIT(int64(limit))
}

// summary columns are rounded to cents for querying; the full-precision
// result lives in the JSON column
func roundMoney(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func snapshotModelFromResult(result domain.SimulationResult, requestedBy *string) (model.SimulationSnapshot, error) {
	bytes, err := json.Marshal(result)
	if err != nil {
		return model.SimulationSnapshot{}, fmt.Errorf("failed to marshal simulation result: %w", err)
	}

	m := model.SimulationSnapshot{
		SimulationSnapshotID:   result.ID,
		DealID:                 result.DealID,
		RequestedBy:            requestedBy,
		Iterations:             int32(result.Iterations),
		Seed:                   strconv.FormatUint(result.Seed, 10),
		Mode:                   string(result.Mode),
		IncludeAcquisitionCost: result.IncludeAcquisitionCost,
		MedianNpv:              roundMoney(result.Npv.Median),
		P10Npv:                 roundMoney(result.Npv.P10),
		P90Npv:                 roundMoney(result.Npv.P90),
		EquityRequired:         roundMoney(result.EquityRequired),
		CapRate:                result.CapRate,
		Decision:               string(result.Decision),
		Result:                 string(bytes),
		RunAt:                  result.RunAt,
	}
	if result.Irr != nil {
		irr := result.Irr.Median
		m.MedianIrr = &irr
	}

	return m, nil
}

func resultFromSnapshotModel(m model.SimulationSnapshot) (*domain.SimulationResult, error) {
	out := domain.SimulationResult{}
	if err := json.Unmarshal([]byte(m.Result), &out); err != nil {
		return nil, fmt.Errorf("failed to decode simulation snapshot %s: %w", m.SimulationSnapshotID.String(), err)
	}
	out.ID = m.SimulationSnapshotID
	return &out, nil
}
