package repository

import (
	"propertysim/internal/domain"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSnapshotModelRoundTrip(t *testing.T) {
	dealID := uuid.New()
	result := domain.SimulationResult{
		ID:             uuid.New(),
		DealID:         &dealID,
		Iterations:     5000,
		Seed:           18446744073709551615,
		RunAt:          time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Mode:           domain.NpvModeNet,
		Npv:            domain.Distribution{P10: -1000.123, Median: 5000.456, P90: 9000.789},
		Irr:            &domain.Distribution{Median: 0.0712},
		EquityRequired: 252000,
		CapRate:        0.0383,
		Decision:       domain.DecisionBuy,
		RepresentativeLedger: []domain.YearLedger{
			{Year: 1, GrossRent: 52000, NetCashFlow: -12000.5},
		},
		Warnings: []string{},
	}
	requestedBy := "user-1"

	m, err := snapshotModelFromResult(result, &requestedBy)
	require.NoError(t, err)
	require.Equal(t, "18446744073709551615", m.Seed)
	require.Equal(t, 5000.46, m.MedianNpv)
	require.Equal(t, -1000.12, m.P10Npv)
	require.NotNil(t, m.MedianIrr)
	require.Equal(t, 0.0712, *m.MedianIrr)
	require.Equal(t, "net", m.Mode)
	require.Equal(t, &dealID, m.DealID)

	back, err := resultFromSnapshotModel(m)
	require.NoError(t, err)
	require.Equal(t, "", cmp.Diff(result, *back))
}

func TestSnapshotQueries(t *testing.T) {
	t.Run("get filters by id", func(t *testing.T) {
		id := uuid.New()
		sql := getSnapshotQuery(id).DebugSql()
		require.Contains(t, sql, "simulation_snapshot.simulation_snapshot_id =")
		require.Contains(t, sql, id.String())
	})

	t.Run("list is newest first and limited", func(t *testing.T) {
		dealID := uuid.New()
		sql := listSnapshotsByDealQuery(dealID, 0).DebugSql()
		require.Contains(t, sql, "simulation_snapshot.deal_id =")
		require.Contains(t, sql, dealID.String())
		require.Contains(t, sql, "simulation_snapshot.created_at DESC")
		require.Contains(t, sql, "LIMIT 50")
	})
}
