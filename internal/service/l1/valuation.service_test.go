package l1_service

import (
	"propertysim/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresentValue(t *testing.T) {
	t.Run("single flow", func(t *testing.T) {
		require.InDelta(t, 100, PresentValue([]float64{110}, 0.1), 1e-9)
	})

	t.Run("zero rate sums flows", func(t *testing.T) {
		require.InDelta(t, 60, PresentValue([]float64{10, 20, 30}, 0), 1e-9)
	})

	t.Run("discounting compounds per year", func(t *testing.T) {
		require.InDelta(t, 100+100, PresentValue([]float64{110, 121}, 0.1), 1e-9)
	})
}

func TestIrr(t *testing.T) {
	t.Run("single period", func(t *testing.T) {
		irr := Irr(100, []float64{110})
		require.NotNil(t, irr)
		require.InDelta(t, 0.1, *irr, 1e-6)
	})

	t.Run("bond-like flows", func(t *testing.T) {
		irr := Irr(100, []float64{10, 110})
		require.NotNil(t, irr)
		require.InDelta(t, 0.1, *irr, 1e-6)
	})

	t.Run("loss making deal has a negative irr", func(t *testing.T) {
		irr := Irr(100, []float64{0, 81})
		require.NotNil(t, irr)
		require.InDelta(t, -0.1, *irr, 1e-6)
	})

	t.Run("no sign change is undefined", func(t *testing.T) {
		require.Nil(t, Irr(0, []float64{10, 10}))
		require.Nil(t, Irr(-50, []float64{10}))
	})

	t.Run("returns beyond the bracket are undefined", func(t *testing.T) {
		require.Nil(t, Irr(1, []float64{1000}))
	})
}

func TestReduceLedger(t *testing.T) {
	ledger := []domain.YearLedger{
		{Year: 1, NetCashFlow: 10},
		{Year: 2, NetCashFlow: 110},
	}

	t.Run("net is gross less equity", func(t *testing.T) {
		v := ReduceLedger(ledger, 10, 100)
		require.InDelta(t, 100, v.GrossNpv, 1e-9)
		require.InDelta(t, 0, v.NetNpv, 1e-9)
		require.InDelta(t, v.GrossNpv-v.NetNpv, 100, 1e-9)
		require.NotNil(t, v.Irr)
		require.InDelta(t, 0.1, *v.Irr, 1e-6)
	})

	t.Run("mode selects the reported npv", func(t *testing.T) {
		v := ReduceLedger(ledger, 5, 40)
		require.Equal(t, v.GrossNpv, v.Npv(domain.NpvModeGross))
		require.Equal(t, v.NetNpv, v.Npv(domain.NpvModeNet))
	})
}
