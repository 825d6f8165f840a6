package l1_service

import (
	"math"
	"propertysim/internal/domain"
)

const (
	irrLowerBound = -0.99
	irrUpperBound = 10.0
	irrTolerance  = 1e-7
	irrMaxSteps   = 200
)

// Valuation is the reduction of one trial's ledger.
type Valuation struct {
	GrossNpv float64
	NetNpv   float64
	Irr      *float64
}

// Npv returns the value for the requested mode.
func (v Valuation) Npv(mode domain.NpvMode) float64 {
	if mode == domain.NpvModeNet {
		return v.NetNpv
	}
	return v.GrossNpv
}

// ReduceLedger discounts a trial's cash flows. Both modes are always
// computed; the run's mode only decides which one is reported as Npv.
func ReduceLedger(ledger []domain.YearLedger, discountRatePct float64, equity float64) Valuation {
	flows := make([]float64, len(ledger))
	for i, l := range ledger {
		flows[i] = l.NetCashFlow
	}

	gross := PresentValue(flows, discountRatePct/100)
	return Valuation{
		GrossNpv: gross,
		NetNpv:   gross - equity,
		Irr:      Irr(equity, flows),
	}
}

// PresentValue discounts flows[i] as arriving at the end of year i+1.
func PresentValue(flows []float64, rate float64) float64 {
	total := 0.0
	factor := 1.0
	for _, cf := range flows {
		factor /= 1 + rate
		total += cf * factor
	}
	return finiteOr(total, 0)
}

// Irr solves for the rate that zeroes [-equity, flows...]. It returns nil
// when the bracket holds no sign change, e.g. every flow is positive.
func Irr(equity float64, flows []float64) *float64 {
	f := func(rate float64) float64 {
		return PresentValue(flows, rate) - equity
	}

	lo, hi := irrLowerBound, irrUpperBound
	fLo, fHi := f(lo), f(hi)
	if math.IsNaN(fLo) || math.IsNaN(fHi) {
		return nil
	}
	if fLo == 0 {
		return &lo
	}
	if fHi == 0 {
		return &hi
	}
	if (fLo > 0) == (fHi > 0) {
		return nil
	}

	mid := lo
	for i := 0; i < irrMaxSteps; i++ {
		mid = (lo + hi) / 2
		fMid := f(mid)
		if fMid == 0 || (hi-lo)/2 < irrTolerance {
			break
		}
		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}

	return &mid
}
