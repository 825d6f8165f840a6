package l1_service

import (
	"math"
	"propertysim/internal/domain"
)

// ProjectCashFlows builds the year-by-year ledger for one trial. The
// sampled deviates are applied uniformly to every year: a trial is one
// coherent scenario, not year-to-year noise.
func ProjectCashFlows(a domain.DealAssumptions, drivers domain.SampledDrivers) []domain.YearLedger {
	rentMultiplier := math.Max(finiteOr(drivers.Rent, 1), 0)

	interestRate := clamp(a.InterestRate/100*finiteOr(drivers.InterestRate, 1), 0, 1)
	debtService := AnnualDebtService(a.LoanAmount, interestRate, a.LoanTermYears, a.InterestOnly)

	out := make([]domain.YearLedger, 0, a.HoldingPeriodYears)
	for y := 1; y <= a.HoldingPeriodYears; y++ {
		rent := grow(a.GrossRent, a.RentGrowthRate, y) * rentMultiplier

		vacancyPct := grow(a.VacancyRate, a.VacancyGrowthRate, y) * finiteOr(drivers.Vacancy, 1)
		vacancyRate := clamp(vacancyPct, 0, 100) / 100

		managementRate := clamp(grow(a.ManagementFeeRate, a.ManagementFeeGrowthRate, y), 0, 100) / 100
		outgoings := grow(a.Outgoings, a.OutgoingsGrowthRate, y)

		vacancyLoss := rent * vacancyRate
		managementFee := rent * managementRate
		noi := rent - vacancyLoss - outgoings - managementFee

		ds := debtService
		if a.LoanAmount > 0 && y > a.LoanTermYears {
			ds = 0
		}
		// interest-only principal falls due as a balloon in the final term year
		if a.InterestOnly && a.LoanAmount > 0 && y == a.LoanTermYears {
			ds += a.LoanAmount
		}

		ledger := domain.YearLedger{
			Year:               y,
			GrossRent:          finiteOr(rent, 0),
			VacancyLoss:        finiteOr(vacancyLoss, 0),
			Outgoings:          finiteOr(outgoings, 0),
			ManagementFee:      finiteOr(managementFee, 0),
			NetOperatingIncome: finiteOr(noi, 0),
			DebtService:        finiteOr(ds, 0),
		}
		ledger.NetCashFlow = ledger.NetOperatingIncome - ledger.DebtService

		if y == a.HoldingPeriodYears {
			ledger.TerminalValue = finiteOr(TerminalProceeds(a, drivers, interestRate), 0)
			ledger.NetCashFlow += ledger.TerminalValue
		}

		out = append(out, ledger)
	}

	return out
}

// TerminalProceeds is the sale price at exit, net of disposal costs and
// the loan balance still owing.
func TerminalProceeds(a domain.DealAssumptions, drivers domain.SampledDrivers, interestRate float64) float64 {
	growth := math.Max(a.CapitalGrowthRate/100*finiteOr(drivers.CapitalGrowth, 1), -1)
	salePrice := a.ExitBaseValue() * math.Pow(1+growth, float64(a.HoldingPeriodYears))
	disposal := salePrice * a.DisposalCostRate / 100
	balance := OutstandingBalance(a.LoanAmount, interestRate, a.LoanTermYears, a.HoldingPeriodYears, a.InterestOnly)

	return salePrice - disposal - balance
}

// AnnualDebtService is the level annual repayment on the loan. rate is
// a fraction (0.06 for 6%).
func AnnualDebtService(loan, rate float64, termYears int, interestOnly bool) float64 {
	if loan <= 0 || termYears < 1 {
		return 0
	}
	if interestOnly {
		return loan * rate
	}
	if rate == 0 {
		return loan / float64(termYears)
	}
	return loan * rate / (1 - math.Pow(1+rate, -float64(termYears)))
}

// OutstandingBalance is what is still owed after yearsPaid annual
// repayments.
func OutstandingBalance(loan, rate float64, termYears, yearsPaid int, interestOnly bool) float64 {
	if loan <= 0 {
		return 0
	}
	// past the term every loan, including the interest-only balloon, is repaid
	if yearsPaid >= termYears {
		return 0
	}
	if interestOnly {
		return loan
	}
	if rate == 0 {
		return loan * float64(termYears-yearsPaid) / float64(termYears)
	}
	payment := AnnualDebtService(loan, rate, termYears, false)
	growth := math.Pow(1+rate, float64(yearsPaid))
	return math.Max(loan*growth-payment*(growth-1)/rate, 0)
}

// DeterministicYearOneNoi runs year 1 with every driver at its
// deterministic value.
func DeterministicYearOneNoi(a domain.DealAssumptions) float64 {
	one := a
	one.HoldingPeriodYears = 1
	ledger := ProjectCashFlows(one, domain.NeutralDrivers())
	return ledger[0].NetOperatingIncome
}

func grow(base, growthPct float64, year int) float64 {
	if growthPct == 0 {
		return base
	}
	return base * math.Pow(1+growthPct/100, float64(year-1))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
