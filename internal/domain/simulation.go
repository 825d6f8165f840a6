package domain

import (
	"time"

	"github.com/google/uuid"
)

type NpvMode string

const (
	// NpvModeGross values the income and terminal stream on its own
	NpvModeGross NpvMode = "gross"
	// NpvModeNet subtracts the year-0 equity outflow
	NpvModeNet NpvMode = "net"
)

func NpvModeFromFlag(includeAcquisitionCost bool) NpvMode {
	if includeAcquisitionCost {
		return NpvModeNet
	}
	return NpvModeGross
}

type YearLedger struct {
	Year               int     `json:"year" csv:"year"`
	GrossRent          float64 `json:"grossRent" csv:"gross_rent"`
	VacancyLoss        float64 `json:"vacancyLoss" csv:"vacancy_loss"`
	Outgoings          float64 `json:"outgoings" csv:"outgoings"`
	ManagementFee      float64 `json:"managementFee" csv:"management_fee"`
	NetOperatingIncome float64 `json:"netOperatingIncome" csv:"net_operating_income"`
	DebtService        float64 `json:"debtService" csv:"debt_service"`
	NetCashFlow        float64 `json:"netCashFlow" csv:"net_cash_flow"`
	TerminalValue      float64 `json:"terminalValue" csv:"terminal_value"`
}

// SampledDrivers holds the multiplicative deviates drawn for one trial.
// A value of 1 leaves the driver at its deterministic path.
type SampledDrivers struct {
	Rent          float64
	Vacancy       float64
	CapitalGrowth float64
	InterestRate  float64
}

func NeutralDrivers() SampledDrivers {
	return SampledDrivers{
		Rent:          1,
		Vacancy:       1,
		CapitalGrowth: 1,
		InterestRate:  1,
	}
}

type TrialOutcome struct {
	Trial    int
	GrossNpv float64
	NetNpv   float64
	// Npv is GrossNpv or NetNpv depending on the run's mode
	Npv    float64
	Irr    *float64
	Ledger []YearLedger
}

type Distribution struct {
	P10    float64 `json:"p10"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type HistogramBucket struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type ProbabilityPoint struct {
	Value                 float64 `json:"value"`
	CumulativeProbability float64 `json:"cumulativeProbability"`
}

type Decision string

const (
	DecisionBuy    Decision = "Buy"
	DecisionReview Decision = "Hold/Review"
	DecisionPass   Decision = "Pass"
)

// SimulationResult is an immutable snapshot of one run. Re-running a
// deal produces a new result rather than updating an old one.
type SimulationResult struct {
	ID                     uuid.UUID  `json:"id"`
	DealID                 *uuid.UUID `json:"dealID,omitempty"`
	Iterations             int        `json:"iterations"`
	Seed                   uint64     `json:"seed"`
	RunAt                  time.Time  `json:"runAt"`
	Mode                   NpvMode    `json:"mode"`
	IncludeAcquisitionCost bool       `json:"includeAcquisitionCost"`

	Npv               Distribution  `json:"npv"`
	Irr               *Distribution `json:"irr"`
	UndefinedIrrCount int           `json:"undefinedIrrCount"`

	EquityRequired    float64  `json:"equityRequired"`
	CapRate           float64  `json:"capRate"`
	ProbabilityOfLoss float64  `json:"probabilityOfLoss"`
	Decision          Decision `json:"decision"`

	NpvHistogram         []HistogramBucket  `json:"npvHistogram"`
	IrrHistogram         []HistogramBucket  `json:"irrHistogram"`
	NpvProbabilityCurve  []ProbabilityPoint `json:"npvProbabilityCurve"`
	RepresentativeLedger []YearLedger       `json:"representativeLedger"`

	Warnings            []string `json:"warnings"`
	CorrelationFallback bool     `json:"correlationFallback"`
	DurationMs          int64    `json:"durationMs"`
}
