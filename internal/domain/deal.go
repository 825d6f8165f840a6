package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DealAssumptions mirrors the persisted deal record. Rates are in
// percent, so 5 means 5%.
type DealAssumptions struct {
	AskingPrice    float64 `json:"askingPrice"`
	EstimatedValue float64 `json:"estimatedValue"`
	StampDutyRate  float64 `json:"stampDutyRate"`
	LegalCosts     float64 `json:"legalCosts"`
	CapexReserve   float64 `json:"capexReserve"`

	GrossRent         float64 `json:"grossRent"`
	VacancyRate       float64 `json:"vacancyRate"`
	ManagementFeeRate float64 `json:"managementFeeRate"`
	Outgoings         float64 `json:"outgoings"`

	LoanAmount    float64 `json:"loanAmount"`
	InterestRate  float64 `json:"interestRate"`
	LoanTermYears int     `json:"loanTermYears"`
	InterestOnly  bool    `json:"interestOnly"`

	HoldingPeriodYears int     `json:"holdingPeriodYears"`
	DiscountRate       float64 `json:"discountRate"`
	CapitalGrowthRate  float64 `json:"capitalGrowthRate"`
	DisposalCostRate   float64 `json:"disposalCostRate"`

	RentGrowthRate          float64 `json:"rentGrowthRate"`
	VacancyGrowthRate       float64 `json:"vacancyGrowthRate"`
	ManagementFeeGrowthRate float64 `json:"managementFeeGrowthRate"`
	OutgoingsGrowthRate     float64 `json:"outgoingsGrowthRate"`
}

// StampDuty is the duty payable on the asking price.
func (d DealAssumptions) StampDuty() float64 {
	return d.AskingPrice * d.StampDutyRate / 100
}

// EquityRequired is the year-0 cash the buyer has to put in.
func (d DealAssumptions) EquityRequired() float64 {
	return d.AskingPrice + d.StampDuty() + d.LegalCosts + d.CapexReserve - d.LoanAmount
}

// ExitBaseValue is the value that capital growth compounds from when
// computing terminal sale proceeds.
func (d DealAssumptions) ExitBaseValue() float64 {
	if d.EstimatedValue > 0 {
		return d.EstimatedValue
	}
	return d.AskingPrice
}

func (d DealAssumptions) Validate() error {
	errs := []error{}
	add := func(field, msg string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(msg, args...)})
	}

	for field, v := range map[string]float64{
		"askingPrice":             d.AskingPrice,
		"estimatedValue":          d.EstimatedValue,
		"stampDutyRate":           d.StampDutyRate,
		"legalCosts":              d.LegalCosts,
		"capexReserve":            d.CapexReserve,
		"grossRent":               d.GrossRent,
		"vacancyRate":             d.VacancyRate,
		"managementFeeRate":       d.ManagementFeeRate,
		"outgoings":               d.Outgoings,
		"loanAmount":              d.LoanAmount,
		"interestRate":            d.InterestRate,
		"discountRate":            d.DiscountRate,
		"capitalGrowthRate":       d.CapitalGrowthRate,
		"disposalCostRate":        d.DisposalCostRate,
		"rentGrowthRate":          d.RentGrowthRate,
		"vacancyGrowthRate":       d.VacancyGrowthRate,
		"managementFeeGrowthRate": d.ManagementFeeGrowthRate,
		"outgoingsGrowthRate":     d.OutgoingsGrowthRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			add(field, "must be a finite number")
		}
	}

	if d.AskingPrice <= 0 {
		add("askingPrice", "must be positive, got %v", d.AskingPrice)
	}
	if d.EstimatedValue < 0 {
		add("estimatedValue", "cannot be negative")
	}
	if d.StampDutyRate < 0 {
		add("stampDutyRate", "cannot be negative")
	}
	if d.LegalCosts < 0 {
		add("legalCosts", "cannot be negative")
	}
	if d.CapexReserve < 0 {
		add("capexReserve", "cannot be negative")
	}
	if d.GrossRent < 0 {
		add("grossRent", "cannot be negative")
	}
	if d.VacancyRate < 0 || d.VacancyRate > 100 {
		add("vacancyRate", "must be between 0 and 100, got %v", d.VacancyRate)
	}
	if d.ManagementFeeRate < 0 || d.ManagementFeeRate > 100 {
		add("managementFeeRate", "must be between 0 and 100, got %v", d.ManagementFeeRate)
	}
	if d.Outgoings < 0 {
		add("outgoings", "cannot be negative")
	}
	if d.LoanAmount < 0 {
		add("loanAmount", "cannot be negative")
	}
	if d.InterestRate < 0 {
		add("interestRate", "cannot be negative")
	}
	if d.LoanAmount > 0 && d.LoanTermYears < 1 {
		add("loanTermYears", "must be at least 1 when a loan is present, got %d", d.LoanTermYears)
	}
	if d.HoldingPeriodYears < 1 {
		add("holdingPeriodYears", "must be at least 1, got %d", d.HoldingPeriodYears)
	}
	if d.DiscountRate <= -100 {
		add("discountRate", "must be greater than -100")
	}
	if d.DisposalCostRate < 0 || d.DisposalCostRate > 100 {
		add("disposalCostRate", "must be between 0 and 100, got %v", d.DisposalCostRate)
	}

	return errors.Join(errs...)
}

// ValidationError is returned for input that is rejected before a run
// starts. Callers can errors.As on it to tell bad input apart from
// internal failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func IsValidationError(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

type DriverName string

const (
	DriverRent          DriverName = "rent"
	DriverVacancy       DriverName = "vacancy"
	DriverCapitalGrowth DriverName = "capitalGrowth"
	DriverInterestRate  DriverName = "interestRate"
)

// Drivers is the fixed sampling order. Changing it changes which
// random draw feeds which driver, so seeded runs would not reproduce.
var Drivers = []DriverName{
	DriverRent,
	DriverVacancy,
	DriverCapitalGrowth,
	DriverInterestRate,
}

func NewDriverName(s string) (DriverName, error) {
	for _, d := range Drivers {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", ValidationError{Field: "uncertainty", Message: fmt.Sprintf("unknown driver %q", s)}
}

type DistributionKind string

const (
	DistributionNormal     DistributionKind = "normal"
	DistributionLogNormal  DistributionKind = "lognormal"
	DistributionUniform    DistributionKind = "uniform"
	DistributionTriangular DistributionKind = "triangular"
)

func NewDistributionKind(s string) (DistributionKind, error) {
	if s == "" {
		return DistributionNormal, nil
	}
	for _, k := range []DistributionKind{DistributionNormal, DistributionLogNormal, DistributionUniform, DistributionTriangular} {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown distribution kind %q", s)
}

// DriverUncertainty describes how one driver varies between trials.
// VariancePct is a standard deviation relative to the driver's
// deterministic value, so 10 means +/-10%.
type DriverUncertainty struct {
	Kind        DistributionKind `json:"kind"`
	VariancePct float64          `json:"variancePct"`
	Name        string           `json:"name"`
}

// Uncertainties holds one entry per driver. Missing drivers are
// deterministic.
type Uncertainties map[DriverName]DriverUncertainty

func (u Uncertainties) Get(d DriverName) DriverUncertainty {
	out, ok := u[d]
	if !ok {
		out = DriverUncertainty{Kind: DistributionNormal}
	}
	if out.Kind == "" {
		out.Kind = DistributionNormal
	}
	if out.Name == "" {
		out.Name = string(d)
	}
	return out
}

func (u Uncertainties) Validate() error {
	errs := []error{}
	for d, du := range u {
		if _, err := NewDriverName(string(d)); err != nil {
			errs = append(errs, err)
			continue
		}
		if math.IsNaN(du.VariancePct) || du.VariancePct < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("uncertainty.%s.variancePct", d),
				Message: fmt.Sprintf("must be non-negative, got %v", du.VariancePct),
			})
		}
		if _, err := NewDistributionKind(string(du.Kind)); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("uncertainty.%s.kind", d),
				Message: err.Error(),
			})
		}
	}

	// correlations are keyed by display name, so names must be unique
	seen := map[string]DriverName{}
	for _, d := range Drivers {
		name := u.Get(d).Name
		if first, ok := seen[name]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("uncertainty.%s.name", d),
				Message: fmt.Sprintf("%q is already used by %s", name, first),
			})
			continue
		}
		seen[name] = d
	}
	return errors.Join(errs...)
}

// CorrelationMatrix maps pairs of driver display names to a coefficient.
// Pairs that are not listed are uncorrelated.
type CorrelationMatrix map[string]map[string]float64

// Lookup returns the coefficient for (a, b) and whether it was listed
// in either orientation.
func (c CorrelationMatrix) Lookup(a, b string) (float64, bool) {
	if row, ok := c[a]; ok {
		if v, ok := row[b]; ok {
			return v, true
		}
	}
	if row, ok := c[b]; ok {
		if v, ok := row[a]; ok {
			return v, true
		}
	}
	if a == b {
		return 1, false
	}
	return 0, false
}
