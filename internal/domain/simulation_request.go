package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// SimulationRequest is the JSON shape accepted from callers. Money is
// decoded as decimal so that "1000000.10" and 1000000.10 both parse
// without float surprises; the engine itself runs on float64.
type SimulationRequest struct {
	Assumptions            AssumptionsRequest                  `json:"assumptions"`
	Uncertainty            map[string]DriverUncertaintyRequest `json:"uncertainty"`
	Correlation            CorrelationMatrix                   `json:"correlation"`
	Iterations             *int                                `json:"iterations"`
	Seed                   *uint64                             `json:"seed"`
	IncludeAcquisitionCost *bool                               `json:"includeAcquisitionCost"`
}

type AssumptionsRequest struct {
	AskingPrice    *decimal.Decimal `json:"askingPrice"`
	EstimatedValue *decimal.Decimal `json:"estimatedValue"`
	StampDutyRate  *float64         `json:"stampDutyRate"`
	LegalCosts     *decimal.Decimal `json:"legalCosts"`
	CapexReserve   *decimal.Decimal `json:"capexReserve"`

	GrossRent         *decimal.Decimal `json:"grossRent"`
	VacancyRate       *float64         `json:"vacancyRate"`
	ManagementFeeRate *float64         `json:"managementFeeRate"`
	Outgoings         *decimal.Decimal `json:"outgoings"`

	LoanAmount    *decimal.Decimal `json:"loanAmount"`
	InterestRate  *float64         `json:"interestRate"`
	LoanTermYears *int             `json:"loanTermYears"`
	InterestOnly  bool             `json:"interestOnly"`

	HoldingPeriodYears *int     `json:"holdingPeriodYears"`
	DiscountRate       *float64 `json:"discountRate"`
	CapitalGrowthRate  *float64 `json:"capitalGrowthRate"`
	DisposalCostRate   *float64 `json:"disposalCostRate"`

	RentGrowthRate          *float64 `json:"rentGrowthRate"`
	VacancyGrowthRate       *float64 `json:"vacancyGrowthRate"`
	ManagementFeeGrowthRate *float64 `json:"managementFeeGrowthRate"`
	OutgoingsGrowthRate     *float64 `json:"outgoingsGrowthRate"`
}

type DriverUncertaintyRequest struct {
	Kind        string   `json:"kind"`
	VariancePct *float64 `json:"variancePct"`
	Name        string   `json:"name"`
}

// DecodeSimulationRequest parses a request body, rejecting unknown keys
// instead of silently ignoring a typo like "vacancyRte".
func DecodeSimulationRequest(r io.Reader) (*SimulationRequest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	out := SimulationRequest{}
	if err := dec.Decode(&out); err != nil {
		return nil, ValidationError{Message: fmt.Sprintf("invalid simulation request: %s", err.Error())}
	}
	if dec.More() {
		return nil, ValidationError{Message: "invalid simulation request: trailing data after JSON object"}
	}

	return &out, nil
}

func (r AssumptionsRequest) ToDomain() (*DealAssumptions, error) {
	errs := []error{}
	missing := func(field string) {
		errs = append(errs, ValidationError{Field: "assumptions." + field, Message: "is required"})
	}
	requiredMoney := func(field string, v *decimal.Decimal) float64 {
		if v == nil {
			missing(field)
			return 0
		}
		return v.InexactFloat64()
	}
	requiredFloat := func(field string, v *float64) float64 {
		if v == nil {
			missing(field)
			return 0
		}
		return *v
	}
	requiredInt := func(field string, v *int) int {
		if v == nil {
			missing(field)
			return 0
		}
		return *v
	}
	optionalMoney := func(v *decimal.Decimal) float64 {
		if v == nil {
			return 0
		}
		return v.InexactFloat64()
	}
	optionalFloat := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}

	out := DealAssumptions{
		AskingPrice:    requiredMoney("askingPrice", r.AskingPrice),
		EstimatedValue: optionalMoney(r.EstimatedValue),
		StampDutyRate:  requiredFloat("stampDutyRate", r.StampDutyRate),
		LegalCosts:     requiredMoney("legalCosts", r.LegalCosts),
		CapexReserve:   optionalMoney(r.CapexReserve),

		GrossRent:         requiredMoney("grossRent", r.GrossRent),
		VacancyRate:       requiredFloat("vacancyRate", r.VacancyRate),
		ManagementFeeRate: optionalFloat(r.ManagementFeeRate),
		Outgoings:         requiredMoney("outgoings", r.Outgoings),

		LoanAmount:   requiredMoney("loanAmount", r.LoanAmount),
		InterestRate: requiredFloat("interestRate", r.InterestRate),
		InterestOnly: r.InterestOnly,

		HoldingPeriodYears: requiredInt("holdingPeriodYears", r.HoldingPeriodYears),
		DiscountRate:       requiredFloat("discountRate", r.DiscountRate),
		CapitalGrowthRate:  requiredFloat("capitalGrowthRate", r.CapitalGrowthRate),
		DisposalCostRate:   optionalFloat(r.DisposalCostRate),

		RentGrowthRate:          optionalFloat(r.RentGrowthRate),
		VacancyGrowthRate:       optionalFloat(r.VacancyGrowthRate),
		ManagementFeeGrowthRate: optionalFloat(r.ManagementFeeGrowthRate),
		OutgoingsGrowthRate:     optionalFloat(r.OutgoingsGrowthRate),
	}
	if r.LoanTermYears != nil {
		out.LoanTermYears = *r.LoanTermYears
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}

	return &out, nil
}

// ToUncertainties converts the caller's uncertainty block. An absent
// block means every driver is deterministic.
func (r SimulationRequest) ToUncertainties() (Uncertainties, error) {
	out := Uncertainties{}
	errs := []error{}
	for key, in := range r.Uncertainty {
		driver, err := NewDriverName(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if in.VariancePct == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("uncertainty.%s.variancePct", key),
				Message: "is required",
			})
			continue
		}
		kind, err := NewDistributionKind(in.Kind)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("uncertainty.%s.kind", key),
				Message: err.Error(),
			})
			continue
		}
		out[driver] = DriverUncertainty{
			Kind:        kind,
			VariancePct: *in.VariancePct,
			Name:        in.Name,
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}

	return out, nil
}
