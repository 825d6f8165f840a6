package l2_service

import (
	"fmt"
	"math"
	"propertysim/internal/domain"

	"github.com/maja42/goval"
)

// DecisionInput is always built from the net-mode population, whatever
// mode the run reports in.
type DecisionInput struct {
	MedianNpv         float64
	P10Npv            float64
	P90Npv            float64
	EquityRequired    float64
	MedianIrr         *float64
	ProbabilityOfLoss float64
}

func NewDecisionInput(agg *AggregateResult, equityRequired float64) DecisionInput {
	in := DecisionInput{
		MedianNpv:         agg.NetNpv.Median,
		P10Npv:            agg.NetNpv.P10,
		P90Npv:            agg.NetNpv.P90,
		EquityRequired:    equityRequired,
		ProbabilityOfLoss: agg.ProbabilityOfLoss,
	}
	if agg.Irr != nil {
		irr := agg.Irr.Median
		in.MedianIrr = &irr
	}
	return in
}

type DecisionRule interface {
	Decide(in DecisionInput) (domain.Decision, error)
}

type DecisionThresholds struct {
	// median net NPV must exceed this to be a Buy
	BuyMinMedianNpv float64
	// P10 net NPV below -ratio*equity is a catastrophic downside
	CatastrophicLossRatio float64
	// a median within +/- ratio*equity of zero straddles breakeven
	ReviewBandRatio float64
}

func DefaultDecisionThresholds() DecisionThresholds {
	return DecisionThresholds{
		BuyMinMedianNpv:       0,
		CatastrophicLossRatio: 0.5,
		ReviewBandRatio:       0.05,
	}
}

type thresholdDecisionRule struct {
	Thresholds DecisionThresholds
}

func NewThresholdDecisionRule(thresholds DecisionThresholds) DecisionRule {
	return thresholdDecisionRule{
		Thresholds: thresholds,
	}
}

func (r thresholdDecisionRule) Decide(in DecisionInput) (domain.Decision, error) {
	if math.IsNaN(in.MedianNpv) || math.IsNaN(in.P10Npv) {
		return "", fmt.Errorf("cannot decide on NaN npv")
	}
	equity := math.Abs(in.EquityRequired)

	if math.Abs(in.MedianNpv) <= r.Thresholds.ReviewBandRatio*equity {
		return domain.DecisionReview, nil
	}
	if in.MedianNpv > r.Thresholds.BuyMinMedianNpv {
		if in.P10Npv >= -r.Thresholds.CatastrophicLossRatio*equity {
			return domain.DecisionBuy, nil
		}
		return domain.DecisionReview, nil
	}
	// positive but below the buy bar
	if in.MedianNpv > 0 {
		return domain.DecisionReview, nil
	}

	return domain.DecisionPass, nil
}

// expressionDecisionRule lets the buy and review conditions be written
// as boolean expressions, e.g. "medianNpv > 0 && p10Npv > -0.25 * equityRequired".
type expressionDecisionRule struct {
	BuyExpression    string
	ReviewExpression string
}

// NewExpressionDecisionRule checks both expressions against a sample
// input so that typos fail at startup rather than mid-request.
func NewExpressionDecisionRule(buyExpression, reviewExpression string) (DecisionRule, error) {
	if buyExpression == "" {
		return nil, fmt.Errorf("buy expression is required")
	}
	r := expressionDecisionRule{
		BuyExpression:    buyExpression,
		ReviewExpression: reviewExpression,
	}
	if _, err := r.Decide(DecisionInput{EquityRequired: 1}); err != nil {
		return nil, fmt.Errorf("invalid decision expression: %w", err)
	}
	return r, nil
}

func (r expressionDecisionRule) Decide(in DecisionInput) (domain.Decision, error) {
	variables := decisionVariables(in)

	buy, err := evaluateCondition(r.BuyExpression, variables)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate buy expression: %w", err)
	}
	if buy {
		return domain.DecisionBuy, nil
	}

	if r.ReviewExpression != "" {
		review, err := evaluateCondition(r.ReviewExpression, variables)
		if err != nil {
			return "", fmt.Errorf("failed to evaluate review expression: %w", err)
		}
		if review {
			return domain.DecisionReview, nil
		}
	}

	return domain.DecisionPass, nil
}

func decisionVariables(in DecisionInput) map[string]interface{} {
	medianIrr := 0.0
	if in.MedianIrr != nil {
		medianIrr = *in.MedianIrr
	}
	return map[string]interface{}{
		"medianNpv":         in.MedianNpv,
		"p10Npv":            in.P10Npv,
		"p90Npv":            in.P90Npv,
		"equityRequired":    in.EquityRequired,
		"medianIrr":         medianIrr,
		"irrDefined":        in.MedianIrr != nil,
		"probabilityOfLoss": in.ProbabilityOfLoss,
	}
}

func evaluateCondition(expression string, variables map[string]interface{}) (bool, error) {
	eval := goval.NewEvaluator()
	functions := map[string]goval.ExpressionFunction{
		"abs": func(args ...interface{}) (interface{}, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("abs needs 1 arg, got %d", len(args))
			}
			switch v := args[0].(type) {
			case float64:
				return math.Abs(v), nil
			case int:
				if v < 0 {
					return -v, nil
				}
				return v, nil
			}
			return nil, fmt.Errorf("abs needs a number, got %T", args[0])
		},
	}

	result, err := eval.Evaluate(expression, variables, functions)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must be a condition, got %T", expression, result)
	}
	return b, nil
}
