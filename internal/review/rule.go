package review

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// DefaultEscalation escalates scores the model is unsure about.
const DefaultEscalation = "probability >= 0.3 && probability <= 0.7"

// Rule decides whether a score is ambiguous enough to ask for an
// explanation. Expressions may reference probability, prediction and amount.
type Rule struct {
	source string
	expr   *govaluate.EvaluableExpression
}

// NewRule compiles expr and checks that it yields a boolean.
func NewRule(expr string) (*Rule, error) {
	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling escalation rule %q: %w", expr, err)
	}
	r := &Rule{source: expr, expr: compiled}
	if _, err := r.eval(ruleParams(0, 0.5, 0)); err != nil {
		return nil, err
	}
	return r, nil
}

// String returns the rule's source expression.
func (r *Rule) String() string { return r.source }

// Match reports whether score for txn should be escalated.
func (r *Rule) Match(txn model.Transaction, score model.Score) (bool, error) {
	return r.eval(ruleParams(score.Prediction, score.Probability, txn.Amount.InexactFloat64()))
}

func (r *Rule) eval(params map[string]interface{}) (bool, error) {
	result, err := r.expr.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("evaluating escalation rule %q: %w", r.source, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("escalation rule %q returned %T, want bool", r.source, result)
	}
	return b, nil
}

func ruleParams(prediction int, probability, amount float64) map[string]interface{} {
	return map[string]interface{}{
		"prediction":  float64(prediction),
		"probability": probability,
		"amount":      amount,
	}
}
