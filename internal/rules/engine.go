package rules

import (
	"context"

	"fraudpipeline/internal/fraudmodel"
)

// Engine runs an ordered sequence of rules over a session's signals and
// collects the risk factors that fire.
type Engine struct {
	rules []Rule
}

// DefaultRules returns the nine built-in rules in the order the
// evaluator invokes them.
func DefaultRules() []Rule {
	return []Rule{
		MouseVelocityRule{},
		MousePatternRule{},
		KeystrokeDynamicsRule{},
		TypingSpeedRule{},
		BotSignatureRule{},
		HeadlessBrowserRule{},
		FormInteractionRule{},
		SessionPatternRule{},
		FingerprintAnomalyRule{},
	}
}

// NewEngine builds an Engine from rules. A nil or empty slice selects
// DefaultRules().
func NewEngine(rules []Rule) *Engine {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Evaluate invokes each rule serially in order, checking for
// cancellation between rules, and returns the risk factors that fired in
// rule order.
func (e *Engine) Evaluate(ctx context.Context, signals []fraudmodel.Signal) ([]fraudmodel.RiskFactor, error) {
	var factors []fraudmodel.RiskFactor
	for _, r := range e.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rf := r.Evaluate(ctx, signals); rf != nil {
			factors = append(factors, *rf)
		}
	}
	return factors, nil
}
