// Package rules implements the deterministic behavioral and fingerprint
// rule bank: pure functions over a session's signals that emit weighted
// risk factors. Rules never mutate their input and must be safe to run
// concurrently with themselves over different sessions.
package rules

import (
	"context"

	"fraudpipeline/internal/fraudmodel"
)

// Rule is a single named detector. Evaluate returns nil when the rule
// does not fire.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor
}

// byType groups signals by their normalized SignalType, preserving
// relative order.
func byType(signals []fraudmodel.Signal, t fraudmodel.SignalType) []fraudmodel.Signal {
	var out []fraudmodel.Signal
	for _, s := range signals {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}

// firstOfType returns the first signal of type t, if any.
func firstOfType(signals []fraudmodel.Signal, t fraudmodel.SignalType) (fraudmodel.Signal, bool) {
	for _, s := range signals {
		if s.Type == t {
			return s, true
		}
	}
	return fraudmodel.Signal{}, false
}

// factor is a small constructor to cut down on repetition in rules.
func factor(name string, score, weight float64, description string) *fraudmodel.RiskFactor {
	return &fraudmodel.RiskFactor{
		Name:        name,
		Score:       score,
		Weight:      weight,
		Description: description,
	}
}
