// Package evaluator combines the rule engine's output with a pluggable
// scorer into a single confidence score and verdict.
package evaluator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/rules"
	"fraudpipeline/internal/scorer"
)

var tracer = otel.Tracer("fraudpipeline/evaluator")

// Evaluator computes a FraudAnalysis from a session and its signals.
type Evaluator struct {
	engine       *rules.Engine
	scorer       scorer.Scorer
	modelVersion string
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithScorer attaches an ML scorer. Without one, the evaluator relies on
// the rule engine alone.
func WithScorer(s scorer.Scorer) Option {
	return func(e *Evaluator) { e.scorer = s }
}

// WithModelVersion overrides the default model version tag.
func WithModelVersion(v string) Option {
	return func(e *Evaluator) { e.modelVersion = v }
}

// New builds an Evaluator around engine, defaulting to model version
// "1.0.0-dev" and no scorer.
func New(engine *rules.Engine, opts ...Option) *Evaluator {
	e := &Evaluator{
		engine:       engine,
		modelVersion: "1.0.0-dev",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the rule engine, then the scorer if configured,
// aggregates both into a weight-normalized confidence score, and maps
// that score to a verdict. Cancellation mid-evaluation returns an error
// with no partial FraudAnalysis.
func (e *Evaluator) Evaluate(ctx context.Context, session fraudmodel.Session, signals []fraudmodel.Signal) (*fraudmodel.FraudAnalysis, error) {
	ctx, span := tracer.Start(ctx, "evaluator.Evaluate")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", session.ID), attribute.Int("signal.count", len(signals)))

	factors, err := e.engine.Evaluate(ctx, signals)
	if err != nil {
		return nil, err
	}

	if e.scorer != nil {
		scorerFactors, err := e.scorer.Score(ctx, signals)
		if err != nil {
			return nil, err
		}
		factors = append(factors, scorerFactors...)
	}

	score := fraudmodel.WeightedScore(factors)
	verdict := fraudmodel.VerdictForScore(score)
	span.SetAttributes(attribute.String("verdict", string(verdict)), attribute.Float64("confidence_score", score))

	return &fraudmodel.FraudAnalysis{
		SessionID:       session.ID,
		Verdict:         verdict,
		ConfidenceScore: score,
		RiskFactors:     factors,
		ModelVersion:    e.modelVersion,
		EvaluatedAt:     time.Now().UTC(),
	}, nil
}
