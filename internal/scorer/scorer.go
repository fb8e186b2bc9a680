// Package scorer defines the pluggable ML scoring contract the
// evaluator composes with the rule engine's output, and a mock
// implementation standing in for a real model.
package scorer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fraudpipeline/internal/fraudmodel"
)

// Scorer is satisfied by any pluggable anomaly scoring capability. Score
// must be pure with respect to its inputs, safe to call concurrently on
// different inputs, and must honor ctx cancellation. It may return any
// number of risk factors, including zero.
type Scorer interface {
	Score(ctx context.Context, signals []fraudmodel.Signal) ([]fraudmodel.RiskFactor, error)
}

// MockScorer stands in for a production ML model. Given at least one
// signal, it emits a single "ml_anomaly_score" factor about half the
// time, uniformly distributed in [0, 0.5). Production scorer
// implementations must honor the same contract without assuming
// anything about this type's internals.
type MockScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockScorer builds a MockScorer. A nil rng is replaced by a new
// source seeded from the current time. The rng is guarded by a mutex since a single
// MockScorer is shared across concurrent requests.
func NewMockScorer(rng *rand.Rand) *MockScorer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404
	}
	return &MockScorer{rng: rng}
}

func (m *MockScorer) Score(ctx context.Context, signals []fraudmodel.Signal) ([]fraudmodel.RiskFactor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(signals) == 0 {
		return nil, nil
	}

	m.mu.Lock()
	skip := m.rng.Float64() >= 0.5
	var score float64
	if !skip {
		score = m.rng.Float64() * 0.5
	}
	m.mu.Unlock()

	if skip {
		return nil, nil
	}
	return []fraudmodel.RiskFactor{{
		Name:        "ml_anomaly_score",
		Score:       score,
		Weight:      0.4,
		Description: "ML model anomaly detection score (MOCK)",
	}}, nil
}
