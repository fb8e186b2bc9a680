package evaluator

import (
	"context"
	"errors"
	"testing"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/rules"
)

func TestEvaluate_NoFactorsYieldsAllowZero(t *testing.T) {
	e := New(rules.NewEngine(nil))
	session := fraudmodel.Session{ID: "sess"}

	analysis, err := e.Evaluate(context.Background(), session, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.ConfidenceScore != 0 {
		t.Errorf("expected confidence score 0, got %f", analysis.ConfidenceScore)
	}
	if analysis.Verdict != fraudmodel.VerdictAllow {
		t.Errorf("expected ALLOW, got %s", analysis.Verdict)
	}
}

type fixedScorer struct {
	factors []fraudmodel.RiskFactor
}

func (f fixedScorer) Score(ctx context.Context, signals []fraudmodel.Signal) ([]fraudmodel.RiskFactor, error) {
	return f.factors, nil
}

func TestEvaluate_BlockAboveThreshold(t *testing.T) {
	e := New(rules.NewEngine(nil), WithScorer(fixedScorer{factors: []fraudmodel.RiskFactor{
		{Name: "x", Score: 0.9, Weight: 1.0},
	}}))

	analysis, err := e.Evaluate(context.Background(), fraudmodel.Session{ID: "sess"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Verdict != fraudmodel.VerdictBlock {
		t.Errorf("expected BLOCK, got %s (score %f)", analysis.Verdict, analysis.ConfidenceScore)
	}
}

type erroringScorer struct{}

func (erroringScorer) Score(ctx context.Context, signals []fraudmodel.Signal) ([]fraudmodel.RiskFactor, error) {
	return nil, errors.New("boom")
}

func TestEvaluate_ScorerErrorPropagates(t *testing.T) {
	e := New(rules.NewEngine(nil), WithScorer(erroringScorer{}))
	_, err := e.Evaluate(context.Background(), fraudmodel.Session{ID: "sess"}, nil)
	if err == nil {
		t.Fatal("expected error to propagate from scorer")
	}
}

func TestEvaluate_CancellationYieldsNoPartialAnalysis(t *testing.T) {
	e := New(rules.NewEngine(nil))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analysis, err := e.Evaluate(ctx, fraudmodel.Session{ID: "sess"}, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if analysis != nil {
		t.Fatalf("expected nil analysis on cancellation, got %+v", analysis)
	}
}

func TestVerdictForScore_Boundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  fraudmodel.Verdict
	}{
		{0, fraudmodel.VerdictAllow},
		{0.29, fraudmodel.VerdictAllow},
		{0.3, fraudmodel.VerdictReview},
		{0.69, fraudmodel.VerdictReview},
		{0.7, fraudmodel.VerdictBlock},
		{1.0, fraudmodel.VerdictBlock},
	}
	for _, c := range cases {
		if got := fraudmodel.VerdictForScore(c.score); got != c.want {
			t.Errorf("score %f: expected %s, got %s", c.score, c.want, got)
		}
	}
}
