package fraudmodel

import "time"

// Verdict is the categorical output of the evaluator.
type Verdict string

const (
	VerdictAllow  Verdict = "ALLOW"
	VerdictReview Verdict = "REVIEW"
	VerdictBlock  Verdict = "BLOCK"
)

// VerdictForScore maps a weighted confidence score onto a Verdict per
// spec: < 0.3 ALLOW, < 0.7 REVIEW, else BLOCK.
func VerdictForScore(score float64) Verdict {
	switch {
	case score < 0.3:
		return VerdictAllow
	case score < 0.7:
		return VerdictReview
	default:
		return VerdictBlock
	}
}

// RiskFactor is a named (score, weight) pair emitted by a rule or a
// scorer.
type RiskFactor struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// FraudAnalysis is the single verdict produced for a completed session.
type FraudAnalysis struct {
	SessionID       string       `json:"sessionId"`
	Verdict         Verdict      `json:"verdict"`
	ConfidenceScore float64      `json:"confidenceScore"`
	RiskFactors     []RiskFactor `json:"riskFactors"`
	ModelVersion    string       `json:"modelVersion"`
	EvaluatedAt     time.Time    `json:"evaluatedAt"`
}

// WeightedScore computes the weight-normalized sum of factor scores:
// sum(score*weight)/sum(weight), or 0 if no weight is present.
func WeightedScore(factors []RiskFactor) float64 {
	var totalWeight, weightedSum float64
	for _, f := range factors {
		totalWeight += f.Weight
		weightedSum += f.Score * f.Weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return weightedSum / totalWeight
}
