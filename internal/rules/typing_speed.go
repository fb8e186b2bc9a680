package rules

import (
	"context"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/payload"
)

// TypingSpeedRule flags an estimated words-per-minute rate beyond human
// reach.
type TypingSpeedRule struct{}

const typingSpeedWeight = 0.15

func (TypingSpeedRule) Name() string { return "typing_speed_anomaly" }

func (TypingSpeedRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	events := byType(signals, fraudmodel.SignalKeystrokeDynamics)

	var wpm float64
	found := false
	for _, s := range events {
		if ctx.Err() != nil {
			return nil
		}
		if v, ok := s.Payload["estimatedWpm"]; ok && v != nil {
			wpm = payload.New(s.Payload).GetDouble("estimatedWpm", 0)
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	switch {
	case wpm > 150:
		score := 0.6 + (wpm-150)/200
		if score > 0.95 {
			score = 0.95
		}
		return factor("typing_speed_anomaly", score, typingSpeedWeight, "Superhuman typing speed")
	case wpm > 120:
		score := 0.3 + (wpm-120)/100
		return factor("typing_speed_anomaly", score, typingSpeedWeight, "Very fast typing")
	default:
		return nil
	}
}
