package rules

import (
	"context"

	"fraudpipeline/internal/fraudmodel"
)

// SessionPatternRule flags whole-session anomalies: missing device or
// fingerprint telemetry, no mouse activity at all, an implausibly short
// but event-dense session, or a signal rate no human input device can
// sustain.
type SessionPatternRule struct{}

const sessionPatternWeight = 0.1

func (SessionPatternRule) Name() string { return "session_pattern_anomaly" }

func (SessionPatternRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	if len(signals) == 0 {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	best := 0.0
	reason := ""
	consider := func(score float64, description string) {
		if score > best {
			best, reason = score, description
		}
	}

	_, hasDevice := firstOfType(signals, fraudmodel.SignalDevice)
	_, hasFingerprint := firstOfType(signals, fraudmodel.SignalFingerprint)
	if !hasDevice || !hasFingerprint {
		consider(0.7, "Missing device/fingerprint signals")
	}

	hasMouseMove := len(byType(signals, fraudmodel.SignalMouseMove)) > 0
	hasMouseClick := len(byType(signals, fraudmodel.SignalMouseClick)) > 0
	if len(signals) > 10 && !hasMouseMove && !hasMouseClick {
		consider(0.4, "No mouse activity detected")
	}

	minTS, maxTS := signals[0].Timestamp, signals[0].Timestamp
	for _, s := range signals {
		if s.Timestamp < minTS {
			minTS = s.Timestamp
		}
		if s.Timestamp > maxTS {
			maxTS = s.Timestamp
		}
	}
	duration := maxTS - minTS

	if duration < 1000 && len(signals) > 20 {
		consider(0.8, "Rapid session")
	}

	if duration > 0 {
		rate := float64(len(signals)) / (float64(duration) / 1000.0)
		if rate > 50 {
			consider(0.6, "High signal rate")
		}
	}

	if reason == "" {
		return nil
	}
	return factor("session_pattern_anomaly", best, sessionPatternWeight, reason)
}
