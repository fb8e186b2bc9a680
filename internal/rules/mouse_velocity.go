package rules

import (
	"context"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/payload"
)

// MouseVelocityRule flags mouse movement that is too fast or too
// mechanically consistent to plausibly be a human hand.
type MouseVelocityRule struct{}

const mouseVelocityWeight = 0.15

func (MouseVelocityRule) Name() string { return "mouse_velocity_anomaly" }

func (MouseVelocityRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	moves := byType(signals, fraudmodel.SignalMouseMove)
	if len(moves) < 10 {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	var velocities []float64
	for _, s := range moves {
		v := payload.New(s.Payload).GetDouble("velocity", 0)
		if v > 0 {
			velocities = append(velocities, v)
		}
	}
	if len(velocities) < 1 {
		return nil
	}

	avg := mean(velocities)
	max := maxOf(velocities)
	sd := stdDev(velocities, avg)
	var cv float64
	if avg > 0 {
		cv = sd / avg
	}

	best := 0.0
	reason := ""

	if max > 50 {
		score := 0.5 + (max-50)/100
		if score > 0.9 {
			score = 0.9
		}
		if score > best {
			best, reason = score, "Extreme velocity"
		}
	} else if max > 35 {
		if 0.3 > best {
			best, reason = 0.3, "High velocity"
		}
	}

	if cv < 0.1 && len(moves) >= 50 {
		if 0.6 > best {
			best, reason = 0.6, "Robotic consistency"
		}
	}

	if reason == "" {
		return nil
	}
	return factor("mouse_velocity_anomaly", best, mouseVelocityWeight, reason)
}
