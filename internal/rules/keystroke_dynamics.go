package rules

import (
	"context"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/payload"
)

// KeystrokeDynamicsRule flags typing that is too fast or too
// mechanically consistent in dwell/flight timing to be human.
type KeystrokeDynamicsRule struct{}

const keystrokeDynamicsWeight = 0.2

func (KeystrokeDynamicsRule) Name() string { return "keystroke_dynamics_anomaly" }

func (KeystrokeDynamicsRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	events := byType(signals, fraudmodel.SignalKeystrokeDynamics)
	if len(events) < 5 {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	var dwell, flight []float64
	for _, s := range events {
		ex := payload.New(s.Payload)
		if d := ex.GetDouble("dwellTimeMs", 0); d > 0 {
			dwell = append(dwell, d)
		}
		if f := ex.GetDouble("flightTimeMs", 0); f > 0 {
			flight = append(flight, f)
		}
	}

	avgDwell := mean(dwell)
	sdDwell := stdDev(dwell, avgDwell)
	avgFlight := mean(flight)

	best := 0.0
	reason := ""

	if len(dwell) > 0 {
		switch {
		case avgDwell < 20:
			best, reason = 0.9, "Inhuman typing speed"
		case avgDwell < 40:
			best, reason = 0.5, "Suspiciously fast typing"
		}
	}

	if len(dwell) > 0 && len(events) > 20 && sdDwell < 3 && 0.8 > best {
		best, reason = 0.8, "Robotic consistency"
	}
	if len(dwell) > 0 && len(events) > 30 && sdDwell < 8 && 0.5 > best {
		best, reason = 0.5, "Low variance in timing"
	}
	if len(flight) > 10 && avgFlight < 30 && 0.6 > best {
		best, reason = 0.6, "Rapid key transitions"
	}

	if reason == "" {
		return nil
	}
	return factor("keystroke_dynamics_anomaly", best, keystrokeDynamicsWeight, reason)
}
