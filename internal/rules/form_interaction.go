package rules

import (
	"context"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/payload"
)

// FormInteractionRule flags form-fill behavior that is implausibly fast,
// shows no corrections across all fields, or was entirely pasted rather
// than typed.
type FormInteractionRule struct{}

const formInteractionWeight = 0.15

func (FormInteractionRule) Name() string { return "form_interaction_anomaly" }

// timeToFill reads timeToFill, falling back to timeToFillMs for forward
// compatibility with SDKs that emit the millisecond-suffixed key.
func timeToFill(ex payload.Extractor) float64 {
	if v := ex.GetDouble("timeToFill", 0); v > 0 {
		return v
	}
	return ex.GetDouble("timeToFillMs", 0)
}

func (FormInteractionRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	forms := byType(signals, fraudmodel.SignalFormInteraction)
	if len(forms) == 0 {
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

	var fillTimes []float64
	var corrections []int
	pasteCount := 0
	for _, s := range forms {
		ex := payload.New(s.Payload)
		if t := timeToFill(ex); t > 0 {
			fillTimes = append(fillTimes, t)
		}
		corrections = append(corrections, ex.GetInt("corrections", 0))
		if ex.GetBool("pasteDetected", false) {
			pasteCount++
		}
	}

	if len(fillTimes) > 0 {
		minFill := fillTimes[0]
		for _, t := range fillTimes {
			if t < minFill {
				minFill = t
			}
		}
		avgFill := mean(fillTimes)

		if minFill < 300 {
			consider(0.85, "Form filled implausibly fast")
		} else if avgFill < 500 {
			consider(0.6, "Fast form completion")
		}
	}

	if len(forms) >= 4 {
		allZero := true
		for _, c := range corrections {
			if c != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			consider(0.4, "No typing corrections across all fields")
		}
	}

	if len(forms) > 2 && pasteCount == len(forms) {
		consider(0.5, "All fields filled via paste")
	}

	if reason == "" {
		return nil
	}
	return factor("form_interaction_anomaly", best, formInteractionWeight, reason)
}
