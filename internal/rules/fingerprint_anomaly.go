package rules

import (
	"context"
	"math"
	"strings"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/payload"
)

// FingerprintAnomalyRule cross-checks the device and fingerprint
// signals against each other: timezone mismatch, implausible screen
// geometry, and a reported language absent from the fingerprint's
// language list.
type FingerprintAnomalyRule struct{}

const fingerprintAnomalyWeight = 0.1

func (FingerprintAnomalyRule) Name() string { return "fingerprint_anomaly" }

func (FingerprintAnomalyRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	fp, hasFP := firstOfType(signals, fraudmodel.SignalFingerprint)
	dev, hasDev := firstOfType(signals, fraudmodel.SignalDevice)
	if !hasFP || !hasDev {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	fpEx := payload.New(fp.Payload)
	devEx := payload.New(dev.Payload)

	best := 0.0
	reason := ""
	consider := func(score float64, description string) {
		if score > best {
			best, reason = score, description
		}
	}

	if _, ok1 := fp.Payload["timezoneOffset"]; ok1 {
		if _, ok2 := dev.Payload["timezoneOffset"]; ok2 {
			fpTZ := fpEx.GetDouble("timezoneOffset", 0)
			devTZ := devEx.GetDouble("timezoneOffset", 0)
			if math.Abs(fpTZ-devTZ) > 60 {
				consider(0.6, "Timezone mismatch between device and fingerprint")
			}
		}
	}

	width := devEx.GetInt("screenWidth", 0)
	height := devEx.GetInt("screenHeight", 0)
	switch {
	case width == 0 || height == 0:
		consider(0.7, "Invalid screen dimensions")
	case (width == 800 && height == 600) || (width == 1 && height == 1):
		consider(0.5, "Suspicious default screen dimensions")
	}

	lang, hasLang := devEx.GetString("language")
	langs, hasLangs := fpEx.GetString("languages")
	if hasLang && hasLangs {
		primary := strings.Split(lang, "-")[0]
		if !strings.Contains(strings.ToLower(langs), strings.ToLower(primary)) {
			consider(0.4, "Device language not present in fingerprint languages")
		}
	}

	if reason == "" {
		return nil
	}
	return factor("fingerprint_anomaly", best, fingerprintAnomalyWeight, reason)
}
