package rules

import (
	"context"
	"strings"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/payload"
)

// HeadlessBrowserRule flags missing or software-rendered fingerprint
// components and an explicit navigator.webdriver flag, both strong
// signals of a headless or automated browser.
type HeadlessBrowserRule struct{}

const headlessBrowserWeight = 0.2

func (HeadlessBrowserRule) Name() string { return "headless_browser_detected" }

func (HeadlessBrowserRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	fp, hasFP := firstOfType(signals, fraudmodel.SignalFingerprint)
	dev, hasDev := firstOfType(signals, fraudmodel.SignalDevice)
	if !hasFP && !hasDev {
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

	if hasFP {
		fpEx := payload.New(fp.Payload)

		canvas, _ := fpEx.GetString("canvas")
		if canvas == "" || canvas == "0" || len(canvas) < 8 {
			consider(0.6, "Missing/invalid canvas fingerprint")
		}

		webgl, _ := fpEx.GetString("webgl")
		if webgl == "" || webgl == "0" {
			consider(0.5, "Missing WebGL fingerprint")
		}

		renderer, _ := fpEx.GetString("webglRenderer")
		lowerRenderer := strings.ToLower(renderer)
		if strings.Contains(lowerRenderer, "swiftshader") ||
			(strings.Contains(lowerRenderer, "mesa") && strings.Contains(lowerRenderer, "llvmpipe")) {
			consider(0.7, "Software renderer detected")
		}

		audio, _ := fpEx.GetString("audio")
		if audio == "" || audio == "0" {
			consider(0.4, "Missing audio fingerprint")
		}
	}

	if hasDev {
		devEx := payload.New(dev.Payload)

		if devEx.GetBool("webdriver", false) {
			consider(0.95, "navigator.webdriver is true")
		}
		if devEx.GetInt("pluginCount", -1) == 0 {
			consider(0.5, "No browser plugins detected")
		}
	}

	if reason == "" {
		return nil
	}
	return factor("headless_browser_detected", best, headlessBrowserWeight, reason)
}
