package rules

import (
	"context"
	"strings"

	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/payload"
)

// BotSignatureRule flags known automation tool signatures in the
// reported user agent string.
type BotSignatureRule struct{}

const botSignatureWeight = 0.25

func (BotSignatureRule) Name() string { return "bot_signature_detected" }

// exactBotTokens are automation framework names that unambiguously
// identify a non-human client.
var exactBotTokens = []string{
	"HeadlessChrome", "PhantomJS", "Selenium", "WebDriver", "Puppeteer",
	"Playwright", "Nightmare", "CasperJS", "SlimerJS", "Zombie", "HtmlUnit",
}

// suspiciousSubstrings are weaker automation indicators that may also
// appear in benign user agents.
var suspiciousSubstrings = []string{"bot", "crawler", "spider", "scraper", "automation"}

func (BotSignatureRule) Evaluate(ctx context.Context, signals []fraudmodel.Signal) *fraudmodel.RiskFactor {
	device, ok := firstOfType(signals, fraudmodel.SignalDevice)
	if !ok {
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	ua, ok := payload.New(device.Payload).GetString("userAgent")
	if !ok || ua == "" {
		return nil
	}
	lowerUA := strings.ToLower(ua)

	for _, token := range exactBotTokens {
		if strings.Contains(lowerUA, strings.ToLower(token)) {
			return factor("bot_signature_detected", 0.95, botSignatureWeight,
				"Detected automation signature: "+token)
		}
	}

	for _, pattern := range suspiciousSubstrings {
		if strings.Contains(lowerUA, pattern) {
			return factor("bot_signature_detected", 0.7, botSignatureWeight,
				"Suspicious user agent pattern: "+pattern)
		}
	}

	return nil
}
