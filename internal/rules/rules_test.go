package rules

import (
	"context"
	"testing"

	"fraudpipeline/internal/fraudmodel"
)

func sig(typ fraudmodel.SignalType, ts int64, payload map[string]any) fraudmodel.Signal {
	return fraudmodel.Signal{
		ID:        "s",
		SessionID: "sess",
		Type:      typ,
		Timestamp: ts,
		Payload:   payload,
	}
}

func TestMouseVelocityRule_RequiresTenSignals(t *testing.T) {
	var signals []fraudmodel.Signal
	for i := 0; i < 9; i++ {
		signals = append(signals, sig(fraudmodel.SignalMouseMove, int64(i), map[string]any{"velocity": 60.0}))
	}
	if rf := (MouseVelocityRule{}).Evaluate(context.Background(), signals); rf != nil {
		t.Fatalf("expected no-op with 9 signals, got %+v", rf)
	}
}

func TestMouseVelocityRule_ExtremeVelocity(t *testing.T) {
	var signals []fraudmodel.Signal
	for i := 0; i < 10; i++ {
		signals = append(signals, sig(fraudmodel.SignalMouseMove, int64(i), map[string]any{"velocity": 80.0}))
	}
	rf := (MouseVelocityRule{}).Evaluate(context.Background(), signals)
	if rf == nil {
		t.Fatal("expected rule to fire")
	}
	if rf.Score <= 0.5 {
		t.Errorf("expected high score for extreme velocity, got %f", rf.Score)
	}
}

func TestKeystrokeDynamicsRule_RoboticTyping(t *testing.T) {
	var signals []fraudmodel.Signal
	for i := 0; i < 30; i++ {
		signals = append(signals, sig(fraudmodel.SignalKeystrokeDynamics, int64(i), map[string]any{
			"dwellTimeMs":  15.0,
			"flightTimeMs": 10.0,
		}))
	}
	rf := (KeystrokeDynamicsRule{}).Evaluate(context.Background(), signals)
	if rf == nil {
		t.Fatal("expected rule to fire")
	}
	if rf.Score != 0.9 {
		t.Errorf("expected score 0.9, got %f", rf.Score)
	}
}

func TestTypingSpeedRule_SuperhumanWpm(t *testing.T) {
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalKeystrokeDynamics, 0, map[string]any{"estimatedWpm": 200.0}),
	}
	rf := (TypingSpeedRule{}).Evaluate(context.Background(), signals)
	if rf == nil {
		t.Fatal("expected rule to fire")
	}
	if rf.Score < 0.85 || rf.Score > 0.95 {
		t.Errorf("expected score in [0.85, 0.95], got %f", rf.Score)
	}
}

func TestBotSignatureRule_HeadlessChrome(t *testing.T) {
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalDevice, 0, map[string]any{"userAgent": "Mozilla/5.0 HeadlessChrome/120.0"}),
	}
	rf := (BotSignatureRule{}).Evaluate(context.Background(), signals)
	if rf == nil || rf.Score != 0.95 {
		t.Fatalf("expected score 0.95, got %+v", rf)
	}
}

func TestBotSignatureRule_NormalChrome(t *testing.T) {
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalDevice, 0, map[string]any{"userAgent": "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0 Safari/537.36"}),
	}
	if rf := (BotSignatureRule{}).Evaluate(context.Background(), signals); rf != nil {
		t.Fatalf("expected no-op for normal Chrome UA, got %+v", rf)
	}
}

func TestHeadlessBrowserRule_SwiftShaderAndWebdriver(t *testing.T) {
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalDevice, 0, map[string]any{"webdriver": true, "pluginCount": 0.0}),
		sig(fraudmodel.SignalFingerprint, 0, map[string]any{"canvas": "", "webgl": "0", "webglRenderer": "SwiftShader"}),
	}
	rf := (HeadlessBrowserRule{}).Evaluate(context.Background(), signals)
	if rf == nil {
		t.Fatal("expected rule to fire")
	}
	if rf.Score != 0.95 {
		t.Errorf("expected max score 0.95 (webdriver=true), got %f", rf.Score)
	}
}

func TestHeadlessBrowserRule_NormalBrowser(t *testing.T) {
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalDevice, 0, map[string]any{"webdriver": false, "pluginCount": 5.0}),
		sig(fraudmodel.SignalFingerprint, 0, map[string]any{
			"canvas": "a1b2c3d4e5f6", "webgl": "abcdef", "webglRenderer": "NVIDIA GeForce RTX 3080", "audio": "abcdef",
		}),
	}
	if rf := (HeadlessBrowserRule{}).Evaluate(context.Background(), signals); rf != nil {
		t.Fatalf("expected no-op for a normal browser, got %+v", rf)
	}
}

func TestFormInteractionRule_FastFill(t *testing.T) {
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalFormInteraction, 0, map[string]any{"timeToFill": 100.0}),
	}
	rf := (FormInteractionRule{}).Evaluate(context.Background(), signals)
	if rf == nil || rf.Score != 0.85 {
		t.Fatalf("expected score 0.85, got %+v", rf)
	}
}

func TestSessionPatternRule_MissingDeviceFingerprint(t *testing.T) {
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalMouseMove, 0, map[string]any{}),
	}
	rf := (SessionPatternRule{}).Evaluate(context.Background(), signals)
	if rf == nil || rf.Score != 0.7 {
		t.Fatalf("expected score 0.7, got %+v", rf)
	}
}

func TestFingerprintAnomalyRule_RequiresBothSignals(t *testing.T) {
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalFingerprint, 0, map[string]any{"timezoneOffset": 0.0}),
	}
	if rf := (FingerprintAnomalyRule{}).Evaluate(context.Background(), signals); rf != nil {
		t.Fatalf("expected no-op without device signal, got %+v", rf)
	}
}

func TestEngine_DefaultOrderAndComposition(t *testing.T) {
	engine := NewEngine(nil)
	signals := []fraudmodel.Signal{
		sig(fraudmodel.SignalDevice, 0, map[string]any{
			"userAgent": "Mozilla/5.0 HeadlessChrome/120.0", "webdriver": true, "pluginCount": 0.0,
		}),
		sig(fraudmodel.SignalFingerprint, 0, map[string]any{
			"canvas": "", "webgl": "0", "webglRenderer": "SwiftShader",
		}),
	}
	factors, err := engine.Evaluate(context.Background(), signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, f := range factors {
		names = append(names, f.Name)
	}
	foundBot, foundHeadless := false, false
	for _, n := range names {
		if n == "bot_signature_detected" {
			foundBot = true
		}
		if n == "headless_browser_detected" {
			foundHeadless = true
		}
	}
	if !foundBot || !foundHeadless {
		t.Fatalf("expected both bot_signature_detected and headless_browser_detected, got %v", names)
	}
}

func TestEngine_CancellationStopsEvaluation(t *testing.T) {
	engine := NewEngine(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factors, err := engine.Evaluate(ctx, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if factors != nil {
		t.Fatalf("expected nil factors on cancellation, got %v", factors)
	}
}

func TestEngine_NoSignalsYieldsNoFactors(t *testing.T) {
	engine := NewEngine(nil)
	factors, err := engine.Evaluate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(factors) != 0 {
		t.Fatalf("expected no factors, got %v", factors)
	}
}
