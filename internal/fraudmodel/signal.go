package fraudmodel

import (
	"sort"
	"strings"
)

// SignalType is the closed taxonomy of behavioral signals the core
// understands. Anything that does not map onto a known member normalizes
// to SignalUnknown but is still accepted and stored.
type SignalType string

const (
	SignalMouseMove          SignalType = "mouse_move"
	SignalMouseClick         SignalType = "mouse_click"
	SignalKeystroke          SignalType = "keystroke"
	SignalKeystrokeDynamics  SignalType = "keystroke_dynamics"
	SignalScroll             SignalType = "scroll"
	SignalTouch              SignalType = "touch"
	SignalVisibility         SignalType = "visibility"
	SignalFocus              SignalType = "focus"
	SignalPaste              SignalType = "paste"
	SignalDevice             SignalType = "device"
	SignalPerformance        SignalType = "performance"
	SignalFingerprint        SignalType = "fingerprint"
	SignalFormInteraction    SignalType = "form_interaction"
	SignalAccelerometer      SignalType = "accelerometer"
	SignalGyroscope          SignalType = "gyroscope"
	SignalAppLifecycle       SignalType = "app_lifecycle"
	SignalJailbreakDetection SignalType = "jailbreak_detection"
	SignalRootDetection      SignalType = "root_detection"
	SignalUnknown            SignalType = "unknown"
)

// canonicalSignalTypes maps a normalized (no underscores, lower-case) key
// to its canonical SignalType. Built once so both snake_case and
// camelCase wire values resolve to the same member.
var canonicalSignalTypes = buildCanonicalSignalTypes()

func buildCanonicalSignalTypes() map[string]SignalType {
	all := []SignalType{
		SignalMouseMove, SignalMouseClick, SignalKeystroke, SignalKeystrokeDynamics,
		SignalScroll, SignalTouch, SignalVisibility, SignalFocus, SignalPaste,
		SignalDevice, SignalPerformance, SignalFingerprint, SignalFormInteraction,
		SignalAccelerometer, SignalGyroscope, SignalAppLifecycle,
		SignalJailbreakDetection, SignalRootDetection, SignalUnknown,
	}
	m := make(map[string]SignalType, len(all))
	for _, t := range all {
		m[normalizeKey(string(t))] = t
	}
	return m
}

// normalizeKey strips underscores and lower-cases s, so that "mouse_move"
// and "mouseMove" collapse onto the same key.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "_", "")
}

// NormalizeSignalType maps an arbitrary wire value (snake_case or
// camelCase, any casing) onto the closed taxonomy. Unrecognized values
// map to SignalUnknown. Idempotent: NormalizeSignalType(string(x)) for an
// already-canonical x returns x.
func NormalizeSignalType(raw string) SignalType {
	if t, ok := canonicalSignalTypes[normalizeKey(raw)]; ok {
		return t
	}
	return SignalUnknown
}

// Signal is one immutable behavioral measurement belonging to a session.
type Signal struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Type      SignalType     `json:"type"`
	Timestamp int64          `json:"timestamp"` // Unix-ms
	Payload   map[string]any `json:"payload"`
}

// SignalInput is the wire shape of one signal in an append/analyze
// request, before normalization and ID assignment.
type SignalInput struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Payload   map[string]any `json:"payload"`
}

// AppendSignalsRequest is the wire body for POST /sessions/{id}/signals
// and the inline POST /analyze path.
type AppendSignalsRequest struct {
	SessionID string        `json:"sessionId"`
	Signals   []SignalInput `json:"signals"`
}

// byTimestamp sorts Signals ascending by Timestamp; ties keep their
// relative input order (stable sort is used by callers).
type byTimestamp []Signal

func (b byTimestamp) Len() int           { return len(b) }
func (b byTimestamp) Less(i, j int) bool { return b[i].Timestamp < b[j].Timestamp }
func (b byTimestamp) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }

// SortByTimestamp returns a copy of signals sorted ascending by
// Timestamp. The input slice is not mutated.
func SortByTimestamp(signals []Signal) []Signal {
	out := make([]Signal, len(signals))
	copy(out, signals)
	sort.Stable(byTimestamp(out))
	return out
}
