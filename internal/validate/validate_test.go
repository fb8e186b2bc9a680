package validate

import (
	"strings"
	"testing"

	"fraudpipeline/internal/fraudmodel"
)

func TestCreateSession_Valid(t *testing.T) {
	err := CreateSession(fraudmodel.CreateSessionRequest{ClientID: "c1", DeviceFingerprint: "fp1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCreateSession_MissingFields(t *testing.T) {
	err := CreateSession(fraudmodel.CreateSessionRequest{})
	if err == nil {
		t.Fatal("expected validation error for missing required fields")
	}
	if len(err.Details) != 2 {
		t.Fatalf("expected 2 field details, got %d: %+v", len(err.Details), err.Details)
	}
}

func TestCreateSession_TooLong(t *testing.T) {
	err := CreateSession(fraudmodel.CreateSessionRequest{
		ClientID:          strings.Repeat("a", 257),
		DeviceFingerprint: strings.Repeat("b", 513),
	})
	if err == nil || len(err.Details) != 2 {
		t.Fatalf("expected 2 length violations, got %+v", err)
	}
}

func TestAppendSignals_EmptyBatchRejected(t *testing.T) {
	err := AppendSignals(fraudmodel.AppendSignalsRequest{SessionID: "s", Signals: nil})
	if err == nil {
		t.Fatal("expected rejection of empty batch")
	}
}

func TestAppendSignals_OversizedBatchRejected(t *testing.T) {
	signals := make([]fraudmodel.SignalInput, 1001)
	for i := range signals {
		signals[i] = fraudmodel.SignalInput{Type: "mouse_move", Timestamp: 1, Payload: map[string]any{}}
	}
	err := AppendSignals(fraudmodel.AppendSignalsRequest{SessionID: "s", Signals: signals})
	if err == nil {
		t.Fatal("expected rejection of batch over 1000")
	}
}

func TestAppendSignals_PerSignalViolations(t *testing.T) {
	err := AppendSignals(fraudmodel.AppendSignalsRequest{
		SessionID: "s",
		Signals: []fraudmodel.SignalInput{
			{Type: "", Timestamp: 0, Payload: nil},
		},
	})
	if err == nil || len(err.Details) != 3 {
		t.Fatalf("expected 3 field violations, got %+v", err)
	}
}

func TestAppendSignals_ValidBatchPasses(t *testing.T) {
	err := AppendSignals(fraudmodel.AppendSignalsRequest{
		SessionID: "s",
		Signals: []fraudmodel.SignalInput{
			{Type: "mouse_move", Timestamp: 100, Payload: map[string]any{"x": 1.0}},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
