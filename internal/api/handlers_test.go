package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fraudpipeline/internal/config"
	"fraudpipeline/internal/evaluator"
	"fraudpipeline/internal/fraudmodel"
	"fraudpipeline/internal/ingestion"
	"fraudpipeline/internal/ratelimit"
	"fraudpipeline/internal/rules"
	"fraudpipeline/internal/store"
	"fraudpipeline/internal/telemetry"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	sessions := store.NewMemorySessionStore()
	signals := store.NewMemorySignalStore()
	analyses := store.NewMemoryAnalysisStore()
	limiter := ratelimit.New(100)
	eval := evaluator.New(rules.NewEngine(rules.DefaultRules()))
	svc := ingestion.New(sessions, signals, analyses, limiter, eval)

	provider, err := telemetry.NewProvider(telemetry.Config{Enabled: false})
	if err != nil {
		t.Fatalf("building telemetry provider: %v", err)
	}

	cfg := config.Defaults()
	cfg.Environment = "development"
	return New(svc, provider, cfg)
}

func doJSON(h *Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t)
	w := doJSON(h, http.MethodGet, "/api/v1/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHandleCreateSession_MissingFieldsReturnsValidationError(t *testing.T) {
	h := newTestHandler(t)
	w := doJSON(h, http.MethodPost, "/api/v1/sessions", fraudmodel.CreateSessionRequest{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestFullSessionLifecycle(t *testing.T) {
	h := newTestHandler(t)

	createResp := doJSON(h, http.MethodPost, "/api/v1/sessions", fraudmodel.CreateSessionRequest{
		ClientID: "client-1", DeviceFingerprint: "fp-1",
	})
	if createResp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", createResp.Code, createResp.Body.String())
	}
	var created struct {
		Data createSessionResponse `json:"data"`
	}
	if err := json.Unmarshal(createResp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	sessionID := created.Data.SessionID
	if sessionID == "" {
		t.Fatal("expected non-empty session ID")
	}

	signalsResp := doJSON(h, http.MethodPost, "/api/v1/sessions/"+sessionID+"/signals", fraudmodel.AppendSignalsRequest{
		Signals: []fraudmodel.SignalInput{
			{Type: "mouse_move", Timestamp: 100, Payload: map[string]any{"x": 1.0, "y": 2.0}},
		},
	})
	if signalsResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", signalsResp.Code, signalsResp.Body.String())
	}

	completeResp := doJSON(h, http.MethodPost, "/api/v1/sessions/"+sessionID+"/complete", nil)
	if completeResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", completeResp.Code, completeResp.Body.String())
	}
	var completed struct {
		Data completeSessionResponse `json:"data"`
	}
	if err := json.Unmarshal(completeResp.Body.Bytes(), &completed); err != nil {
		t.Fatalf("decoding complete response: %v", err)
	}
	if completed.Data.SessionID != sessionID {
		t.Fatalf("expected sessionId %q, got %q", sessionID, completed.Data.SessionID)
	}
	if completed.Data.SignalCount != 1 {
		t.Fatalf("expected signalCount 1, got %d", completed.Data.SignalCount)
	}
	if !completed.Data.AnalysisAvailable {
		t.Fatal("expected analysisAvailable true")
	}
	if completed.Data.CompletedAt.IsZero() {
		t.Fatal("expected non-zero completedAt")
	}

	analysisResp := doJSON(h, http.MethodGet, "/api/v1/sessions/"+sessionID+"/analysis", nil)
	if analysisResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", analysisResp.Code, analysisResp.Body.String())
	}
}

func TestHandleGetAnalysis_UnknownSessionReturns404(t *testing.T) {
	h := newTestHandler(t)
	w := doJSON(h, http.MethodGet, "/api/v1/sessions/unknown/analysis", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHandleAnalyze_InlineBatch(t *testing.T) {
	h := newTestHandler(t)
	w := doJSON(h, http.MethodPost, "/api/v1/analyze", fraudmodel.AppendSignalsRequest{
		SessionID: "inline-sess",
		Signals: []fraudmodel.SignalInput{
			{Type: "mouse_move", Timestamp: 100, Payload: map[string]any{"x": 1.0, "y": 2.0}},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS header on preflight response")
	}
}

func TestDebugEndpoint_OnlyRegisteredInDevelopment(t *testing.T) {
	h := newTestHandler(t)
	w := doJSON(h, http.MethodGet, "/api/v1/debug/sessions/unknown/signals", nil)
	if w.Header().Get("Content-Type") != "application/json" {
		t.Fatal("expected debug route to be registered in development mode")
	}

	prod := New(h.svc, h.telemetry, config.Defaults())
	w = doJSON(prod, http.MethodGet, "/api/v1/debug/sessions/unknown/signals", nil)
	if w.Header().Get("Content-Type") == "application/json" {
		t.Fatal("expected debug route not to be registered in production mode")
	}
}
