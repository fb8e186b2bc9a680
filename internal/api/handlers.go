package api

import (
	"encoding/json"
	"net/http"
	"time"

	"fraudpipeline/internal/apierr"
	"fraudpipeline/internal/fraudmodel"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now().UTC(), Version: version})
}

// handleReady is the readiness probe, served on its own route apart from
// the health check. It always reports ready; it does not probe the
// storage backend.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ready"})
}

type createSessionResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req fraudmodel.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.Validation("malformed request body"))
		return
	}

	sess, err := h.svc.CreateSession(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, createSessionResponse{SessionID: sess.ID, CreatedAt: sess.CreatedAt})
}

type appendSignalsResponse struct {
	SessionID       string `json:"sessionId"`
	SignalsReceived int    `json:"signalsReceived"`
	TotalSignals    int    `json:"totalSignals"`
}

func (h *Handler) handleAppendSignals(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req fraudmodel.AppendSignalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.Validation("malformed request body"))
		return
	}
	req.SessionID = sessionID

	result, err := h.svc.AppendSignals(r.Context(), sessionID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	var rl *RateLimitMeta
	if result.RateLimit != nil {
		resetAt := time.Now().UTC().Add(result.RateLimit.RetryAfter)
		rl = &RateLimitMeta{Limit: result.RateLimit.Limit, Remaining: result.RateLimit.Remaining, ResetAt: &resetAt}
	}

	writeDataWithRateLimit(w, http.StatusOK, appendSignalsResponse{
		SessionID:       sessionID,
		SignalsReceived: result.SignalsReceived,
		TotalSignals:    result.TotalSignals,
	}, rl)
}

type completeSessionResponse struct {
	SessionID         string    `json:"sessionId"`
	CompletedAt       time.Time `json:"completedAt"`
	SignalCount       int       `json:"signalCount"`
	AnalysisAvailable bool      `json:"analysisAvailable"`
}

func (h *Handler) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	summary, err := h.svc.CompleteSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, completeSessionResponse{
		SessionID:         summary.SessionID,
		CompletedAt:       summary.CompletedAt,
		SignalCount:       summary.SignalCount,
		AnalysisAvailable: summary.AnalysisAvailable,
	})
}

func (h *Handler) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	analysis, err := h.svc.GetAnalysis(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, analysis)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req fraudmodel.AppendSignalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apierr.Validation("malformed request body"))
		return
	}

	analysis, err := h.svc.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, analysis)
}
