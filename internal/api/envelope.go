// Package api exposes the HTTP surface: session/signal ingestion, fraud
// analysis retrieval, streaming ingestion, and the development-only
// debug endpoints, all wrapped in one response envelope.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"fraudpipeline/internal/apierr"
)

// RateLimitMeta is attached to the envelope's meta.rateLimit field when
// a handler consults the rate limiter.
type RateLimitMeta struct {
	Limit     int        `json:"limit"`
	Remaining int        `json:"remaining"`
	ResetAt   *time.Time `json:"resetAt,omitempty"`
}

type meta struct {
	RequestID string         `json:"requestId,omitempty"`
	Timestamp string         `json:"timestamp"`
	RateLimit *RateLimitMeta `json:"rateLimit,omitempty"`
}

type envelope struct {
	Success bool          `json:"success"`
	Data    any           `json:"data,omitempty"`
	Error   *apierr.Error `json:"error,omitempty"`
	Meta    meta          `json:"meta"`
}

// writeData writes a successful envelope carrying data.
func writeData(w http.ResponseWriter, status int, data any) {
	writeDataWithRateLimit(w, status, data, nil)
}

// writeDataWithRateLimit writes a successful envelope, optionally
// attaching rate-limit metadata for handlers that consult the limiter.
func writeDataWithRateLimit(w http.ResponseWriter, status int, data any, rl *RateLimitMeta) {
	writeEnvelope(w, status, envelope{
		Success: true,
		Data:    data,
		Meta: meta{
			RequestID: uuid.New().String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RateLimit: rl,
		},
	})
}

// writeError writes a failed envelope from an apierr.Error (or any error,
// wrapped as an internal error).
func writeError(w http.ResponseWriter, err error) {
	apiErr := apierr.As(err)
	writeEnvelope(w, apiErr.HTTPStatus(), envelope{
		Success: false,
		Error:   apiErr,
		Meta: meta{
			RequestID: uuid.New().String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("api: failed to encode response", "error", err)
	}
}
