package api

import (
	"net/http"

	"fraudpipeline/internal/config"
	"fraudpipeline/internal/ingestion"
	"fraudpipeline/internal/telemetry"
)

// version is the build-level API version reported by the health check.
const version = "1.0.0-dev"

// Handler serves the fraud pipeline's HTTP surface.
type Handler struct {
	svc       *ingestion.Service
	telemetry *telemetry.Provider
	cfg       *config.Config
	mux       *http.ServeMux
}

// New builds the Handler and registers every route.
func New(svc *ingestion.Service, provider *telemetry.Provider, cfg *config.Config) *Handler {
	h := &Handler{svc: svc, telemetry: provider, cfg: cfg, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /api/v1/health", h.handleHealth)
	h.mux.HandleFunc("GET /api/v1/ready", h.handleReady)
	h.mux.HandleFunc("POST /api/v1/sessions", h.handleCreateSession)
	h.mux.HandleFunc("POST /api/v1/sessions/{id}/signals", h.handleAppendSignals)
	h.mux.HandleFunc("POST /api/v1/sessions/{id}/complete", h.handleCompleteSession)
	h.mux.HandleFunc("GET /api/v1/sessions/{id}/analysis", h.handleGetAnalysis)
	h.mux.HandleFunc("POST /api/v1/analyze", h.handleAnalyze)

	if cfg.WebSocket.Enabled {
		h.mux.HandleFunc("GET /api/v1/sessions/{id}/stream", h.handleStream)
	}
	if cfg.DebugEndpointsEnabled() {
		h.mux.HandleFunc("GET /api/v1/debug/sessions/{id}/signals", h.handleDebugSignals)
	}

	return h
}

// ServeHTTP implements http.Handler, injecting CORS headers and a
// per-request trace span before delegating to the registered routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx, span := h.telemetry.StartRequestSpan(r.Context(), r.Method, r.URL.Path)
	defer span.End()

	rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.mux.ServeHTTP(rw, r.WithContext(ctx))
	telemetry.EndRequestSpan(span, rw.status, nil)
}

// statusRecorder captures the status code written by downstream handlers
// so the tracing middleware can record it after ServeHTTP returns.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
