package api

import "net/http"

// maxDebugSignals caps how many signals the debug endpoint returns.
const maxDebugSignals = 100

// handleDebugSignals dumps the raw signal history for a session, up to
// the first maxDebugSignals signals by timestamp. Only registered when
// Config.Environment is "development" — see
// config.Config.DebugEndpointsEnabled.
func (h *Handler) handleDebugSignals(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	signals, err := h.svc.GetSignals(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(signals) > maxDebugSignals {
		signals = signals[:maxDebugSignals]
	}
	writeData(w, http.StatusOK, map[string]any{"sessionId": sessionID, "signals": signals})
}
