package api

import (
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"fraudpipeline/internal/fraudmodel"
)

// handleStream upgrades the connection and accepts a stream of
// AppendSignalsRequest frames for the session named in the path,
// feeding each one through the same ingestion path the REST /signals
// endpoint uses. One ack frame is written per batch received.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("api: failed to accept websocket connection", "error", err)
		return
	}
	defer conn.CloseNow()

	if h.cfg.WebSocket.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.WebSocket.MaxMessageBytes)
	}

	ctx := r.Context()

	for {
		var req fraudmodel.AppendSignalsRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return
			}
			slog.Warn("api: stream read error", "error", err)
			return
		}
		req.SessionID = sessionID

		result, err := h.svc.AppendSignals(ctx, sessionID, req)
		if err != nil {
			ack := streamAck{Success: false, Error: err.Error()}
			if writeErr := wsjson.Write(ctx, conn, ack); writeErr != nil {
				return
			}
			continue
		}

		ack := streamAck{
			Success:         true,
			SessionID:       sessionID,
			SignalsReceived: result.SignalsReceived,
			TotalSignals:    result.TotalSignals,
		}
		if err := wsjson.Write(ctx, conn, ack); err != nil {
			return
		}
	}
}

type streamAck struct {
	Success         bool   `json:"success"`
	SessionID       string `json:"sessionId,omitempty"`
	SignalsReceived int    `json:"signalsReceived,omitempty"`
	TotalSignals    int    `json:"totalSignals,omitempty"`
	Error           string `json:"error,omitempty"`
}
