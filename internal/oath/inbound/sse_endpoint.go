package inbound

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const heartbeatInterval = 25 * time.Second

// Stream sends object tree changes to the client using SSE. The event name
// is the ObjectEvent type.
// @Summary Stream object events
// @Description Streams object_added, object_removed, properties_changed, credential_signal and notification events.
// @Tags OATH
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 500 {string} string "streaming unsupported"
// @Router /api/v1/oath/stream [get]
func (h *HTTPEndpoint) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ctx := r.Context()
	stream := h.uc.Stream(ctx)

	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		slog.ErrorContext(ctx, "failed to send response connected", "error", err)
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case evt, ok := <-stream:
			if !ok {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				slog.ErrorContext(ctx, "failed to marshal object event", "type", evt.Type, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, payload); err != nil {
				slog.ErrorContext(ctx, "failed to send object event", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
