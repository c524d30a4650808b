package sse

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
)

// Handler streams events to HTTP clients.
type Handler struct {
	manager *Manager
	logger  *slog.Logger
}

// NewHandler creates an SSE HTTP handler.
func NewHandler(manager *Manager, logger *slog.Logger) *Handler {
	return &Handler{manager: manager, logger: logger}
}

// ServeHTTP implements the SSE wire protocol.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := h.manager.Subscribe()
	defer h.manager.Unsubscribe(client.ID)

	for {
		select {
		case event := <-client.EventChan:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal sse event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-client.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
