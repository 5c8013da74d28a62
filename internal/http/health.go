package http

import (
	"net/http"
	"time"
)

// Health always answers 200 so orchestrators can probe the process itself;
// the mongodb field carries the real connectivity state.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"mongodb":   connState(h.store.IsReady()),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Seconds(),
	})
}

// Root reports service metadata.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "docbridge",
		"version": "1.0.0",
		"mongodb": connState(h.store.IsReady()),
	})
}

func connState(ready bool) string {
	if ready {
		return "connected"
	}
	return "disconnected"
}
