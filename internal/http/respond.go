package http

import (
	"encoding/json"
	"net/http"
)

// writeJSON sends v with a success flag merged in. Every response body in
// the service carries "success" so callers can branch without inspecting
// status codes.
func writeJSON(w http.ResponseWriter, code int, fields map[string]any) {
	body := map[string]any{"success": code < 400}
	for k, v := range fields {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
