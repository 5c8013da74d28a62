package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type ctxKey int

const bodyKey ctxKey = 0

// requireAPIKey parses the JSON request body, checks the embedded api_key
// against key, and strips it before handing the body to the handler. The
// key travels in the body rather than a header, so authentication and body
// parsing are one step; stripping it here guarantees the secret is never
// persisted as part of a document.
func requireAPIKey(key string, maxBodyBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
					return
				}
				writeError(w, http.StatusBadRequest, "Invalid JSON body")
				return
			}

			supplied, ok := body["api_key"].(string)
			if !ok || supplied == "" {
				writeError(w, http.StatusUnauthorized, "Missing api_key in request body")
				return
			}
			if supplied != key {
				writeError(w, http.StatusUnauthorized, "Invalid api_key")
				return
			}
			delete(body, "api_key")

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bodyKey, body)))
		})
	}
}

// requestBody returns the parsed, key-stripped body stored by requireAPIKey.
func requestBody(r *http.Request) map[string]any {
	body, _ := r.Context().Value(bodyKey).(map[string]any)
	if body == nil {
		return map[string]any{}
	}
	return body
}
