package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Router wires all routes. The health and root endpoints are public; every
// /api route sits behind the body-parsing auth middleware.
func Router(h *Handlers, apiKey string, maxBodyBytes int64) *chi.Mux {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(requestLogger)

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireAPIKey(apiKey, maxBodyBytes))

		r.Post("/insert", h.Insert)
		r.Post("/insert_many", h.InsertMany)
		r.Post("/query", h.Query)
		r.Put("/update", h.Update)
		r.Delete("/delete", h.Delete)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
