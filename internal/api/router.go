package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/readings", func(r chi.Router) {
			r.Post("/", s.handleCreateReading)
			r.Get("/recent", s.handleRecentReadings)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", s.handleCreateEvent)
			r.Get("/recent", s.handleRecentEvents)
		})

		r.Get("/statistics/recent", s.handleRecentStatistics)
	})

	return r
}

// handleIndex describes the service and its endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "wxbridge",
		"version": s.version,
		"endpoints": []string{
			"POST /api/v1/readings",
			"GET /api/v1/readings/recent",
			"POST /api/v1/events",
			"GET /api/v1/events/recent",
			"GET /api/v1/statistics/recent",
		},
	})
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
