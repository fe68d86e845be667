package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// The gate never rejects; it only attaches a SecurityContext.
	r.Use(s.gate.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", s.handleListJobs)
				r.Post("/", s.handleCreateJob)
				r.Get("/stats", s.handleJobStats)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetJob)
					r.Put("/", s.handleUpdateJob)
					r.Delete("/", s.handleDeleteJob)
					r.Patch("/status", s.handleUpdateJobStatus)
				})
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/audit", s.handleListAuditLogs)
				r.Get("/metrics", s.handleMetrics)
				r.Get("/users", s.handleListUsers)
				r.Get("/users/{id}", s.handleGetUser)
			})
		})
	})

	return r
}
