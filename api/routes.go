package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// setupRoutes wires the JSON API and, when configured, the offline cache
// gateway for everything else.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware, frontend http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		// Analytics ingestion, rate limited per caller IP
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware(handlers.analyticsHandler.limiter))
			r.Post("/analytics/track", handlers.analyticsHandler.track())
		})

		// Public search
		r.Get("/search", handlers.searchHandler.search())

		// Upload negotiation
		r.Get("/uploadthing", handlers.uploadHandler.listRoutes())
		r.With(authMiddleware.authenticate).Post("/uploadthing", handlers.uploadHandler.negotiate())

		// Project resources
		r.Route("/projects", func(r chi.Router) {
			r.With(authMiddleware.authenticate).Get("/", handlers.projectHandler.getOwnProjects())
			r.With(authMiddleware.authenticate).Post("/", handlers.projectHandler.createProject())
			r.With(authMiddleware.identify).Get("/{projectID}", handlers.projectHandler.getProject())
			r.With(authMiddleware.authenticate).Patch("/{projectID}", handlers.projectHandler.updateProject())
			r.With(authMiddleware.authenticate).Delete("/{projectID}", handlers.projectHandler.deleteProject())
			r.With(authMiddleware.identify).Post("/{projectID}/download", handlers.projectHandler.recordDownload())
		})
	})

	// Everything outside /api flows through the offline cache gateway.
	if frontend != nil {
		r.NotFound(frontend.ServeHTTP)
	}
}
