// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adimka/admin-console-beta/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given.
func NewRouter(
	batchHandler *handlers.BatchHandler,
	stateHandler *handlers.StateHandler,
	directoryHandler *handlers.DirectoryHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Transactional configuration batches.
		r.Post("/batches", batchHandler.ApplyBatch)

		// Read-only platform state.
		r.Get("/components/{name}", stateHandler.GetComponent)
		r.Get("/features/{name}", stateHandler.GetFeature)
		r.Get("/settings", stateHandler.GetSettings)
		r.Get("/services", stateHandler.ListManagedServices)
		r.Get("/services/{pid}", stateHandler.GetService)

		// Directory connection tests.
		r.Post("/directory/test/{probe}", directoryHandler.TestDirectory)
	})

	return r
}
