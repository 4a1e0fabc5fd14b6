package routes

import (
	"github.com/go-chi/chi/v5"

	"agrolog/groundstation/internal/api"
	"agrolog/groundstation/internal/middleware"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
// This keeps API route registration separate from the main router setup
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {

	// Public routes: share links are their own credential
	r.Group(func(public chi.Router) {
		public.Use(middleware.RateLimitMiddleware)
		public.Get("/public/geojson", handlers.PublicGeoJSON())
	})

	// API v1 routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.RateLimitMiddleware)
		v1.Use(middleware.AuthMiddleware(apiKeyFromEnv(), deps.Repo.Keys)) // global: all routes must carry an API key

		v1.Get("/records", handlers.ListRecords())
		v1.Get("/records/{recordID}", handlers.GetRecord())
		v1.Get("/records/{recordID}/flight-data", handlers.GetFlightData())
		v1.Get("/records/{recordID}/geojson", handlers.GetGeoJSON())
		v1.Post("/records/{recordID}/download", handlers.DownloadRecord())
		v1.Post("/records/{recordID}/share", handlers.ShareRecord())
		v1.Post("/records/download-all", handlers.DownloadAll())
	})
}
