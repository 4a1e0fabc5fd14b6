package routes

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"agrolog/groundstation/internal/api"
	"agrolog/groundstation/internal/db"
	"agrolog/groundstation/internal/logging"
	"agrolog/groundstation/internal/metrics"
	"agrolog/groundstation/internal/middleware"
	"agrolog/groundstation/internal/workers"
)

func RegisterRoutes(upSince time.Time) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))
	if os.Getenv("GS_DEBUG_HTTP") != "" {
		r.Use(middleware.RequestLogging)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	// Initialize handlers with dependencies
	handlers := api.NewHandlers(deps)

	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, deps.Services.Portal, upSince))

	// Start the download worker
	workers.InitWorkers(deps.Services.Records)

	RegisterAPIRoutes(r, handlers, deps)

	return r
}

func apiKeyFromEnv() string {
	return os.Getenv("GS_API_KEY")
}
