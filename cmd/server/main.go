package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agrolog/groundstation/internal/db"
	"agrolog/groundstation/internal/logging"
	"agrolog/groundstation/internal/routes"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
	}

	if err := logging.Init(appEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Groundstation starting up",
		"environment", appEnv,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	// sqlx connection only applies on Postgres; the sqlite default runs
	// entirely through the ORM.
	if os.Getenv("PG_HOST") != "" {
		if err := db.InitPostgres(); err != nil {
			logging.Error("Failed to connect to Postgres (sqlx)", "error", err.Error())
			log.Fatalf("Failed to connect to Postgres (sqlx): %v", err)
		}
		logging.Info("Connected to Postgres (sqlx)")
	}

	// Record store via GORM (sqlite by default, Postgres when PG_HOST set)
	if _, err := db.InitORM(); err != nil {
		logging.Error("Failed to open record store", "error", err.Error())
		log.Fatalf("Failed to open record store: %v", err)
	}
	logging.Info("Record store ready")

	upSince := time.Now()

	// Initialize router with Chi
	router := routes.RegisterRoutes(upSince)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router) // Mount Chi router at root
	logging.Info("Prometheus metrics endpoint registered at /metrics")

	port := os.Getenv("GS_PORT")
	if port == "" {
		port = "8080"
	}

	logging.Info("Server starting",
		"port", port,
		"environment", appEnv,
	)

	log.Fatal(http.ListenAndServe(":"+port, mux))
}
