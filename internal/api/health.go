package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"agrolog/groundstation/internal/models/entities"
	"agrolog/groundstation/internal/portal"
)

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(db *sqlx.DB, portalClient *portal.Client, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		services := make(map[string]entities.ServiceStatus)

		if db != nil {
			pgstatus := "ok"
			pgDetails := "Postgres Connected"
			if err := db.Ping(); err != nil {
				pgstatus = "down"
				pgDetails = err.Error()
			}
			services["postgres"] = entities.ServiceStatus{
				Status:  pgstatus,
				Details: pgDetails,
			}
		}

		portalStatus := "down"
		portalDetails := "Portal session unavailable"
		if portalClient != nil {
			status, err := portalClient.SessionStatus(r.Context())
			switch {
			case err != nil:
				portalDetails = err.Error()
			case status.Authenticated:
				portalStatus = "ok"
				portalDetails = "Portal session authenticated"
			default:
				portalStatus = "degraded"
				portalDetails = "Portal reachable but not authenticated"
			}
		}
		services["portal"] = entities.ServiceStatus{
			Status:  portalStatus,
			Details: portalDetails,
		}

		// The portal being down degrades retrieval but stored records still
		// serve, so only the database takes the whole service down.
		overallStatus := "ok"
		if s, ok := services["postgres"]; ok && s.Status != "ok" {
			overallStatus = "down"
		}

		now := time.Now()
		uptime := now.Sub(upSince).Round(time.Second).String()

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   uptime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
