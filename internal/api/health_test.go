package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrolog/groundstation/internal/models/entities"
	"agrolog/groundstation/internal/portal"
	"agrolog/groundstation/internal/telemetry"
)

func doHealthCheck(t *testing.T, portalClient *portal.Client) entities.HealthCheckResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/healthCheck", nil)
	rec := httptest.NewRecorder()
	HealthCheckHandler(nil, portalClient, time.Now().Add(-time.Hour))(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp entities.HealthCheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheckNoPortal(t *testing.T) {
	resp := doHealthCheck(t, nil)

	// without a database entry only the portal degrades, never the service
	assert.Equal(t, "ok", resp.Status)
	require.Contains(t, resp.Services, "portal")
	assert.Equal(t, "down", resp.Services["portal"].Status)
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealthCheckPortalAuthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"authenticated": true}`))
	}))
	defer srv.Close()
	t.Setenv("PORTAL_BASE_URL", srv.URL)
	t.Setenv("PORTAL_RATE_RPS", "1000")

	resp := doHealthCheck(t, portal.NewClient(nil))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Services["portal"].Status)
}

func TestHealthCheckPortalUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"authenticated": false}`))
	}))
	defer srv.Close()
	t.Setenv("PORTAL_BASE_URL", srv.URL)
	t.Setenv("PORTAL_RATE_RPS", "1000")

	resp := doHealthCheck(t, portal.NewClient(nil))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "degraded", resp.Services["portal"].Status)
}

func TestRespondRecordErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", portal.ErrNotFound, http.StatusNotFound},
		{"malformed blob", telemetry.ErrMalformedWireFormat, http.StatusUnprocessableEntity},
		{"upstream failure", errors.New("boom"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondRecordError(rec, "r-1", tt.err)
			assert.Equal(t, tt.code, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body["status"])
		})
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x", nil)
	assert.Equal(t, 3, queryInt(req, "page", 1))
	assert.Equal(t, 1, queryInt(req, "bad", 1))
	assert.Equal(t, 30, queryInt(req, "missing", 30))
}
