package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agrolog/groundstation/internal/models/dtos"
	"agrolog/groundstation/internal/portal"
	"agrolog/groundstation/internal/telemetry"
)

// ListRecords handles GET /api/v1/records
func (h *Handlers) ListRecords() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		if page < 1 {
			page = 1
		}
		perPage := queryInt(r, "per_page", 30)
		if perPage < 1 || perPage > 100 {
			perPage = 30
		}

		list, err := h.deps.Services.Records.ListRecords(r.Context(), page, perPage)
		if err != nil {
			respondWithError(w, http.StatusBadGateway, "Failed to list records: "+err.Error())
			return
		}

		respondWithSuccess(w, http.StatusOK, list)
	}
}

// GetRecord handles GET /api/v1/records/{recordID}
func (h *Handlers) GetRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")

		record, _, err := h.deps.Services.Records.GetRecord(r.Context(), recordID)
		if errors.Is(err, portal.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Record "+recordID+" not found")
			return
		}
		if err != nil {
			respondWithError(w, http.StatusBadGateway, "Failed to fetch record: "+err.Error())
			return
		}

		respondWithSuccess(w, http.StatusOK, dtos.NewRecordDetailResponse(record))
	}
}

// GetFlightData handles GET /api/v1/records/{recordID}/flight-data
func (h *Handlers) GetFlightData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")

		includePoints := true
		if v := r.URL.Query().Get("include_points"); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "include_points must be a boolean")
				return
			}
			includePoints = parsed
		}

		data, err := h.deps.Services.Records.FlightData(r.Context(), recordID, includePoints)
		if err != nil {
			respondRecordError(w, recordID, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, data)
	}
}

// GetGeoJSON handles GET /api/v1/records/{recordID}/geojson
func (h *Handlers) GetGeoJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")

		resp, err := h.deps.Services.Records.GeoJSON(r.Context(), recordID)
		if err != nil {
			respondRecordError(w, recordID, err)
			return
		}

		respondWithSuccess(w, http.StatusOK, resp)
	}
}

// respondRecordError maps pipeline errors onto status codes. A malformed
// blob means telemetry is unavailable for this record, not that the request
// was bad; metadata remains reachable through the record endpoint.
func respondRecordError(w http.ResponseWriter, recordID string, err error) {
	switch {
	case errors.Is(err, portal.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Record "+recordID+" not found")
	case errors.Is(err, telemetry.ErrMalformedWireFormat):
		respondWithError(w, http.StatusUnprocessableEntity, "Telemetry unavailable: route blob is malformed")
	default:
		respondWithError(w, http.StatusBadGateway, "Failed to process record: "+err.Error())
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}
