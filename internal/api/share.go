package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agrolog/groundstation/internal/models/dtos"
)

const shareTokenTTL = 15 * time.Minute

// ShareRecord handles POST /api/v1/records/{recordID}/share. It mints a
// presigned single-use link to the stored GeoJSON document.
func (h *Handlers) ShareRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")

		// The link serves the stored document; make sure one exists.
		if _, err := h.deps.Services.Records.StoredGeoJSON(r.Context(), recordID); err != nil {
			respondRecordError(w, recordID, err)
			return
		}

		token, err := h.deps.Services.ShareSigner.Sign(recordID, shareTokenTTL)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to sign share link")
			return
		}

		resp := &dtos.ShareLinkResponse{
			RecordID:  recordID,
			Token:     token,
			URL:       "/public/geojson?token=" + token,
			ExpiresAt: time.Now().Add(shareTokenTTL).UTC().Format(time.RFC3339),
		}
		respondWithSuccess(w, http.StatusOK, resp)
	}
}

// PublicGeoJSON handles GET /public/geojson?token=. No API key: the token is
// the credential, and it is consumed on first use.
func (h *Handlers) PublicGeoJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			respondWithError(w, http.StatusBadRequest, "Missing token")
			return
		}

		tok, err := h.deps.Services.ShareSigner.Validate(tokenString)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid share link")
			return
		}

		// Consume before serving so a second request racing this one loses;
		// a failed lookup hands the token back.
		if err := h.deps.Services.ShareSigner.Consume(tok); err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid share link")
			return
		}

		doc, err := h.deps.Services.Records.StoredGeoJSON(r.Context(), tok.RecordID)
		if err != nil {
			h.deps.Services.ShareSigner.Release(tok)
			respondRecordError(w, tok.RecordID, err)
			return
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.Header().Set("Content-Disposition", `attachment; filename="flight_`+tok.RecordID+`.geojson"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
	}
}
