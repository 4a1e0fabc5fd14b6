package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrolog/groundstation/internal/logging"
	"agrolog/groundstation/internal/middleware"
	"agrolog/groundstation/internal/models/dtos"
	"agrolog/groundstation/internal/workers"
)

// DownloadRecord handles POST /api/v1/records/{recordID}/download by
// queueing the record for the download worker.
func (h *Handlers) DownloadRecord() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recordID := chi.URLParam(r, "recordID")
		requestID, _ := r.Context().Value(middleware.RequestIDKey).(string)

		queued := workers.Enqueue(workers.DownloadRequest{
			RecordID:  recordID,
			RequestID: requestID,
		})

		resp := &dtos.DownloadResponse{
			RecordID: recordID,
			Queued:   queued,
		}
		if !queued {
			resp.Message = "Download queue is full, retry later"
			respondWithSuccess(w, http.StatusServiceUnavailable, resp)
			return
		}
		respondWithSuccess(w, http.StatusAccepted, resp)
	}
}

// DownloadAll handles POST /api/v1/records/download-all. The batch runs in
// the background; retrieval alone can take minutes per page.
func (h *Handlers) DownloadAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		perPage := queryInt(r, "per_page", 30)
		if perPage < 1 || perPage > 100 {
			perPage = 30
		}

		go func() {
			if _, err := h.deps.Services.Batch.DownloadAll(context.Background(), perPage); err != nil {
				logging.Error("Batch download aborted", "error", err.Error())
			}
		}()

		resp := &dtos.DownloadResponse{Queued: true, Message: "Batch download started"}
		respondWithSuccess(w, http.StatusAccepted, resp)
	}
}
