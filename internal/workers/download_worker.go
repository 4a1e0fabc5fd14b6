package workers

import (
	"context"
	"time"

	"agrolog/groundstation/internal/logging"
	"agrolog/groundstation/internal/services"
)

// DownloadRequest asks the worker to fetch and decode one record.
type DownloadRequest struct {
	RecordID  string
	RequestID string
}

// DownloadQueue feeds the single download worker. The portal session behind
// the sidecar cannot run two navigations at once, so exactly one goroutine
// drains this queue; back-pressure is the buffer.
var DownloadQueue = make(chan DownloadRequest, 100)

// Enqueue adds a record to the download queue without blocking. Returns
// false when the queue is full.
func Enqueue(req DownloadRequest) bool {
	select {
	case DownloadQueue <- req:
		return true
	default:
		return false
	}
}

// DownloadWorker drains the queue, running the full fetch-decode-persist
// flow per record. Per-record failures are logged and dropped; the worker
// never stops on them.
func DownloadWorker(records *services.RecordsService) {
	logging.Info("Download worker started", "queue_capacity", cap(DownloadQueue))

	for req := range DownloadQueue {
		log := logging.WithRecord(req.RequestID, req.RecordID)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		start := time.Now()

		resp, err := records.GeoJSON(ctx, req.RecordID)
		cancel()

		if err != nil {
			log.Warnw("Download failed", "error", err.Error())
			continue
		}

		log.Infow("Record downloaded and decoded",
			"accepted_count", resp.Diagnostics.Accepted,
			"rejected_count", resp.Diagnostics.Rejected,
			"had_telemetry", resp.Diagnostics.HadTelemetry,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
