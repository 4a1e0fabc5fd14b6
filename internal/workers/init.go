package workers

import (
	"agrolog/groundstation/internal/services"
)

// InitWorkers starts the background workers.
func InitWorkers(records *services.RecordsService) {
	// One worker only: the retrieval layer is one browser session.
	go DownloadWorker(records)
}
