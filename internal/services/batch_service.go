package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agrolog/groundstation/internal/logging"
	"agrolog/groundstation/internal/telemetry"
)

// BatchOutcome summarizes one download-all run.
type BatchOutcome struct {
	Requested int      `json:"requested"`
	Decoded   int      `json:"decoded"`
	Empty     int      `json:"empty"`
	Failed    []string `json:"failed,omitempty"`
	Elapsed   string   `json:"elapsed"`
}

// BatchService walks the full record list and decodes every route blob.
// Retrieval is strictly sequential (the portal session cannot run two
// navigations at once); decoding fans out across CPUs once blobs are local.
type BatchService struct {
	Records     *RecordsService
	Parallelism int
}

func NewBatchService(records *RecordsService, parallelism int) *BatchService {
	if parallelism < 1 {
		parallelism = 4
	}
	return &BatchService{Records: records, Parallelism: parallelism}
}

// DownloadAll fetches every record page by page, then decodes the collected
// blobs in parallel and persists each result. A failed record is reported
// and skipped; it never aborts the batch.
func (svc *BatchService) DownloadAll(ctx context.Context, perPage int) (*BatchOutcome, error) {
	start := time.Now()
	outcome := &BatchOutcome{}

	type fetched struct {
		id   string
		raw  map[string]any
		blob []byte
	}
	var all []fetched

	for page := 1; ; page++ {
		list, err := svc.Records.ListRecords(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		if len(list.Items) == 0 {
			break
		}

		for _, item := range list.Items {
			record, raw, err := svc.Records.GetRecord(ctx, item.ID)
			if err != nil {
				logging.Warn("Batch: metadata fetch failed", "record_id", item.ID, "error", err.Error())
				outcome.Failed = append(outcome.Failed, item.ID)
				continue
			}
			blob, err := svc.Records.Portal.GetRouteBlob(ctx, record.ID)
			if err != nil {
				logging.Warn("Batch: blob fetch failed", "record_id", record.ID, "error", err.Error())
				outcome.Failed = append(outcome.Failed, record.ID)
				continue
			}
			all = append(all, fetched{id: record.ID, raw: raw, blob: blob})
		}

		if page*perPage >= list.Total {
			break
		}
	}
	outcome.Requested = len(all) + len(outcome.Failed)

	items := make([]telemetry.BatchItem, len(all))
	for i, f := range all {
		items[i] = telemetry.BatchItem{ID: f.id, Blob: f.blob}
	}
	items = svc.Records.Pipeline.DecodeAll(ctx, items, svc.Parallelism)

	for i, item := range items {
		if item.Err != nil {
			// One corrupt blob must not prevent the rest from processing.
			if errors.Is(item.Err, telemetry.ErrMalformedWireFormat) {
				logging.Warn("Batch: malformed route blob", "record_id", item.ID)
			} else {
				logging.Warn("Batch: decode failed", "record_id", item.ID, "error", item.Err.Error())
			}
			outcome.Failed = append(outcome.Failed, item.ID)
			continue
		}
		if !item.Result.Diagnostics.HadTelemetry {
			outcome.Empty++
		}
		outcome.Decoded++

		svc.persist(ctx, all[i].id, all[i].raw, item.Result)
	}

	outcome.Elapsed = time.Since(start).Round(time.Millisecond).String()
	logging.Info("Batch download finished",
		"requested", outcome.Requested,
		"decoded", outcome.Decoded,
		"empty", outcome.Empty,
		"failed", len(outcome.Failed),
		"elapsed", outcome.Elapsed,
	)
	return outcome, nil
}

func (svc *BatchService) persist(ctx context.Context, recordID string, raw map[string]any, res *telemetry.Result) {
	if svc.Records.Repo == nil {
		return
	}
	record, _, err := svc.Records.GetRecord(ctx, recordID)
	if err != nil {
		return
	}
	doc := svc.Records.assemble(record, raw, res)
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := svc.Records.Repo.SaveDecode(ctx, recordID, string(docJSON),
		res.Diagnostics.Accepted, res.Diagnostics.Rejected, res.Diagnostics.HadTelemetry); err != nil {
		logging.Warn("Batch: persist failed", "record_id", recordID, "error", err.Error())
	}
}
