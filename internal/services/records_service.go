package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agrolog/groundstation/internal/common"
	"agrolog/groundstation/internal/db/repositories"
	"agrolog/groundstation/internal/geo"
	"agrolog/groundstation/internal/logging"
	"agrolog/groundstation/internal/metrics"
	"agrolog/groundstation/internal/models/dtos"
	"agrolog/groundstation/internal/models/entities"
	gormModels "agrolog/groundstation/internal/models/gorm"
	"agrolog/groundstation/internal/portal"
	"agrolog/groundstation/internal/telemetry"
)

const (
	listCacheTTL   = 5 * time.Minute
	recordCacheTTL = 30 * time.Minute
)

// RecordsService orchestrates the record flow: portal fetch, decode,
// GeoJSON assembly, caching and persistence.
type RecordsService struct {
	Portal   *portal.Client
	Cache    common.CacheInterface
	Repo     *repositories.RecordRepository
	Pipeline *telemetry.Pipeline
	Metrics  *metrics.MetricsRegistry
}

func NewRecordsService(
	portalClient *portal.Client,
	cache common.CacheInterface,
	repo *repositories.RecordRepository,
	pipeline *telemetry.Pipeline,
	metricsReg *metrics.MetricsRegistry,
) *RecordsService {
	return &RecordsService{
		Portal:   portalClient,
		Cache:    cache,
		Repo:     repo,
		Pipeline: pipeline,
		Metrics:  metricsReg,
	}
}

// ListRecords returns one page of the portal record list, cached because a
// page turn costs a full browser navigation behind the sidecar.
func (svc *RecordsService) ListRecords(ctx context.Context, page, perPage int) (*dtos.RecordListResponse, error) {
	cacheKey := fmt.Sprintf("records:list:p%d:s%d", page, perPage)

	if cached, found := svc.cachedJSON(cacheKey, &dtos.RecordListResponse{}); found {
		return cached.(*dtos.RecordListResponse), nil
	}

	list, err := svc.Portal.ListRecords(ctx, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	resp := &dtos.RecordListResponse{
		Items:   list.Items,
		Total:   list.Total,
		Page:    list.Page,
		PerPage: list.PerPage,
	}
	svc.cacheJSON(cacheKey, resp, listCacheTTL)
	return resp, nil
}

// GetRecord returns the typed metadata and the raw property bag for one
// record, persisting the metadata document as a side effect.
func (svc *RecordsService) GetRecord(ctx context.Context, recordID string) (*entities.FlightRecord, map[string]any, error) {
	cacheKey := "records:meta:" + recordID

	type cachedRecord struct {
		Record *entities.FlightRecord `json:"record"`
		Raw    map[string]any         `json:"raw"`
	}
	if cached, found := svc.cachedJSON(cacheKey, &cachedRecord{}); found {
		c := cached.(*cachedRecord)
		return c.Record, c.Raw, nil
	}

	record, raw, err := svc.Portal.GetRecord(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}

	svc.cacheJSON(cacheKey, &cachedRecord{Record: record, Raw: raw}, recordCacheTTL)

	if svc.Repo != nil {
		metaJSON, _ := json.Marshal(raw)
		model := &gormModels.FlightRecord{
			RecordID:     record.ID,
			SerialNumber: record.SerialNumber,
			DroneType:    record.DroneType,
			PilotName:    record.FlyerName,
			Location:     record.Location,
			MetadataJSON: string(metaJSON),
		}
		if err := svc.Repo.SaveMetadata(ctx, model); err != nil {
			logging.Warn("Failed to persist record metadata", "record_id", record.ID, "error", err.Error())
		}
	}

	return record, raw, nil
}

// FlightData fetches and decodes one record's route blob. A structurally
// broken blob fails this call; a blob with zero valid points does not.
func (svc *RecordsService) FlightData(ctx context.Context, recordID string, includePoints bool) (*dtos.FlightDataResponse, error) {
	res, err := svc.decode(ctx, recordID)
	if err != nil {
		return nil, err
	}

	resp := &dtos.FlightDataResponse{
		RecordID:    recordID,
		TotalPoints: len(res.Samples),
		Bounds:      res.Bounds,
		Record:      res.Record,
		Diagnostics: res.Diagnostics,
	}
	if res.Diagnostics.HadTelemetry {
		stats := res.Stats
		resp.Telemetry = &stats
	}
	if includePoints {
		resp.Points = res.Samples
	}
	return resp, nil
}

// GeoJSON fetches, decodes and assembles the full document for one record,
// persisting the result. When the record has no telemetry the document is
// metadata-only and still returned.
func (svc *RecordsService) GeoJSON(ctx context.Context, recordID string) (*dtos.GeoJSONResponse, error) {
	record, raw, err := svc.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	res, err := svc.decode(ctx, recordID)
	if err != nil {
		return nil, err
	}

	doc := svc.assemble(record, raw, res)

	if svc.Repo != nil {
		docJSON, err := json.Marshal(doc)
		if err == nil {
			err = svc.Repo.SaveDecode(ctx, recordID, string(docJSON),
				res.Diagnostics.Accepted, res.Diagnostics.Rejected, res.Diagnostics.HadTelemetry)
		}
		if err != nil {
			logging.Warn("Failed to persist decoded document", "record_id", recordID, "error", err.Error())
		}
	}

	return &dtos.GeoJSONResponse{
		RecordID:    recordID,
		Diagnostics: res.Diagnostics,
		Document:    doc,
	}, nil
}

// StoredGeoJSON serves a previously decoded document from the record store,
// for share links and offline consumers.
func (svc *RecordsService) StoredGeoJSON(ctx context.Context, recordID string) (json.RawMessage, error) {
	if svc.Repo == nil {
		return nil, errors.New("record store not configured")
	}
	model, err := svc.Repo.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if model == nil || model.GeoJSON == nil {
		return nil, portal.ErrNotFound
	}
	return json.RawMessage(*model.GeoJSON), nil
}

func (svc *RecordsService) decode(ctx context.Context, recordID string) (*telemetry.Result, error) {
	blob, err := svc.Portal.GetRouteBlob(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("fetching route blob: %w", err)
	}

	start := time.Now()
	res, err := svc.Pipeline.Decode(blob)
	svc.observeDecode(start, res, err)
	if err != nil {
		return nil, fmt.Errorf("decoding record %s: %w", recordID, err)
	}

	if !res.Diagnostics.HadTelemetry {
		logging.Info("Record decoded with no telemetry",
			"record_id", recordID,
			"rejected_count", res.Diagnostics.Rejected,
		)
	}
	if len(res.Diagnostics.UnknownFields) > 0 {
		logging.Debug("Unrecognized wire fields in route blob",
			"record_id", recordID,
			"fields", res.Diagnostics.UnknownFieldKeys(),
		)
	}
	return res, nil
}

func (svc *RecordsService) assemble(record *entities.FlightRecord, raw map[string]any, res *telemetry.Result) *geo.FeatureCollection {
	meta := make(map[string]any, len(raw)+1)
	for k, v := range raw {
		meta[k] = v
	}
	meta["record_id"] = record.ID
	return geo.Assemble("AG Flight "+record.ID, meta, res)
}

func (svc *RecordsService) observeDecode(start time.Time, res *telemetry.Result, err error) {
	if svc.Metrics == nil {
		return
	}
	svc.Metrics.DecodeDuration.Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		svc.Metrics.RecordsDecodedTotal.WithLabelValues("malformed").Inc()
	case !res.Diagnostics.HadTelemetry:
		svc.Metrics.RecordsDecodedTotal.WithLabelValues("empty").Inc()
	default:
		svc.Metrics.RecordsDecodedTotal.WithLabelValues("ok").Inc()
	}
	if res != nil {
		svc.Metrics.SamplesAcceptedTotal.Add(float64(res.Diagnostics.Accepted))
		svc.Metrics.SamplesRejectedTotal.Add(float64(res.Diagnostics.Rejected))
		svc.Metrics.UnsupportedNodes.Add(float64(res.Diagnostics.UnsupportedNodes))
	}
}

// cacheJSON / cachedJSON round-trip typed values through JSON strings so the
// same code works on the in-memory and Redis cache implementations.
func (svc *RecordsService) cacheJSON(key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	svc.Cache.Set(key, string(data), ttl)
}

func (svc *RecordsService) cachedJSON(key string, target any) (any, bool) {
	val, found := svc.Cache.Get(key)
	if !found {
		svc.countCache(key, false)
		return nil, false
	}
	str, ok := val.(string)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(str), target); err != nil {
		return nil, false
	}
	svc.countCache(key, true)
	return target, true
}

func (svc *RecordsService) countCache(key string, hit bool) {
	if svc.Metrics == nil {
		return
	}
	cacheType := "record"
	if len(key) >= 12 && key[:12] == "records:list" {
		cacheType = "list"
	}
	if hit {
		svc.Metrics.CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		svc.Metrics.CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}
