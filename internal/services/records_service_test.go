package services

import (
	"context"
	"encoding/binary"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agrolog/groundstation/internal/common"
	"agrolog/groundstation/internal/db/repositories"
	gormModels "agrolog/groundstation/internal/models/gorm"
	"agrolog/groundstation/internal/portal"
	"agrolog/groundstation/internal/telemetry"
)

// minimal wire encoders for building route blobs in tests

func appendWireVarint(b []byte, v uint64) []byte {
	return binary.AppendUvarint(b, v)
}

func appendWireDouble(b []byte, field uint32, v float64) []byte {
	b = appendWireVarint(b, uint64(field)<<3|1)
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(v))
}

func appendWireBytes(b []byte, field uint32, payload []byte) []byte {
	b = appendWireVarint(b, uint64(field)<<3|2)
	b = appendWireVarint(b, uint64(len(payload)))
	return append(b, payload...)
}

// onePointBlob nests a single lat/lon point three levels down.
func onePointBlob() []byte {
	var p []byte
	p = appendWireDouble(p, 1, -25.094082)
	p = appendWireDouble(p, 2, -48.903529)
	inner := appendWireBytes(nil, 4, p)
	mid := appendWireBytes(nil, 2, inner)
	return appendWireBytes(nil, 1, mid)
}

var malformedBlob = []byte{0x0A, 0xFF} // length-delimited tag, truncated length

func newTestService(t *testing.T, handler http.Handler) (*RecordsService, *repositories.RecordRepository) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("PORTAL_BASE_URL", srv.URL)
	t.Setenv("PORTAL_RATE_RPS", "1000")

	orm, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, orm.AutoMigrate(&gormModels.FlightRecord{}))
	repo := repositories.NewRecordRepository(orm)

	svc := NewRecordsService(
		portal.NewClient(nil),
		common.NewCacheService(60, 120),
		repo,
		telemetry.NewPipeline(nil),
		nil,
	)
	return svc, repo
}

func recordMux(recordID string, blob []byte) (*http.ServeMux, *int32) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/records/"+recordID, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"data": {"id": "` + recordID + `", "serial_number": "SN1", "flyer_name": "operator", "location": "North Field"}}`))
	})
	if blob != nil {
		mux.HandleFunc("/records/"+recordID+"/route", func(w http.ResponseWriter, r *http.Request) {
			w.Write(blob)
		})
	}
	return mux, &hits
}

func TestListRecordsCachesPage(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/records", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`{"items": [{"id": "r-1"}], "total": 1, "page": 1, "per_page": 30}`))
	})
	svc, _ := newTestService(t, mux)

	first, err := svc.ListRecords(context.Background(), 1, 30)
	require.NoError(t, err)
	second, err := svc.ListRecords(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "second page read must come from cache")
}

func TestGetRecordCacheHitSkipsPortal(t *testing.T) {
	mux, hits := recordMux("r-1", nil)
	svc, _ := newTestService(t, mux)

	record, _, err := svc.GetRecord(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, "r-1", record.ID)

	again, raw, err := svc.GetRecord(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, record.SerialNumber, again.SerialNumber)
	assert.Equal(t, "North Field", raw["location"])
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestGetRecordPersistsMetadata(t *testing.T) {
	mux, _ := recordMux("r-1", nil)
	svc, repo := newTestService(t, mux)

	_, _, err := svc.GetRecord(context.Background(), "r-1")
	require.NoError(t, err)

	model, err := repo.Get(context.Background(), "r-1")
	require.NoError(t, err)
	require.NotNil(t, model)
	require.NotNil(t, model.PilotName)
	assert.Equal(t, "operator", *model.PilotName)
	assert.Contains(t, model.MetadataJSON, "SN1")
	assert.Nil(t, model.GeoJSON)
}

func TestGeoJSONDecodesAndPersists(t *testing.T) {
	mux, _ := recordMux("r-2", onePointBlob())
	svc, repo := newTestService(t, mux)

	resp, err := svc.GeoJSON(context.Background(), "r-2")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Diagnostics.Accepted)
	assert.True(t, resp.Diagnostics.HadTelemetry)
	// flight path plus one point feature
	require.Len(t, resp.Document.Features, 2)
	assert.Equal(t, "r-2", resp.Document.Properties["record_id"])

	model, err := repo.Get(context.Background(), "r-2")
	require.NoError(t, err)
	require.NotNil(t, model)
	require.NotNil(t, model.GeoJSON)
	assert.Contains(t, *model.GeoJSON, "LineString")
	assert.Equal(t, 1, model.AcceptedCount)
	assert.True(t, model.HadTelemetry)
	assert.NotNil(t, model.DecodedAt)
}

func TestGeoJSONEmptyBlobMetadataOnly(t *testing.T) {
	mux, _ := recordMux("r-3", []byte{})
	svc, repo := newTestService(t, mux)

	resp, err := svc.GeoJSON(context.Background(), "r-3")
	require.NoError(t, err)
	assert.False(t, resp.Diagnostics.HadTelemetry)
	assert.Empty(t, resp.Document.Features)
	assert.Equal(t, 0, resp.Document.Properties["total_points"])

	model, err := repo.Get(context.Background(), "r-3")
	require.NoError(t, err)
	require.NotNil(t, model)
	require.NotNil(t, model.GeoJSON, "metadata-only documents still persist")
	assert.False(t, model.HadTelemetry)
}

func TestGeoJSONMalformedBlobNotPersisted(t *testing.T) {
	mux, _ := recordMux("r-4", malformedBlob)
	svc, repo := newTestService(t, mux)

	_, err := svc.GeoJSON(context.Background(), "r-4")
	require.ErrorIs(t, err, telemetry.ErrMalformedWireFormat)

	// metadata row exists, but no partial document was written
	model, repoErr := repo.Get(context.Background(), "r-4")
	require.NoError(t, repoErr)
	require.NotNil(t, model)
	assert.Nil(t, model.GeoJSON)
	assert.Nil(t, model.DecodedAt)
}

func TestStoredGeoJSONMissing(t *testing.T) {
	svc, _ := newTestService(t, http.NewServeMux())

	_, err := svc.StoredGeoJSON(context.Background(), "never-decoded")
	require.ErrorIs(t, err, portal.ErrNotFound)
}
