package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadAllContinuesPastFailedRecord(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/records", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "good-1"}, {"id": "bad-1"}], "total": 2, "page": 1, "per_page": 30}`))
	})
	for _, id := range []string{"good-1", "bad-1"} {
		id := id
		mux.HandleFunc("/records/"+id, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": {"id": "` + id + `"}}`))
		})
	}
	mux.HandleFunc("/records/good-1/route", func(w http.ResponseWriter, r *http.Request) {
		w.Write(onePointBlob())
	})
	mux.HandleFunc("/records/bad-1/route", func(w http.ResponseWriter, r *http.Request) {
		w.Write(malformedBlob)
	})

	records, repo := newTestService(t, mux)
	batch := NewBatchService(records, 2)

	outcome, err := batch.DownloadAll(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 2, outcome.Requested)
	assert.Equal(t, 1, outcome.Decoded)
	assert.Equal(t, 0, outcome.Empty)
	assert.Equal(t, []string{"bad-1"}, outcome.Failed)

	good, err := repo.Get(context.Background(), "good-1")
	require.NoError(t, err)
	require.NotNil(t, good)
	assert.NotNil(t, good.GeoJSON)

	bad, err := repo.Get(context.Background(), "bad-1")
	require.NoError(t, err)
	require.NotNil(t, bad)
	assert.Nil(t, bad.GeoJSON, "a malformed blob must not persist a document")
}

func TestDownloadAllFetchFailureReported(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/records", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"id": "gone-1"}], "total": 1, "page": 1, "per_page": 30}`))
	})
	mux.HandleFunc("/records/gone-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	records, _ := newTestService(t, mux)
	batch := NewBatchService(records, 2)

	outcome, err := batch.DownloadAll(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Requested)
	assert.Equal(t, 0, outcome.Decoded)
	assert.Equal(t, []string{"gone-1"}, outcome.Failed)
}
