package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrF64(v float64) *float64 { return &v }
func ptrF32(v float32) *float32 { return &v }

func TestAggregateEmpty(t *testing.T) {
	stats := aggregate(nil)
	assert.Nil(t, stats.HeadingAvg)
	assert.Nil(t, stats.SpeedAvgMS)
	assert.Nil(t, stats.SprayRateAvg)
}

func TestAggregateSkipsAbsentAttributes(t *testing.T) {
	samples := []Sample{
		{Latitude: -25.1, Longitude: -48.1, Heading: ptrF64(100)},
		{Latitude: -25.2, Longitude: -48.2}, // no heading
		{Latitude: -25.3, Longitude: -48.3, Heading: ptrF64(140)},
	}

	stats := aggregate(samples)
	require.NotNil(t, stats.HeadingAvg)
	assert.InDelta(t, 120.0, *stats.HeadingAvg, 1e-9)
	assert.InDelta(t, 100.0, *stats.HeadingMin, 1e-9)
	assert.InDelta(t, 140.0, *stats.HeadingMax, 1e-9)
	assert.Nil(t, stats.SpeedAvgMS)
}

func TestAggregateSpeedAndSpray(t *testing.T) {
	samples := []Sample{
		{SpeedMS: ptrF32(2), SprayRate: ptrF32(1.5)},
		{SpeedMS: ptrF32(4), SprayRate: ptrF32(2.5)},
	}

	stats := aggregate(samples)
	require.NotNil(t, stats.SpeedAvgMS)
	assert.InDelta(t, 3.0, *stats.SpeedAvgMS, 1e-6)
	assert.InDelta(t, 4.0, *stats.SpeedMaxMS, 1e-6)
	require.NotNil(t, stats.SprayRateAvg)
	assert.InDelta(t, 2.0, *stats.SprayRateAvg, 1e-6)
	assert.InDelta(t, 1.5, *stats.SprayRateMin, 1e-6)
	assert.InDelta(t, 2.5, *stats.SprayRateMax, 1e-6)
}

func TestComputeBounds(t *testing.T) {
	assert.Nil(t, computeBounds(nil))

	samples := []Sample{
		{Latitude: -25.1, Longitude: -48.3},
		{Latitude: -25.3, Longitude: -48.1},
		{Latitude: -25.2, Longitude: -48.2},
	}
	b := computeBounds(samples)
	require.NotNil(t, b)
	assert.InDelta(t, -25.3, b.LatMin, 1e-9)
	assert.InDelta(t, -25.1, b.LatMax, 1e-9)
	assert.InDelta(t, -48.3, b.LonMin, 1e-9)
	assert.InDelta(t, -48.1, b.LonMax, 1e-9)
	assert.InDelta(t, -25.2, b.CenterLat, 1e-9)
	assert.InDelta(t, -48.2, b.CenterLon, 1e-9)
}
