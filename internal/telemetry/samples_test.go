package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesWith(values map[Attr][]float64) *fieldSeries {
	s := newFieldSeries()
	for a, vs := range values {
		s.values[a] = vs
	}
	return s
}

func TestSynchronizeShorterSiblingSeries(t *testing.T) {
	s := seriesWith(map[Attr][]float64{
		AttrLatitude:  {-25.1, -25.2, -25.3},
		AttrLongitude: {-48.1, -48.2, -48.3},
		AttrHeading:   {90}, // only the first point has one
	})

	accepted, rejected := synchronize(s, nil)
	require.Len(t, accepted, 3)
	assert.Equal(t, 0, rejected)
	assert.NotNil(t, accepted[0].Heading)
	assert.Nil(t, accepted[1].Heading)
	assert.Nil(t, accepted[2].Heading)
}

func TestSynchronizeCoordinateCountDrivenByShorterAxis(t *testing.T) {
	s := seriesWith(map[Attr][]float64{
		AttrLatitude:  {-25.1, -25.2, -25.3},
		AttrLongitude: {-48.1, -48.2},
	})

	accepted, _ := synchronize(s, nil)
	assert.Len(t, accepted, 2)
}

func TestSynchronizeImplausibleValuesUnsetField(t *testing.T) {
	s := seriesWith(map[Attr][]float64{
		AttrLatitude:  {-25.1},
		AttrLongitude: {-48.1},
		AttrHeading:   {250},  // |heading| > 180
		AttrVelocityX: {1000}, // > 30 m/s
		AttrVelocityY: {1},
		AttrSprayRate: {0}, // spray must be strictly positive
	})

	accepted, rejected := synchronize(s, nil)
	require.Len(t, accepted, 1)
	assert.Equal(t, 0, rejected)

	sample := accepted[0]
	assert.Nil(t, sample.Heading)
	assert.Nil(t, sample.VelocityX)
	assert.NotNil(t, sample.VelocityY)
	assert.Nil(t, sample.SprayRate)
	// speed needs both components
	assert.Nil(t, sample.SpeedMS)
}

func TestSynchronizeIndexCountsAcceptedOnly(t *testing.T) {
	s := seriesWith(map[Attr][]float64{
		AttrLatitude:  {0, -25.2, 95, -25.3},
		AttrLongitude: {0, -48.2, -48.0, -48.3},
	})

	accepted, rejected := synchronize(s, nil)
	require.Len(t, accepted, 2)
	assert.Equal(t, 2, rejected)
	assert.Equal(t, 0, accepted[0].Index)
	assert.Equal(t, 1, accepted[1].Index)
}

func TestAcceptCoordinates(t *testing.T) {
	region := &BoundingBox{LatMin: -30, LatMax: -20, LonMin: -55, LonMax: -45}

	tests := []struct {
		name   string
		lat    float64
		lon    float64
		region *BoundingBox
		want   bool
	}{
		{"valid fix", -25.0, -48.9, nil, true},
		{"zero island", 0, 0, nil, false},
		{"latitude out of range", 95, -48.9, nil, false},
		{"longitude out of range", -25.0, 181, nil, false},
		{"inside region", -25.0, -48.9, region, true},
		{"outside region", 40.0, -74.0, region, false},
		{"region boundary excluded", -30.0, -48.9, region, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, acceptCoordinates(tt.lat, tt.lon, tt.region))
		})
	}
}
