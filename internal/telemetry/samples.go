package telemetry

import "math"

// Sample is one accepted per-point telemetry record. Optional attributes are
// pointers: a nil field was absent from the blob, which is not the same as a
// genuine zero reading (a stationary drone has true zero velocity).
type Sample struct {
	Index     int      `json:"index"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Heading   *float64 `json:"heading,omitempty"`
	VelocityX *float32 `json:"velocity_x,omitempty"`
	VelocityY *float32 `json:"velocity_y,omitempty"`
	SprayRate *float32 `json:"spray_rate,omitempty"`

	// SpeedMS is derived from the velocity components, never decoded.
	SpeedMS *float32 `json:"speed_ms,omitempty"`
}

// BoundingBox is an optional geographic acceptance window for filtering
// out-of-region noise points. It is caller policy, not a constant: the blobs
// occasionally carry (0,0) and other junk fixes far from the work area.
type BoundingBox struct {
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat > b.LatMin && lat < b.LatMax && lon > b.LonMin && lon < b.LonMax
}

// Per-field plausibility windows, established against real blobs. A value
// outside its window unsets the field; it never rejects the sample.
const (
	maxPlausibleVelocity = 30.0 // m/s
	maxPlausibleSpray    = 50.0 // L/min
)

// synchronize zips the ordered per-attribute series into samples and applies
// the acceptance filter. The latitude/longitude series drive the point
// count; shorter sibling series simply leave trailing attributes unset.
// Order is decode order and is never resorted.
func synchronize(s *fieldSeries, region *BoundingBox) (accepted []Sample, rejected int) {
	lats := s.series(AttrLatitude)
	lons := s.series(AttrLongitude)
	headings := s.series(AttrHeading)
	velX := s.series(AttrVelocityX)
	velY := s.series(AttrVelocityY)
	spray := s.series(AttrSprayRate)

	n := len(lats)
	if len(lons) < n {
		n = len(lons)
	}

	for i := 0; i < n; i++ {
		lat, lon := lats[i], lons[i]
		if !acceptCoordinates(lat, lon, region) {
			rejected++
			continue
		}

		sample := Sample{
			Index:     len(accepted),
			Latitude:  lat,
			Longitude: lon,
		}

		if i < len(headings) && math.Abs(headings[i]) <= 180 {
			h := headings[i]
			sample.Heading = &h
		}
		if i < len(velX) && math.Abs(velX[i]) < maxPlausibleVelocity {
			vx := float32(velX[i])
			sample.VelocityX = &vx
		}
		if i < len(velY) && math.Abs(velY[i]) < maxPlausibleVelocity {
			vy := float32(velY[i])
			sample.VelocityY = &vy
		}
		if i < len(spray) && spray[i] > 0 && spray[i] < maxPlausibleSpray {
			sp := float32(spray[i])
			sample.SprayRate = &sp
		}

		if sample.VelocityX != nil && sample.VelocityY != nil {
			speed := float32(math.Sqrt(
				float64(*sample.VelocityX)*float64(*sample.VelocityX) +
					float64(*sample.VelocityY)*float64(*sample.VelocityY)))
			sample.SpeedMS = &speed
		}

		accepted = append(accepted, sample)
	}
	return accepted, rejected
}

func acceptCoordinates(lat, lon float64, region *BoundingBox) bool {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return false
	}
	if lat == 0 && lon == 0 {
		return false
	}
	if region != nil && !region.Contains(lat, lon) {
		return false
	}
	return true
}
