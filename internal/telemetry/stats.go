package telemetry

// Stats are min/max/average reductions over the accepted samples. All fields
// are absent (nil) when no sample carried the underlying attribute;
// callers distinguish "no telemetry" via the sample count, not via stats.
type Stats struct {
	HeadingAvg   *float64 `json:"heading_avg,omitempty"`
	HeadingMin   *float64 `json:"heading_min,omitempty"`
	HeadingMax   *float64 `json:"heading_max,omitempty"`
	SpeedAvgMS   *float64 `json:"speed_avg_ms,omitempty"`
	SpeedMaxMS   *float64 `json:"speed_max_ms,omitempty"`
	SprayRateAvg *float64 `json:"spray_rate_avg,omitempty"`
	SprayRateMin *float64 `json:"spray_rate_min,omitempty"`
	SprayRateMax *float64 `json:"spray_rate_max,omitempty"`
}

// Bounds is the geographic envelope of the accepted samples.
type Bounds struct {
	LatMin    float64 `json:"lat_min"`
	LatMax    float64 `json:"lat_max"`
	LonMin    float64 `json:"lon_min"`
	LonMax    float64 `json:"lon_max"`
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`
}

// aggregate is a pure reduction; an empty sample sequence yields zero-value
// stats, never an error.
func aggregate(samples []Sample) Stats {
	var stats Stats

	var headings, speeds, sprays []float64
	for _, s := range samples {
		if s.Heading != nil {
			headings = append(headings, *s.Heading)
		}
		if s.SpeedMS != nil {
			speeds = append(speeds, float64(*s.SpeedMS))
		}
		if s.SprayRate != nil {
			sprays = append(sprays, float64(*s.SprayRate))
		}
	}

	if len(headings) > 0 {
		avg, min, max := reduce(headings)
		stats.HeadingAvg, stats.HeadingMin, stats.HeadingMax = &avg, &min, &max
	}
	if len(speeds) > 0 {
		avg, _, max := reduce(speeds)
		stats.SpeedAvgMS, stats.SpeedMaxMS = &avg, &max
	}
	if len(sprays) > 0 {
		avg, min, max := reduce(sprays)
		stats.SprayRateAvg, stats.SprayRateMin, stats.SprayRateMax = &avg, &min, &max
	}
	return stats
}

func reduce(vs []float64) (avg, min, max float64) {
	min, max = vs[0], vs[0]
	var sum float64
	for _, v := range vs {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return sum / float64(len(vs)), min, max
}

func computeBounds(samples []Sample) *Bounds {
	if len(samples) == 0 {
		return nil
	}
	b := &Bounds{
		LatMin: samples[0].Latitude, LatMax: samples[0].Latitude,
		LonMin: samples[0].Longitude, LonMax: samples[0].Longitude,
	}
	for _, s := range samples[1:] {
		if s.Latitude < b.LatMin {
			b.LatMin = s.Latitude
		}
		if s.Latitude > b.LatMax {
			b.LatMax = s.Latitude
		}
		if s.Longitude < b.LonMin {
			b.LonMin = s.Longitude
		}
		if s.Longitude > b.LonMax {
			b.LonMax = s.Longitude
		}
	}
	b.CenterLat = (b.LatMin + b.LatMax) / 2
	b.CenterLon = (b.LonMin + b.LonMax) / 2
	return b
}
