package geo

import (
	"agrolog/groundstation/internal/telemetry"
)

// Assemble builds the GeoJSON document for one flight record: a single
// flight-path LineString over the accepted samples in decode order, followed
// by one Point feature per sample. Caller metadata is copied into the
// document properties, never mutated, with the computed gps/telemetry
// summaries merged on top. Output is deterministic for identical input.
func Assemble(name string, metadata map[string]any, res *telemetry.Result) *FeatureCollection {
	props := make(map[string]any, len(metadata)+4)
	for k, v := range metadata {
		props[k] = v
	}
	props["total_points"] = len(res.Samples)

	if res.Bounds != nil {
		props["gps"] = map[string]any{
			"lat_min":    res.Bounds.LatMin,
			"lat_max":    res.Bounds.LatMax,
			"lon_min":    res.Bounds.LonMin,
			"lon_max":    res.Bounds.LonMax,
			"center_lat": res.Bounds.CenterLat,
			"center_lon": res.Bounds.CenterLon,
		}
	}

	telemetryProps := map[string]any{}
	if res.Stats.HeadingAvg != nil {
		telemetryProps["heading_avg"] = *res.Stats.HeadingAvg
		telemetryProps["heading_min"] = *res.Stats.HeadingMin
		telemetryProps["heading_max"] = *res.Stats.HeadingMax
	}
	if res.Stats.SpeedAvgMS != nil {
		telemetryProps["speed_avg_ms"] = *res.Stats.SpeedAvgMS
		telemetryProps["speed_max_ms"] = *res.Stats.SpeedMaxMS
	}
	if res.Stats.SprayRateAvg != nil {
		telemetryProps["spray_rate_avg"] = *res.Stats.SprayRateAvg
	}
	if res.Record.BatteryPct != nil {
		telemetryProps["battery_pct"] = *res.Record.BatteryPct
	}
	if res.Record.TaskSpeed != nil {
		telemetryProps["task_speed"] = *res.Record.TaskSpeed
	}
	if res.Record.RouteSpacing != nil {
		telemetryProps["route_spacing"] = *res.Record.RouteSpacing
	}
	if len(telemetryProps) > 0 {
		props["telemetry"] = telemetryProps
	}

	doc := &FeatureCollection{
		Type:       "FeatureCollection",
		Name:       name,
		Properties: props,
	}

	if len(res.Samples) == 0 {
		// Metadata-only document: a record may legitimately carry no
		// telemetry.
		doc.Features = []Feature{}
		return doc
	}

	coords := make([][]float64, len(res.Samples))
	for i, s := range res.Samples {
		coords[i] = []float64{s.Longitude, s.Latitude}
	}
	doc.Features = make([]Feature, 0, len(res.Samples)+1)
	doc.Features = append(doc.Features, Feature{
		Type:     "Feature",
		Geometry: NewLineString(coords),
		Properties: map[string]any{
			"type":         "flight_path",
			"total_points": len(res.Samples),
		},
	})

	for _, s := range res.Samples {
		doc.Features = append(doc.Features, Feature{
			Type:       "Feature",
			Geometry:   NewPoint(s.Longitude, s.Latitude),
			Properties: pointProperties(s),
		})
	}
	return doc
}

func pointProperties(s telemetry.Sample) map[string]any {
	props := map[string]any{
		"index":     s.Index,
		"latitude":  s.Latitude,
		"longitude": s.Longitude,
	}
	if s.Heading != nil {
		props["heading"] = *s.Heading
	}
	if s.VelocityX != nil {
		props["velocity_x"] = *s.VelocityX
	}
	if s.VelocityY != nil {
		props["velocity_y"] = *s.VelocityY
	}
	if s.SprayRate != nil {
		props["spray_rate"] = *s.SprayRate
	}
	if s.SpeedMS != nil {
		props["speed_ms"] = *s.SpeedMS
	}
	return props
}
