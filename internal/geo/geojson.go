// Package geo builds GeoJSON documents from decoded flight telemetry.
package geo

// FeatureCollection is a standard GeoJSON feature collection with
// document-level properties.
type FeatureCollection struct {
	Type       string         `json:"type"`
	Name       string         `json:"name,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Features   []Feature      `json:"features"`
}

// Feature is a single geometry with associated properties.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Geometry holds a Point ([]float64) or LineString ([][]float64) in
// [longitude, latitude] order.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// NewPoint returns a Point geometry.
func NewPoint(lon, lat float64) Geometry {
	return Geometry{Type: "Point", Coordinates: []float64{lon, lat}}
}

// NewLineString returns a LineString geometry over [lon, lat] pairs.
func NewLineString(coords [][]float64) Geometry {
	return Geometry{Type: "LineString", Coordinates: coords}
}
