package gorm

import "time"

// FlightRecord caches one portal record: the metadata document as fetched,
// and the decoded GeoJSON plus diagnostics once the route blob has been
// processed. DecodedAt is nil until a decode has run.
type FlightRecord struct {
	RecordID      string     `gorm:"column:record_id;primaryKey"`
	SerialNumber  *string    `gorm:"column:serial_number"`
	DroneType     *string    `gorm:"column:drone_type"`
	PilotName     *string    `gorm:"column:pilot_name"`
	Location      *string    `gorm:"column:location"`
	MetadataJSON  string     `gorm:"column:metadata_json;type:text"`
	GeoJSON       *string    `gorm:"column:geojson;type:text"`
	AcceptedCount int        `gorm:"column:accepted_count"`
	RejectedCount int        `gorm:"column:rejected_count"`
	HadTelemetry  bool       `gorm:"column:had_telemetry"`
	DecodedAt     *time.Time `gorm:"column:decoded_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (FlightRecord) TableName() string {
	return "flight_records"
}

// ApiKey is a provisioned API key for the REST surface.
type ApiKey struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Status    bool      `gorm:"column:status;default:true"`
	Label     string    `gorm:"column:label"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ApiKey) TableName() string {
	return "api_keys"
}
