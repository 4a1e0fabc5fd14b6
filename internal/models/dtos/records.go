package dtos

import (
	"agrolog/groundstation/internal/geo"
	"agrolog/groundstation/internal/models/entities"
	"agrolog/groundstation/internal/telemetry"
)

// RecordListResponse is one page of flight records.
type RecordListResponse struct {
	Items   []entities.RecordSummary `json:"items"`
	Total   int                      `json:"total"`
	Page    int                      `json:"page"`
	PerPage int                      `json:"per_page"`
}

// RecordDetailResponse is the typed metadata view of one record.
type RecordDetailResponse struct {
	ID               string   `json:"id"`
	SerialNumber     *string  `json:"serial_number,omitempty"`
	HardwareID       *string  `json:"hardware_id,omitempty"`
	StartDatetime    *string  `json:"start_datetime,omitempty"`
	EndDatetime      *string  `json:"end_datetime,omitempty"`
	DurationMinutes  *float64 `json:"duration_minutes,omitempty"`
	CreateDate       *string  `json:"create_date,omitempty"`
	Location         *string  `json:"location,omitempty"`
	DroneType        *string  `json:"drone_type,omitempty"`
	Nickname         *string  `json:"nickname,omitempty"`
	FlyerName        *string  `json:"flyer_name,omitempty"`
	TeamName         *string  `json:"team_name,omitempty"`
	RadarHeight      *float64 `json:"radar_height,omitempty"`
	WorkSpeed        *float64 `json:"work_speed,omitempty"`
	SprayWidth       *float64 `json:"spray_width,omitempty"`
	WorkAreaHa       *float64 `json:"work_area_ha,omitempty"`
	SprayUsageLiters *float64 `json:"spray_usage_liters,omitempty"`
	ManualMode       *bool    `json:"manual_mode,omitempty"`
	UseRTK           *bool    `json:"use_rtk,omitempty"`
}

// NewRecordDetailResponse projects a FlightRecord entity into the response shape.
func NewRecordDetailResponse(rec *entities.FlightRecord) *RecordDetailResponse {
	resp := &RecordDetailResponse{
		ID:               rec.ID,
		SerialNumber:     rec.SerialNumber,
		HardwareID:       rec.HardwareID,
		DurationMinutes:  rec.DurationMinutes(),
		CreateDate:       rec.CreateDate,
		Location:         rec.Location,
		DroneType:        rec.DroneType,
		Nickname:         rec.Nickname,
		FlyerName:        rec.FlyerName,
		TeamName:         rec.TeamName,
		RadarHeight:      rec.RadarHeight,
		WorkSpeed:        rec.WorkSpeed,
		SprayWidth:       rec.SprayWidth,
		WorkAreaHa:       rec.WorkAreaHa(),
		SprayUsageLiters: rec.SprayUsageLiters(),
		ManualMode:       rec.ManualMode,
		UseRTK:           rec.UseRTK,
	}
	if t := rec.StartTime(); t != nil {
		s := t.Format("2006-01-02T15:04:05Z07:00")
		resp.StartDatetime = &s
	}
	if t := rec.EndTime(); t != nil {
		s := t.Format("2006-01-02T15:04:05Z07:00")
		resp.EndDatetime = &s
	}
	return resp
}

// FlightDataResponse is the decoded telemetry view of one record.
type FlightDataResponse struct {
	RecordID    string                    `json:"record_id"`
	TotalPoints int                       `json:"total_points"`
	Bounds      *telemetry.Bounds         `json:"bounds,omitempty"`
	Telemetry   *telemetry.Stats          `json:"telemetry,omitempty"`
	Record      telemetry.RecordTelemetry `json:"record_telemetry"`
	Diagnostics telemetry.Diagnostics     `json:"diagnostics"`
	Points      []telemetry.Sample        `json:"points,omitempty"`
}

// GeoJSONResponse wraps an assembled document with its decode diagnostics.
type GeoJSONResponse struct {
	RecordID    string                 `json:"record_id"`
	Diagnostics telemetry.Diagnostics  `json:"diagnostics"`
	Document    *geo.FeatureCollection `json:"document"`
}

// DownloadResponse acknowledges a queued download request.
type DownloadResponse struct {
	RecordID string `json:"record_id"`
	Queued   bool   `json:"queued"`
	Message  string `json:"message,omitempty"`
}

// ShareLinkResponse carries a presigned GeoJSON link.
type ShareLinkResponse struct {
	RecordID  string `json:"record_id"`
	Token     string `json:"token"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
