package entities

import "time"

// RecordSummary is one row of the portal's record list.
type RecordSummary struct {
	ID                 string `json:"id"`
	TakeoffLandingTime string `json:"takeoff_landing_time"`
	FlightDuration     string `json:"flight_duration"`
	TaskMode           string `json:"task_mode"`
	Area               string `json:"area"`
	ApplicationRate    string `json:"application_rate"`
	FlightMode         string `json:"flight_mode"`
	PilotName          string `json:"pilot_name"`
	DeviceName         string `json:"device_name"`
}

// FlightRecord is the full metadata document of one flight record as the
// portal reports it. The decode pipeline treats it as an opaque property
// bag; the typed view exists for the REST DTOs and the record store.
type FlightRecord struct {
	ID           string  `json:"id"`
	SerialNumber *string `json:"serial_number,omitempty"`
	HardwareID   *string `json:"hardware_id,omitempty"`

	// Timestamps
	StartTimestamp *int64  `json:"start_timestamp,omitempty"`
	EndTimestamp   *int64  `json:"end_timestamp,omitempty"`
	CreateDate     *string `json:"create_date,omitempty"`

	// Location
	Location *string `json:"location,omitempty"`

	// Equipment
	DroneType  *string `json:"drone_type,omitempty"`
	Nickname   *string `json:"nickname,omitempty"`
	AppVersion *string `json:"app_version,omitempty"`
	NozzleType *int    `json:"nozzle_type,omitempty"`

	// Operator
	FlyerName *string `json:"flyer_name,omitempty"`
	TeamName  *string `json:"team_name,omitempty"`

	// Flight settings
	RadarHeight    *float64 `json:"radar_height,omitempty"`
	MaxRadarHeight *float64 `json:"max_radar_height,omitempty"`
	WorkSpeed      *float64 `json:"work_speed,omitempty"`
	MaxFlightSpeed *float64 `json:"max_flight_speed,omitempty"`
	SprayWidth     *float64 `json:"spray_width,omitempty"`

	// Work results
	NewWorkArea       *float64 `json:"new_work_area,omitempty"`
	SprayUsage        *float64 `json:"spray_usage,omitempty"`
	MinFlowSpeedPerMu *float64 `json:"min_flow_speed_per_mu,omitempty"`

	// Flags
	ManualMode *bool `json:"manual_mode,omitempty"`
	UseRTK     *bool `json:"use_rtk,omitempty"`
}

func (r *FlightRecord) StartTime() *time.Time {
	if r.StartTimestamp == nil {
		return nil
	}
	t := time.Unix(*r.StartTimestamp, 0).UTC()
	return &t
}

func (r *FlightRecord) EndTime() *time.Time {
	if r.EndTimestamp == nil {
		return nil
	}
	t := time.Unix(*r.EndTimestamp, 0).UTC()
	return &t
}

func (r *FlightRecord) DurationMinutes() *float64 {
	if r.StartTimestamp == nil || r.EndTimestamp == nil {
		return nil
	}
	m := float64(*r.EndTimestamp-*r.StartTimestamp) / 60
	return &m
}

// WorkAreaHa converts the portal's square-metre work area to hectares.
func (r *FlightRecord) WorkAreaHa() *float64 {
	if r.NewWorkArea == nil {
		return nil
	}
	ha := *r.NewWorkArea / 10000
	return &ha
}

// SprayUsageLiters converts the portal's millilitre spray usage to litres.
func (r *FlightRecord) SprayUsageLiters() *float64 {
	if r.SprayUsage == nil {
		return nil
	}
	l := *r.SprayUsage / 1000
	return &l
}
