package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	ZoneStatusActive  = "ACTIVE"
	ZoneStatusIdle    = "IDLE"
	ZoneStatusAlert   = "ALERT"
	ZoneStatusUnknown = "UNKNOWN"
)

const (
	SensorStatusNormal   = "NORMAL"
	SensorStatusActive   = "ACTIVE"
	SensorStatusFaulty   = "FAULTY"
	SensorStatusInactive = "INACTIVE"
)

const (
	AlertStatusActive   = "ACTIVE"
	AlertStatusResolved = "RESOLVED"
)

const (
	AlertTypeLowWater    = "LOW_WATER"
	AlertTypeDrySoil     = "DRY_SOIL"
	AlertTypeSensorFault = "SENSOR_FAULT"
)

const (
	TankStatusNormal = "NORMAL"
	TankStatusLow    = "LOW"
	TankStatusEmpty  = "EMPTY"
	TankStatusFull   = "FULL"
)

const (
	ValveStatusOpen   = "OPEN"
	ValveStatusClosed = "CLOSED"
)

type Garden struct {
	GardenID          int64           `json:"gardenId"`
	GardenName        string          `json:"gardenName"`
	Location          string          `json:"location,omitempty"`
	TotalArea         *float64        `json:"totalArea,omitempty"`
	TotalZones        int             `json:"totalZones"`
	ActiveAlerts      AlertCount      `json:"activeAlerts"`
	Zones             []Zone          `json:"zones,omitempty"`
	Tanks             []WaterTank     `json:"tanks,omitempty"`
	RecentIrrigations []IrrigationLog `json:"recentIrrigations,omitempty"`
}

type Zone struct {
	ZoneID                int64      `json:"zoneId"`
	ZoneName              string     `json:"zoneName"`
	PlantType             string     `json:"plantType,omitempty"`
	SoilType              string     `json:"soilType,omitempty"`
	MoistureMin           *float64   `json:"moistureMin,omitempty"`
	MoistureMax           *float64   `json:"moistureMax,omitempty"`
	LatestMoistureReading *float64   `json:"latestMoistureReading,omitempty"`
	IrrigationStatus      string     `json:"irrigationStatus,omitempty"`
	LastIrrigated         *Timestamp `json:"lastIrrigated,omitempty"`
}

type Sensor struct {
	SensorID         int64    `json:"sensorId"`
	SensorType       string   `json:"sensorType,omitempty"`
	SerialNumber     string   `json:"serialNumber,omitempty"`
	Status           string   `json:"status,omitempty"`
	InstallationDate string   `json:"installationDate,omitempty"`
	LatestReading    *float64 `json:"latestReading,omitempty"`
	RecordedAt       string   `json:"recordedAt,omitempty"`
}

// IrrigationLog is one irrigation session. A nil EndTime means the session
// is still in progress.
type IrrigationLog struct {
	LogID           int64      `json:"logId"`
	ZoneName        string     `json:"zoneName,omitempty"`
	StartTime       *Timestamp `json:"startTime,omitempty"`
	EndTime         *Timestamp `json:"endTime,omitempty"`
	WaterVolumeUsed *float64   `json:"waterVolumeUsed,omitempty"`
	TriggerType     string     `json:"triggerType,omitempty"`
	DurationMinutes *int64     `json:"durationMinutes,omitempty"`
}

func (l IrrigationLog) InProgress() bool {
	return l.EndTime == nil
}

type Alert struct {
	AlertID   int64      `json:"alertId"`
	ZoneName  string     `json:"zoneName,omitempty"`
	Type      string     `json:"type,omitempty"`
	Message   string     `json:"message,omitempty"`
	Status    string     `json:"status"`
	CreatedAt *Timestamp `json:"createdAt,omitempty"`
}

func (a Alert) Active() bool {
	return a.Status == AlertStatusActive
}

type WaterTank struct {
	TankID             int64    `json:"tankId"`
	CapacityLiters     *float64 `json:"capacityLiters,omitempty"`
	CurrentLevelLiters *float64 `json:"currentLevelLiters,omitempty"`
	FillPercentage     *float64 `json:"fillPercentage,omitempty"`
	Status             string   `json:"status,omitempty"`
}

// UnmarshalJSON accepts both the dashboard names and the plain tank resource
// names (capacity, currentLevel). A missing fill percentage is derived from
// level and capacity.
func (t *WaterTank) UnmarshalJSON(b []byte) error {
	type tank WaterTank
	aux := struct {
		*tank
		Capacity     *float64 `json:"capacity"`
		CurrentLevel *float64 `json:"currentLevel"`
	}{tank: (*tank)(t)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	if t.CapacityLiters == nil {
		t.CapacityLiters = aux.Capacity
	}
	if t.CurrentLevelLiters == nil {
		t.CurrentLevelLiters = aux.CurrentLevel
	}

	if t.FillPercentage == nil && t.CapacityLiters != nil && t.CurrentLevelLiters != nil && *t.CapacityLiters > 0 {
		pct := *t.CurrentLevelLiters / *t.CapacityLiters * 100
		t.FillPercentage = &pct
	}

	return nil
}

type Valve struct {
	ValveID         int64      `json:"valveId"`
	ZoneName        string     `json:"zoneName,omitempty"`
	ValveStatus     string     `json:"valveStatus,omitempty"`
	PowerSource     string     `json:"powerSource,omitempty"`
	LastActivatedAt *Timestamp `json:"lastActivatedAt,omitempty"`
}

func (v Valve) Open() bool {
	return v.ValveStatus == ValveStatusOpen
}

type DashboardSummary struct {
	TotalGardens    int `json:"totalGardens"`
	TotalZones      int `json:"totalZones"`
	TotalSensors    int `json:"totalSensors"`
	ActiveSensors   int `json:"activeSensors"`
	FaultySensors   int `json:"faultySensors"`
	TotalValves     int `json:"totalValves"`
	OpenValves      int `json:"openValves"`
	TotalWaterTanks int `json:"totalWaterTanks"`

	AvgMoistureLevel *float64 `json:"avgMoistureLevel,omitempty"`
	AvgTemperature   *float64 `json:"avgTemperature,omitempty"`

	TotalWaterUsedToday      *float64 `json:"totalWaterUsedToday,omitempty"`
	TotalWaterUsedThisWeek   *float64 `json:"totalWaterUsedThisWeek,omitempty"`
	TotalWaterUsedThisMonth  *float64 `json:"totalWaterUsedThisMonth,omitempty"`
	TotalIrrigationsToday    int      `json:"totalIrrigationsToday"`
	TotalIrrigationsThisWeek int      `json:"totalIrrigationsThisWeek"`

	ActiveAlerts        int `json:"activeAlerts"`
	ResolvedAlertsToday int `json:"resolvedAlertsToday"`

	LowMoistureAlerts     int `json:"lowMoistureAlerts"`
	HighTemperatureAlerts int `json:"highTemperatureAlerts"`
	SystemAlerts          int `json:"systemAlerts"`

	WaterTanks []WaterTank `json:"waterTanks,omitempty"`
}

// UserDashboard is the full snapshot returned for the signed in user.
type UserDashboard struct {
	UserID           int64    `json:"userId"`
	UserName         string   `json:"userName"`
	Gardens          []Garden `json:"gardens"`
	TotalGardens     *int     `json:"totalGardens,omitempty"`
	TotalZones       *int     `json:"totalZones,omitempty"`
	ActiveAlerts     *int     `json:"activeAlerts,omitempty"`
	AvgMoistureLevel *float64 `json:"avgMoistureLevel,omitempty"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Role            string `json:"role"`
	Agree           bool   `json:"agree"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Message string `json:"message,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// AlertCount accepts either a number or a list of alerts and keeps the count.
type AlertCount int

func (c *AlertCount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*c = 0
		return nil
	}

	if strings.HasPrefix(s, "[") {
		var alerts []json.RawMessage
		if err := json.Unmarshal(b, &alerts); err != nil {
			return err
		}
		*c = AlertCount(len(alerts))
		return nil
	}

	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("active alerts is neither a count nor a list: %w", err)
	}
	*c = AlertCount(n)
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp parses the backend's date-time strings. Values without an offset
// are interpreted in the local time zone.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func ParseTimestamp(s string) (Timestamp, error) {
	for i, layout := range timestampLayouts {
		var t time.Time
		var err error

		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}

		if err == nil {
			return Timestamp{Time: t}, nil
		}
	}

	return Timestamp{}, fmt.Errorf("unsupported timestamp format %q", s)
}

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}

	t, err := ParseTimestamp(str)
	if err != nil {
		return err
	}

	*ts = t
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Time.Format(time.RFC3339))
}
