package model

import "time"

// LapRecord is one timed lap of one driver in one session.
// Durations are in seconds, nil means the value is not known.
type LapRecord struct {
	SessionKey      int       `json:"session_key"`
	MeetingKey      int       `json:"meeting_key"`
	DriverNumber    int       `json:"driver_number"`
	LapNumber       int       `json:"lap_number"`
	LapDuration     *float64  `json:"lap_duration"`
	Sector1Duration *float64  `json:"duration_sector_1"`
	Sector2Duration *float64  `json:"duration_sector_2"`
	Sector3Duration *float64  `json:"duration_sector_3"`
	IsPitOutLap     bool      `json:"is_pit_out_lap"`
	DateStart       time.Time `json:"date_start"`
	I1Speed         *int      `json:"i1_speed"`
	I2Speed         *int      `json:"i2_speed"`
	StSpeed         *int      `json:"st_speed"`
	// cumulative session time, only provided by FastF1
	TotalSeconds *float64 `json:"total_seconds,omitempty"`
}

// Duration returns the lap duration and whether it is known.
func (l *LapRecord) Duration() (float64, bool) {
	if l.LapDuration == nil {
		return 0, false
	}
	return *l.LapDuration, true
}

func (l *LapRecord) HasDuration() bool {
	return l.LapDuration != nil
}

// Sector returns the duration of sector num (1..3).
func (l *LapRecord) Sector(num int) *float64 {
	switch num {
	case 1:
		return l.Sector1Duration
	case 2:
		return l.Sector2Duration
	case 3:
		return l.Sector3Duration
	default:
		return nil
	}
}

// Seconds is a helper to create optional durations.
func Seconds(v float64) *float64 {
	return &v
}
