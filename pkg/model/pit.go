package model

import "time"

// PitStopRecord is one pit lane visit.
type PitStopRecord struct {
	SessionKey   int       `json:"session_key"`
	MeetingKey   int       `json:"meeting_key"`
	DriverNumber int       `json:"driver_number"`
	LapNumber    int       `json:"lap_number"`
	PitDuration  float64   `json:"pit_duration"`
	Date         time.Time `json:"date"`
}
