package model

import (
	"fmt"
	"strings"
)

type Compound string

const (
	CompoundSoft         Compound = "SOFT"
	CompoundMedium       Compound = "MEDIUM"
	CompoundHard         Compound = "HARD"
	CompoundIntermediate Compound = "INTERMEDIATE"
	CompoundWet          Compound = "WET"
	// upstream data sometimes carries placeholders like TEST_UNKNOWN
	CompoundUnknown Compound = "UNKNOWN"
)

var Compounds = []Compound{
	CompoundSoft, CompoundMedium, CompoundHard, CompoundIntermediate, CompoundWet,
}

// ParseCompound accepts the compound names in any case.
func ParseCompound(s string) (Compound, error) {
	c := Compound(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CompoundSoft, CompoundMedium, CompoundHard, CompoundIntermediate, CompoundWet:
		return c, nil
	default:
		return CompoundUnknown, fmt.Errorf("unknown compound %q", s)
	}
}

// StintRecord is a contiguous run of one driver on one tyre set.
// LapStart and LapEnd are inclusive.
type StintRecord struct {
	SessionKey     int      `json:"session_key"`
	MeetingKey     int      `json:"meeting_key"`
	DriverNumber   int      `json:"driver_number"`
	StintNumber    int      `json:"stint_number"`
	Compound       Compound `json:"compound"`
	LapStart       int      `json:"lap_start"`
	LapEnd         int      `json:"lap_end"`
	TyreAgeAtStart int      `json:"tyre_age_at_start"`
}

// Contains reports whether lapNumber is part of the stint.
func (s *StintRecord) Contains(lapNumber int) bool {
	return lapNumber >= s.LapStart && lapNumber <= s.LapEnd
}

// Length is the nominal stint length as used for extrapolation.
func (s *StintRecord) Length() int {
	return s.LapEnd - s.LapStart
}
