package model

import (
	"math"
	"time"
)

// DegradationResult describes the pace development of one stint.
type DegradationResult struct {
	DriverNumber int      `json:"driverNumber"`
	StintNumber  int      `json:"stintNumber"`
	Compound     Compound `json:"compound"`
	// regression slope in seconds per lap
	DegradationPerLap float64 `json:"degradationPerLap"`
	// slope extrapolated over the nominal stint length
	TotalDegradation float64 `json:"totalDegradation"`
	AverageLapTime   float64 `json:"averageLapTime"`
	RSquared         float64 `json:"rSquared"`
	// average seconds per lap lost to the session leader, nil if unknown
	GapPerLap *float64 `json:"gapPerLap"`
}

// Reliable reports whether slope and goodness of fit are usable numbers.
func (d *DegradationResult) Reliable() bool {
	return isFinite(d.DegradationPerLap) && isFinite(d.RSquared)
}

// DriverGap is the state of one driver at a given lap.
type DriverGap struct {
	DriverNumber   int      `json:"driverNumber"`
	CumulativeTime *float64 `json:"cumulativeTime"`
	GapToLeader    *float64 `json:"gapToLeader"`
}

// GapRow holds the gaps of all selected drivers at one lap.
type GapRow struct {
	LapNumber int         `json:"lapNumber"`
	Drivers   []DriverGap `json:"drivers"`
}

// Gap returns the entry for driverNumber.
func (r *GapRow) Gap(driverNumber int) (DriverGap, bool) {
	for _, d := range r.Drivers {
		if d.DriverNumber == driverNumber {
			return d, true
		}
	}
	return DriverGap{}, false
}

type DriverValue struct {
	DriverNumber int      `json:"driverNumber"`
	Value        *float64 `json:"value"`
}

// LapRow is one chart row: a value per selected driver at a lap number.
type LapRow struct {
	LapNumber int           `json:"lapNumber"`
	Values    []DriverValue `json:"values"`
}

// Value returns the value of driverNumber in this row.
func (r *LapRow) Value(driverNumber int) (*float64, bool) {
	for _, v := range r.Values {
		if v.DriverNumber == driverNumber {
			return v.Value, true
		}
	}
	return nil, false
}

type SectorRating string

const (
	SectorRatingNone   SectorRating = "none"
	SectorRatingNormal SectorRating = "normal"
	// personal best
	SectorRatingGreen SectorRating = "green"
	// overall best of the session
	SectorRatingPurple SectorRating = "purple"
)

type SectorTimes struct {
	S1 *float64 `json:"s1"`
	S2 *float64 `json:"s2"`
	S3 *float64 `json:"s3"`
}

func (s *SectorTimes) Get(num int) *float64 {
	switch num {
	case 1:
		return s.S1
	case 2:
		return s.S2
	case 3:
		return s.S3
	}
	return nil
}

type DriverSectorStat struct {
	Position     int             `json:"position"`
	DriverNumber int             `json:"driverNumber"`
	Lap          LapRecord       `json:"lap"`
	PersonalBest SectorTimes     `json:"personalBest"`
	Ratings      [3]SectorRating `json:"ratings"`
	// delta to the first entry, nil for the first entry and unknown lap times
	Delta *float64 `json:"delta"`
}

type SectorPerformance struct {
	OverallBest SectorTimes        `json:"overallBest"`
	Drivers     []DriverSectorStat `json:"drivers"`
}

// StintLaps groups the representative laps of a stint.
type StintLaps struct {
	Stint          StintRecord `json:"stint"`
	Laps           []LapRecord `json:"laps"`
	AverageLapTime float64     `json:"averageLapTime"`
}

type LapWithPitInfo struct {
	LapNumber    int      `json:"lapNumber"`
	DriverNumber int      `json:"driverNumber"`
	LapDuration  *float64 `json:"lapDuration"`
	IsPitLap     bool     `json:"isPitLap"`
	PitDuration  *float64 `json:"pitDuration"`
}

// SessionAnalysis bundles the derived data of one analysis run.
type SessionAnalysis struct {
	SessionKey  int                 `json:"sessionKey"`
	Drivers     []int               `json:"drivers"`
	LapTimes    []LapRow            `json:"lapTimes"`
	Gaps        []GapRow            `json:"gaps"`
	Degradation []DegradationResult `json:"degradation"`
	Sectors     SectorPerformance   `json:"sectors"`
	ComputedAt  time.Time           `json:"computedAt"`
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
