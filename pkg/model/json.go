package model

import (
	"math"

	"github.com/goccy/go-json"
)

type degradationJSON struct {
	DriverNumber      int      `json:"driverNumber"`
	StintNumber       int      `json:"stintNumber"`
	Compound          Compound `json:"compound"`
	DegradationPerLap *float64 `json:"degradationPerLap"`
	TotalDegradation  *float64 `json:"totalDegradation"`
	AverageLapTime    *float64 `json:"averageLapTime"`
	RSquared          *float64 `json:"rSquared"`
	GapPerLap         *float64 `json:"gapPerLap"`
}

// MarshalJSON writes non-finite numbers as null.
func (d DegradationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(degradationJSON{
		DriverNumber:      d.DriverNumber,
		StintNumber:       d.StintNumber,
		Compound:          d.Compound,
		DegradationPerLap: FiniteOrNil(d.DegradationPerLap),
		TotalDegradation:  FiniteOrNil(d.TotalDegradation),
		AverageLapTime:    FiniteOrNil(d.AverageLapTime),
		RSquared:          FiniteOrNil(d.RSquared),
		GapPerLap:         finitePtr(d.GapPerLap),
	})
}

// UnmarshalJSON reads null numbers as NaN.
func (d *DegradationResult) UnmarshalJSON(data []byte) error {
	var raw degradationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = DegradationResult{
		DriverNumber:      raw.DriverNumber,
		StintNumber:       raw.StintNumber,
		Compound:          raw.Compound,
		DegradationPerLap: nanIfNil(raw.DegradationPerLap),
		TotalDegradation:  nanIfNil(raw.TotalDegradation),
		AverageLapTime:    nanIfNil(raw.AverageLapTime),
		RSquared:          nanIfNil(raw.RSquared),
		GapPerLap:         raw.GapPerLap,
	}
	return nil
}

// FiniteOrNil returns nil for NaN and infinite values.
func FiniteOrNil(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func finitePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return FiniteOrNil(*v)
}

func nanIfNil(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
