package model

import (
	"errors"
	"fmt"
)

// MaxLapNumber is the highest accepted lap number. The longest races run
// a little over 300 laps.
const MaxLapNumber = 1000

var (
	ErrInvalidLapNumber = errors.New("invalid lap number")
	ErrInvalidStint     = errors.New("invalid stint")
)

// ValidateLaps rejects laps with lap numbers outside 1..MaxLapNumber.
func ValidateLaps(laps []LapRecord) error {
	for i := range laps {
		if laps[i].LapNumber < 1 || laps[i].LapNumber > MaxLapNumber {
			return fmt.Errorf("%w: driver %d lap %d at index %d",
				ErrInvalidLapNumber, laps[i].DriverNumber, laps[i].LapNumber, i)
		}
	}
	return nil
}

// ValidateDrivers rejects negative driver numbers in a selection.
func ValidateDrivers(drivers []int) error {
	for _, d := range drivers {
		if d < 0 {
			return fmt.Errorf("invalid driver number %d", d)
		}
	}
	return nil
}

// ValidateStints rejects stints with an empty or negative lap range or a
// range ending after MaxLapNumber.
func ValidateStints(stints []StintRecord) error {
	for i := range stints {
		s := &stints[i]
		if s.LapStart < 1 || s.LapEnd < s.LapStart || s.LapEnd > MaxLapNumber {
			return fmt.Errorf("%w: driver %d stint %d laps %d-%d",
				ErrInvalidStint, s.DriverNumber, s.StintNumber, s.LapStart, s.LapEnd)
		}
	}
	return nil
}
