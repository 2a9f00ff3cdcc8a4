package model

import (
	"errors"
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestParseCompound(t *testing.T) {
	tests := []struct {
		in      string
		want    Compound
		wantErr bool
	}{
		{"SOFT", CompoundSoft, false},
		{"medium", CompoundMedium, false},
		{" Hard ", CompoundHard, false},
		{"INTERMEDIATE", CompoundIntermediate, false},
		{"WET", CompoundWet, false},
		{"TEST_UNKNOWN", CompoundUnknown, true},
		{"", CompoundUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompound(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestValidateLaps(t *testing.T) {
	assert.NoError(t, ValidateLaps(nil))
	assert.NoError(t, ValidateLaps([]LapRecord{{DriverNumber: 1, LapNumber: 1}}))
	err := ValidateLaps([]LapRecord{{DriverNumber: 1, LapNumber: 1}, {DriverNumber: 1, LapNumber: -2}})
	assert.True(t, errors.Is(err, ErrInvalidLapNumber))
	err = ValidateLaps([]LapRecord{{DriverNumber: 1, LapNumber: 0}})
	assert.True(t, errors.Is(err, ErrInvalidLapNumber))
	assert.NoError(t, ValidateLaps([]LapRecord{{DriverNumber: 1, LapNumber: MaxLapNumber}}))
	err = ValidateLaps([]LapRecord{{DriverNumber: 1, LapNumber: MaxLapNumber + 1}})
	assert.True(t, errors.Is(err, ErrInvalidLapNumber))
}

func TestValidateStints(t *testing.T) {
	assert.NoError(t, ValidateStints([]StintRecord{{LapStart: 1, LapEnd: 1}}))
	assert.ErrorIs(t, ValidateStints([]StintRecord{{LapStart: 5, LapEnd: 4}}), ErrInvalidStint)
	assert.ErrorIs(t, ValidateStints([]StintRecord{{LapStart: 0, LapEnd: 4}}), ErrInvalidStint)
	assert.ErrorIs(t, ValidateStints([]StintRecord{{LapStart: 1, LapEnd: MaxLapNumber + 1}}), ErrInvalidStint)
}

func TestDegradationResultReliable(t *testing.T) {
	assert.True(t, (&DegradationResult{DegradationPerLap: 0.1, RSquared: 0.8}).Reliable())
	assert.False(t, (&DegradationResult{DegradationPerLap: math.NaN(), RSquared: 0.8}).Reliable())
	assert.False(t, (&DegradationResult{DegradationPerLap: 0.1, RSquared: math.Inf(-1)}).Reliable())
}

func TestSessionDataDriverNumbers(t *testing.T) {
	sd := SessionData{
		Laps: []LapRecord{{DriverNumber: 44}, {DriverNumber: 1}, {DriverNumber: 44}},
	}
	assert.Equal(t, []int{44, 1}, sd.DriverNumbers())

	sd.Drivers = []Driver{{DriverNumber: 16}, {DriverNumber: 55}}
	assert.Equal(t, []int{16, 55}, sd.DriverNumbers())
}

func TestDegradationResultJSON(t *testing.T) {
	in := DegradationResult{
		DriverNumber:      44,
		StintNumber:       2,
		Compound:          CompoundHard,
		DegradationPerLap: math.NaN(),
		TotalDegradation:  math.Inf(1),
		AverageLapTime:    93.5,
		RSquared:          math.NaN(),
		GapPerLap:         Seconds(math.Inf(-1)),
	}
	data, err := json.Marshal(in)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"driverNumber":44,"stintNumber":2,"compound":"HARD",
		"degradationPerLap":null,"totalDegradation":null,"averageLapTime":93.5,
		"rSquared":null,"gapPerLap":null}`, string(data))

	var out DegradationResult
	assert.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, math.IsNaN(out.DegradationPerLap))
	assert.True(t, math.IsNaN(out.TotalDegradation))
	assert.Equal(t, 93.5, out.AverageLapTime)
	assert.Nil(t, out.GapPerLap)
	assert.False(t, out.Reliable())
}
