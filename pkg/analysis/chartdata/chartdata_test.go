//nolint:funlen,lll // ok for tests
package chartdata

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/mpapenbr/racepace/pkg/model"
)

func lap(driver, num int, dur float64) model.LapRecord {
	return model.LapRecord{DriverNumber: driver, LapNumber: num, LapDuration: model.Seconds(dur)}
}

func val(driver int, v float64) model.DriverValue {
	return model.DriverValue{DriverNumber: driver, Value: model.Seconds(v)}
}

func none(driver int) model.DriverValue {
	return model.DriverValue{DriverNumber: driver}
}

func TestShapeLapTimeRows(t *testing.T) {
	pitOut := lap(44, 2, 110)
	pitOut.IsPitOutLap = true
	input := []model.LapRecord{
		lap(1, 1, 90), lap(1, 2, 89.5), {DriverNumber: 1, LapNumber: 3},
		lap(44, 1, 91), pitOut, lap(44, 3, 89),
		lap(16, 4, 88),
	}
	tests := []struct {
		name    string
		drivers []int
		want    []model.LapRow
	}{
		{
			name:    "rows up to max lap of all laps",
			drivers: []int{1, 44},
			want: []model.LapRow{
				{LapNumber: 1, Values: []model.DriverValue{val(1, 90), val(44, 91)}},
				{LapNumber: 2, Values: []model.DriverValue{val(1, 89.5), none(44)}},
				{LapNumber: 3, Values: []model.DriverValue{none(1), val(44, 89)}},
				{LapNumber: 4, Values: []model.DriverValue{none(1), none(44)}},
			},
		},
		{
			name:    "duplicates and order",
			drivers: []int{44, 1, 44},
			want: []model.LapRow{
				{LapNumber: 1, Values: []model.DriverValue{val(44, 91), val(1, 90)}},
				{LapNumber: 2, Values: []model.DriverValue{none(44), val(1, 89.5)}},
				{LapNumber: 3, Values: []model.DriverValue{val(44, 89), none(1)}},
				{LapNumber: 4, Values: []model.DriverValue{none(44), none(1)}},
			},
		},
		{
			name:    "no drivers",
			drivers: nil,
			want: []model.LapRow{
				{LapNumber: 1, Values: []model.DriverValue{}},
				{LapNumber: 2, Values: []model.DriverValue{}},
				{LapNumber: 3, Values: []model.DriverValue{}},
				{LapNumber: 4, Values: []model.DriverValue{}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ShapeLapTimeRows(input, tt.drivers)
			assert.NilError(t, err)
			assert.DeepEqual(t, tt.want, got)
		})
	}
}

func TestShapeLapTimeRowsEmpty(t *testing.T) {
	got, err := ShapeLapTimeRows(nil, []int{1})
	assert.NilError(t, err)
	assert.Assert(t, got != nil)
	assert.Equal(t, 0, len(got))
}

func TestShapeGapRows(t *testing.T) {
	input := []model.LapRecord{
		lap(1, 1, 90.0), lap(1, 2, 89.5), lap(1, 3, 89.0),
		lap(44, 1, 91.0), lap(44, 2, 90.0), lap(44, 3, 89.0),
	}
	got, err := Shape(input, []int{1, 44}, ModeGap)
	assert.NilError(t, err)
	assert.DeepEqual(t, []model.LapRow{
		{LapNumber: 1, Values: []model.DriverValue{val(1, 0), val(44, 1)}},
		{LapNumber: 2, Values: []model.DriverValue{val(1, 0), val(44, 1.5)}},
		{LapNumber: 3, Values: []model.DriverValue{val(1, 0), val(44, 1.5)}},
	}, got)
}

func TestShapeInvalidInput(t *testing.T) {
	_, err := Shape([]model.LapRecord{lap(1, 0, 90)}, []int{1}, ModeLapTime)
	assert.Assert(t, errors.Is(err, model.ErrInvalidLapNumber))

	for _, mode := range []Mode{ModeLapTime, ModeGap} {
		_, err = Shape([]model.LapRecord{lap(1, 1<<30, 90)}, []int{1}, mode)
		assert.Assert(t, errors.Is(err, model.ErrInvalidLapNumber))
	}

	_, err = Shape(nil, []int{1}, Mode("speed"))
	assert.ErrorContains(t, err, "unknown chart mode")
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeLapTime, false},
		{"laptime", ModeLapTime, false},
		{"Lap-Time", ModeLapTime, false},
		{"gap", ModeGap, false},
		{" GAP ", ModeGap, false},
		{"speed", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Assert(t, err != nil)
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
