// Package chartdata arranges lap data as one row per lap number with a value
// for each selected driver.
package chartdata

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/pkg/analysis/gap"
	"github.com/mpapenbr/racepace/pkg/analysis/laps"
	"github.com/mpapenbr/racepace/pkg/model"
)

var ErrUnknownMode = errors.New("unknown chart mode")

type Mode string

const (
	ModeLapTime Mode = "laptime"
	ModeGap     Mode = "gap"
)

// ParseMode accepts "laptime" (default for empty input) and "gap".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "laptime", "lap-time", "lap_time":
		return ModeLapTime, nil
	case "gap":
		return ModeGap, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownMode, s)
	}
}

// Shape dispatches to the row builder for mode.
func Shape(records []model.LapRecord, drivers []int, mode Mode) ([]model.LapRow, error) {
	switch mode {
	case ModeLapTime:
		return ShapeLapTimeRows(records, drivers)
	case ModeGap:
		return ShapeGapRows(records, drivers)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
}

// ShapeLapTimeRows returns a row for each lap number 1..max lap of records.
// Laps without duration and pit-out laps have no value.
func ShapeLapTimeRows(records []model.LapRecord, drivers []int) ([]model.LapRow, error) {
	if err := model.ValidateLaps(records); err != nil {
		return nil, err
	}
	maxLap := laps.MaxLapNumber(records)
	selection := lo.Uniq(drivers)
	byDriver := laps.ByDriver(laps.FirstPerLap(laps.ForDrivers(records, selection)))

	ret := make([]model.LapRow, 0, maxLap)
	for lapNum := 1; lapNum <= maxLap; lapNum++ {
		row := model.LapRow{LapNumber: lapNum, Values: make([]model.DriverValue, 0, len(selection))}
		for _, d := range selection {
			value := model.DriverValue{DriverNumber: d}
			if l, ok := laps.Lookup(byDriver[d], lapNum); ok && laps.IsValid(l) {
				value.Value = model.Seconds(*l.LapDuration)
			}
			row.Values = append(row.Values, value)
		}
		ret = append(ret, row)
	}
	return ret, nil
}

// ShapeGapRows returns the gap to the leader per lap as computed by the gap
// engine. Laps where no selected driver has a cumulative time are omitted.
func ShapeGapRows(records []model.LapRecord, drivers []int) ([]model.LapRow, error) {
	rows, err := gap.ComputeGapSeries(records, drivers)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(r model.GapRow, _ int) model.LapRow {
		return model.LapRow{
			LapNumber: r.LapNumber,
			Values: lo.Map(r.Drivers, func(d model.DriverGap, _ int) model.DriverValue {
				return model.DriverValue{DriverNumber: d.DriverNumber, Value: d.GapToLeader}
			}),
		}
	}), nil
}
