// Package gap computes cumulative race times and the gap to the leader.
package gap

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/pkg/analysis/laps"
	"github.com/mpapenbr/racepace/pkg/model"
)

// Table holds the cumulative time of each selected driver for the laps
// 1..MaxLap. A lap without a duration leaves the value at that lap undefined
// but the running total continues with the next known lap.
type Table struct {
	drivers    []int
	maxLap     int
	cumulative map[int][]*float64
}

// NewTable builds the cumulative times for drivers. Duplicate driver numbers
// are ignored, the remaining order is kept.
// For duplicate (driver, lap) records the first one is used.
func NewTable(records []model.LapRecord, drivers []int) (*Table, error) {
	if err := model.ValidateLaps(records); err != nil {
		return nil, err
	}
	if err := model.ValidateDrivers(drivers); err != nil {
		return nil, err
	}
	selection := lo.Uniq(drivers)
	selected := laps.FirstPerLap(laps.ForDrivers(records, selection))
	t := &Table{
		drivers:    selection,
		maxLap:     laps.MaxLapNumber(selected),
		cumulative: make(map[int][]*float64, len(selection)),
	}
	if t.maxLap < 1 {
		return t, nil
	}
	byDriver := laps.ByDriver(selected)
	for _, d := range selection {
		values := make([]*float64, t.maxLap+1)
		total := 0.0
		for lap := 1; lap <= t.maxLap; lap++ {
			if l, ok := laps.Lookup(byDriver[d], lap); ok && l.HasDuration() {
				total += *l.LapDuration
				values[lap] = model.Seconds(total)
			}
		}
		t.cumulative[d] = values
	}
	return t, nil
}

// SessionTable builds a table over all drivers found in records, in order of
// their first appearance.
func SessionTable(records []model.LapRecord) (*Table, error) {
	drivers := lo.Uniq(lo.Map(records, func(l model.LapRecord, _ int) int {
		return l.DriverNumber
	}))
	return NewTable(records, drivers)
}

func (t *Table) Drivers() []int {
	return t.drivers
}

func (t *Table) MaxLap() int {
	return t.maxLap
}

// Cumulative returns the cumulative time of driver after lap.
// Lap 0 denotes the race start where every selected driver is at 0.
func (t *Table) Cumulative(driver, lap int) (float64, bool) {
	values, ok := t.cumulative[driver]
	if !ok || lap < 0 || lap > t.maxLap {
		return 0, false
	}
	if lap == 0 {
		return 0, true
	}
	if values[lap] == nil {
		return 0, false
	}
	return *values[lap], true
}

// Leader returns the minimum defined cumulative time at lap.
func (t *Table) Leader(lap int) (float64, bool) {
	found := false
	leader := 0.0
	for _, d := range t.drivers {
		v, ok := t.Cumulative(d, lap)
		if !ok {
			continue
		}
		if !found || v < leader {
			leader = v
			found = true
		}
	}
	return leader, found
}

// Rows returns one row per lap with at least one defined cumulative time.
// Each row lists every selected driver in selection order.
func (t *Table) Rows() []model.GapRow {
	ret := make([]model.GapRow, 0, t.maxLap)
	for lap := 1; lap <= t.maxLap; lap++ {
		leader, ok := t.Leader(lap)
		if !ok {
			continue
		}
		row := model.GapRow{LapNumber: lap, Drivers: make([]model.DriverGap, 0, len(t.drivers))}
		for _, d := range t.drivers {
			entry := model.DriverGap{DriverNumber: d}
			if v, ok := t.Cumulative(d, lap); ok {
				entry.CumulativeTime = model.Seconds(v)
				entry.GapToLeader = model.Seconds(v - leader)
			}
			row.Drivers = append(row.Drivers, entry)
		}
		ret = append(ret, row)
	}
	return ret
}

// ComputeGapSeries returns the cumulative time and gap to the leader of the
// selected drivers for each lap number.
func ComputeGapSeries(records []model.LapRecord, drivers []int) ([]model.GapRow, error) {
	t, err := NewTable(records, drivers)
	if err != nil {
		return nil, err
	}
	return t.Rows(), nil
}
