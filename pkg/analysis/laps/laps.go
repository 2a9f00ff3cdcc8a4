// Package laps contains the selection and ordering rules shared by all
// lap based computations.
//
// The helpers select by driver, duration and pit-out flag only. Lap numbers
// are not checked here, callers validate input with model.ValidateLaps.
package laps

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/pkg/model"
)

// ForDrivers returns the laps belonging to one of the given drivers.
func ForDrivers(laps []model.LapRecord, drivers []int) []model.LapRecord {
	if len(drivers) == 0 {
		return []model.LapRecord{}
	}
	wanted := lo.SliceToMap(drivers, func(d int) (int, bool) { return d, true })
	return lo.Filter(laps, func(l model.LapRecord, _ int) bool {
		return wanted[l.DriverNumber]
	})
}

// ForDriver returns the laps of a single driver.
func ForDriver(laps []model.LapRecord, driver int) []model.LapRecord {
	return lo.Filter(laps, func(l model.LapRecord, _ int) bool {
		return l.DriverNumber == driver
	})
}

// IsValid reports whether a lap is representative for pace calculations.
// Laps without a duration and pit-out laps are not.
func IsValid(l *model.LapRecord) bool {
	return l.LapDuration != nil && !l.IsPitOutLap
}

// FilterValidLaps removes laps without duration and pit-out laps.
// Lap numbers are not checked.
func FilterValidLaps(laps []model.LapRecord) []model.LapRecord {
	return lo.Filter(laps, func(l model.LapRecord, _ int) bool {
		return IsValid(&l)
	})
}

// SortByLapNumber returns a copy sorted ascending by lap number.
// Laps with equal lap numbers keep their input order.
func SortByLapNumber(laps []model.LapRecord) []model.LapRecord {
	ret := make([]model.LapRecord, len(laps))
	copy(ret, laps)
	slices.SortStableFunc(ret, func(a, b model.LapRecord) int {
		return cmp.Compare(a.LapNumber, b.LapNumber)
	})
	return ret
}

// FirstPerLap keeps the first record for every (driver, lap number) pair.
func FirstPerLap(laps []model.LapRecord) []model.LapRecord {
	type key struct{ driver, lap int }
	return lo.UniqBy(laps, func(l model.LapRecord) key {
		return key{l.DriverNumber, l.LapNumber}
	})
}

// BestLap returns the fastest valid lap of driver. On equal durations the
// lap encountered first wins. Lap numbers are not checked.
func BestLap(laps []model.LapRecord, driver int) (model.LapRecord, bool) {
	candidates := FilterValidLaps(ForDriver(laps, driver))
	if len(candidates) == 0 {
		return model.LapRecord{}, false
	}
	return lo.MinBy(candidates, func(a, b model.LapRecord) bool {
		return *a.LapDuration < *b.LapDuration
	}), true
}

// MaxLapNumber returns the highest lap number or 0 for no laps.
func MaxLapNumber(laps []model.LapRecord) int {
	ret := 0
	for i := range laps {
		ret = max(ret, laps[i].LapNumber)
	}
	return ret
}

// ByDriver partitions laps by driver. Each partition is sorted by lap number.
func ByDriver(laps []model.LapRecord) map[int][]model.LapRecord {
	ret := lo.GroupBy(laps, func(l model.LapRecord) int { return l.DriverNumber })
	for k, v := range ret {
		ret[k] = SortByLapNumber(v)
	}
	return ret
}

// Lookup finds the first lap with lapNumber in laps sorted by lap number.
func Lookup(sorted []model.LapRecord, lapNumber int) (*model.LapRecord, bool) {
	idx, found := slices.BinarySearchFunc(sorted, lapNumber,
		func(l model.LapRecord, n int) int { return cmp.Compare(l.LapNumber, n) })
	if !found {
		return nil, false
	}
	return &sorted[idx], true
}
