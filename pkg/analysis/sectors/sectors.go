// Package sectors compares sector times of drivers on a chosen lap.
package sectors

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/pkg/analysis/laps"
	"github.com/mpapenbr/racepace/pkg/model"
)

// ComputeSectorPerformance builds the sector table for drivers.
// With targetLap > 0 that lap is shown for every driver, otherwise the
// driver's best valid lap. Drivers without a matching lap are left out.
// Rows are ordered by lap time, laps without time come last.
//
//nolint:whitespace // can't make both editor and linter happy
func ComputeSectorPerformance(
	records []model.LapRecord,
	drivers []int,
	targetLap int,
) (model.SectorPerformance, error) {
	if err := model.ValidateLaps(records); err != nil {
		return model.SectorPerformance{}, err
	}
	overall := bestSectors(records)
	stats := make([]model.DriverSectorStat, 0, len(drivers))
	for _, d := range lo.Uniq(drivers) {
		driverLaps := laps.SortByLapNumber(laps.ForDriver(records, d))
		if len(driverLaps) == 0 {
			continue
		}
		target, ok := pickLap(driverLaps, d, targetLap)
		if !ok {
			continue
		}
		personal := bestSectors(driverLaps)
		stat := model.DriverSectorStat{
			DriverNumber: d,
			Lap:          target,
			PersonalBest: personal,
		}
		for i := range stat.Ratings {
			stat.Ratings[i] = rate(target.Sector(i+1), overall.Get(i+1), personal.Get(i+1))
		}
		stats = append(stats, stat)
	}

	slices.SortStableFunc(stats, func(a, b model.DriverSectorStat) int {
		return compareLapTime(a.Lap.LapDuration, b.Lap.LapDuration)
	})
	for i := range stats {
		stats[i].Position = i + 1
		if i == 0 {
			continue
		}
		if first, cur := stats[0].Lap.LapDuration, stats[i].Lap.LapDuration; first != nil && cur != nil {
			stats[i].Delta = model.Seconds(*cur - *first)
		}
	}
	return model.SectorPerformance{OverallBest: overall, Drivers: stats}, nil
}

func pickLap(driverLaps []model.LapRecord, driver, targetLap int) (model.LapRecord, bool) {
	if targetLap > 0 {
		l, ok := laps.Lookup(driverLaps, targetLap)
		if !ok {
			return model.LapRecord{}, false
		}
		return *l, true
	}
	if best, ok := laps.BestLap(driverLaps, driver); ok {
		return best, true
	}
	// no valid lap, show the first one
	return driverLaps[0], true
}

func bestSectors(records []model.LapRecord) model.SectorTimes {
	best := func(num int) *float64 {
		var ret *float64
		for i := range records {
			v := records[i].Sector(num)
			if v == nil || *v <= 0 {
				continue
			}
			if ret == nil || *v < *ret {
				ret = model.Seconds(*v)
			}
		}
		return ret
	}
	return model.SectorTimes{S1: best(1), S2: best(2), S3: best(3)}
}

func rate(value, overall, personal *float64) model.SectorRating {
	switch {
	case value == nil || *value <= 0:
		return model.SectorRatingNone
	case overall != nil && *value <= *overall:
		return model.SectorRatingPurple
	case personal != nil && *value <= *personal:
		return model.SectorRatingGreen
	default:
		return model.SectorRatingNormal
	}
}

func compareLapTime(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
