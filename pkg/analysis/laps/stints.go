package laps

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/pkg/model"
)

// InStint returns the valid laps of the stint's driver within the stint range,
// ordered by lap number.
func InStint(laps []model.LapRecord, stint *model.StintRecord) []model.LapRecord {
	ret := lo.Filter(laps, func(l model.LapRecord, _ int) bool {
		return l.DriverNumber == stint.DriverNumber && stint.Contains(l.LapNumber) && IsValid(&l)
	})
	return SortByLapNumber(ret)
}

// ByStint groups the valid laps of each stint. The average is 0 for stints
// without valid laps.
func ByStint(laps []model.LapRecord, stints []model.StintRecord) []model.StintLaps {
	ret := make([]model.StintLaps, 0, len(stints))
	for i := range stints {
		stintLaps := InStint(laps, &stints[i])
		avg := 0.0
		if len(stintLaps) > 0 {
			avg = lo.SumBy(stintLaps, func(l model.LapRecord) float64 {
				return *l.LapDuration
			}) / float64(len(stintLaps))
		}
		ret = append(ret, model.StintLaps{
			Stint:          stints[i],
			Laps:           stintLaps,
			AverageLapTime: avg,
		})
	}
	return ret
}

// EnrichWithPitInfo marks laps on which the driver visited the pit lane.
// The first matching pit stop is used.
func EnrichWithPitInfo(laps []model.LapRecord, pits []model.PitStopRecord) []model.LapWithPitInfo {
	return lo.Map(laps, func(l model.LapRecord, _ int) model.LapWithPitInfo {
		ret := model.LapWithPitInfo{
			LapNumber:    l.LapNumber,
			DriverNumber: l.DriverNumber,
			LapDuration:  l.LapDuration,
		}
		if pit, ok := lo.Find(pits, func(p model.PitStopRecord) bool {
			return p.DriverNumber == l.DriverNumber && p.LapNumber == l.LapNumber
		}); ok {
			ret.IsPitLap = true
			ret.PitDuration = model.Seconds(pit.PitDuration)
		}
		return ret
	})
}

// FilterByRange keeps rows within [from, to]. A bound of 0 is open.
func FilterByRange(rows []model.LapRow, from, to int) []model.LapRow {
	if from <= 0 && to <= 0 {
		return rows
	}
	return lo.Filter(rows, func(r model.LapRow, _ int) bool {
		if from > 0 && r.LapNumber < from {
			return false
		}
		if to > 0 && r.LapNumber > to {
			return false
		}
		return true
	})
}
