// Package stints derives stint records from laps that carry tyre information.
package stints

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/pkg/model"
)

// TyreLap is a lap together with the tyre it was driven on.
type TyreLap struct {
	Lap      model.LapRecord
	Compound string
	// laps driven on this tyre including the current one, nil if unknown
	TyreLife *int
}

// Derive builds stints per driver. A new stint starts when the compound
// changes, on a pit-out lap or when the tyre life drops.
// Drivers appear in order of their first lap in records.
func Derive(records []TyreLap) []model.StintRecord {
	byDriver := lo.GroupBy(records, func(t TyreLap) int { return t.Lap.DriverNumber })
	driverOrder := lo.Uniq(lo.Map(records, func(t TyreLap, _ int) int { return t.Lap.DriverNumber }))

	ret := []model.StintRecord{}
	for _, d := range driverOrder {
		ret = append(ret, deriveDriver(sortTyreLaps(byDriver[d]))...)
	}
	return ret
}

// sortTyreLaps orders by lap number, the first record per lap wins.
func sortTyreLaps(items []TyreLap) []TyreLap {
	ret := lo.UniqBy(items, func(t TyreLap) int { return t.Lap.LapNumber })
	slices.SortStableFunc(ret, func(a, b TyreLap) int {
		return cmp.Compare(a.Lap.LapNumber, b.Lap.LapNumber)
	})
	return ret
}

func deriveDriver(items []TyreLap) []model.StintRecord {
	ret := []model.StintRecord{}
	var cur *model.StintRecord
	lastLife := 0
	for i := range items {
		item := &items[i]
		compound, err := model.ParseCompound(item.Compound)
		if err != nil {
			compound = model.CompoundUnknown
		}
		life := lo.FromPtr(item.TyreLife)
		newSet := item.TyreLife != nil && lastLife > 0 && life < lastLife
		if cur == nil || compound != cur.Compound || item.Lap.IsPitOutLap || newSet {
			if cur != nil {
				ret = append(ret, *cur)
			}
			cur = &model.StintRecord{
				SessionKey:     item.Lap.SessionKey,
				MeetingKey:     item.Lap.MeetingKey,
				DriverNumber:   item.Lap.DriverNumber,
				StintNumber:    len(ret) + 1,
				Compound:       compound,
				LapStart:       item.Lap.LapNumber,
				TyreAgeAtStart: max(life-1, 0),
			}
		}
		cur.LapEnd = item.Lap.LapNumber
		if item.TyreLife != nil {
			lastLife = life
		}
	}
	if cur != nil {
		ret = append(ret, *cur)
	}
	return ret
}
