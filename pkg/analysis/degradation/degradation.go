// Package degradation derives tyre degradation metrics per stint.
package degradation

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/racepace/pkg/analysis/gap"
	"github.com/mpapenbr/racepace/pkg/analysis/laps"
	"github.com/mpapenbr/racepace/pkg/analysis/regression"
	"github.com/mpapenbr/racepace/pkg/model"
)

// DefaultMinimumLaps is the number of valid laps a stint needs for a fit.
const DefaultMinimumLaps = 3

type Option func(*config)

type config struct {
	minimumLaps int
}

// WithMinimumLaps changes the required number of valid laps per stint.
// Values below 2 are ignored.
func WithMinimumLaps(n int) Option {
	return func(c *config) {
		if n >= 2 {
			c.minimumLaps = n
		}
	}
}

// Compute returns a result for every stint with enough valid laps.
// Results are in stint input order.
//
//nolint:whitespace // can't make both editor and linter happy
func Compute(
	records []model.LapRecord,
	stints []model.StintRecord,
	opts ...Option,
) ([]model.DegradationResult, error) {
	cfg := &config{minimumLaps: DefaultMinimumLaps}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := model.ValidateStints(stints); err != nil {
		return nil, err
	}
	leaders, err := gap.SessionTable(records)
	if err != nil {
		return nil, err
	}
	// duplicate laps would count twice in the regression
	unique := laps.FirstPerLap(records)

	ret := make([]model.DegradationResult, 0, len(stints))
	for i := range stints {
		stint := &stints[i]
		stintLaps := laps.InStint(unique, stint)
		if len(stintLaps) < cfg.minimumLaps {
			continue
		}
		res, err := computeStint(stint, stintLaps, leaders)
		if err != nil {
			return nil, err
		}
		ret = append(ret, res)
	}
	return ret, nil
}

//nolint:whitespace // can't make both editor and linter happy
func computeStint(
	stint *model.StintRecord,
	stintLaps []model.LapRecord,
	leaders *gap.Table,
) (model.DegradationResult, error) {
	x := lo.Map(stintLaps, func(l model.LapRecord, _ int) float64 {
		return float64(l.LapNumber - stint.LapStart)
	})
	y := lo.Map(stintLaps, func(l model.LapRecord, _ int) float64 {
		return *l.LapDuration
	})
	fit, err := regression.LinearRegression(x, y)
	if err != nil {
		return model.DegradationResult{}, err
	}
	driverTime := lo.Sum(y)
	return model.DegradationResult{
		DriverNumber:      stint.DriverNumber,
		StintNumber:       stint.StintNumber,
		Compound:          stint.Compound,
		DegradationPerLap: fit.Slope,
		TotalDegradation:  fit.Slope * float64(stint.Length()),
		AverageLapTime:    driverTime / float64(len(y)),
		RSquared:          fit.RSquared,
		GapPerLap: gapPerLap(leaders,
			stintLaps[0].LapNumber, stintLaps[len(stintLaps)-1].LapNumber, driverTime),
	}, nil
}

// gapPerLap compares the driver time over [first, last] with the time the
// leader needed from the end of lap first-1 to the end of lap last.
func gapPerLap(leaders *gap.Table, first, last int, driverTime float64) *float64 {
	start, ok := leaders.Leader(first - 1)
	if !ok {
		return nil
	}
	end, ok := leaders.Leader(last)
	if !ok {
		return nil
	}
	window := float64(last - first + 1)
	return model.Seconds((driverTime - (end - start)) / window)
}
