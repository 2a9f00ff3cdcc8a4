//nolint:funlen,lll // ok for tests
package degradation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racepace/pkg/model"
)

func lap(driver, num int, dur float64) model.LapRecord {
	return model.LapRecord{DriverNumber: driver, LapNumber: num, LapDuration: model.Seconds(dur)}
}

func pitOut(driver, num int, dur float64) model.LapRecord {
	l := lap(driver, num, dur)
	l.IsPitOutLap = true
	return l
}

func stint(driver, num, start, end int, c model.Compound) model.StintRecord {
	return model.StintRecord{DriverNumber: driver, StintNumber: num, LapStart: start, LapEnd: end, Compound: c}
}

func TestComputeScenario(t *testing.T) {
	laps := []model.LapRecord{
		lap(1, 1, 90.0), lap(1, 2, 89.5), lap(1, 3, 89.0),
		lap(44, 1, 91.0), lap(44, 2, 90.0), lap(44, 3, 89.0),
	}
	stints := []model.StintRecord{
		stint(1, 1, 1, 3, model.CompoundSoft),
		stint(44, 1, 1, 3, model.CompoundSoft),
	}
	got, err := Compute(laps, stints)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].DriverNumber)
	assert.Equal(t, model.CompoundSoft, got[0].Compound)
	assert.InDelta(t, -0.5, got[0].DegradationPerLap, 1e-9)
	assert.InDelta(t, 1.0, got[0].RSquared, 1e-9)
	assert.InDelta(t, -1.0, got[0].TotalDegradation, 1e-9)
	assert.InDelta(t, 89.5, got[0].AverageLapTime, 1e-9)
	require.NotNil(t, got[0].GapPerLap)
	assert.InDelta(t, 0.0, *got[0].GapPerLap, 1e-9)

	assert.Equal(t, 44, got[1].DriverNumber)
	assert.InDelta(t, -1.0, got[1].DegradationPerLap, 1e-9)
	assert.InDelta(t, 1.0, got[1].RSquared, 1e-9)
	assert.InDelta(t, -2.0, got[1].TotalDegradation, 1e-9)
	assert.InDelta(t, 90.0, got[1].AverageLapTime, 1e-9)
	require.NotNil(t, got[1].GapPerLap)
	assert.InDelta(t, 0.5, *got[1].GapPerLap, 1e-9)
}

func TestMinimumSample(t *testing.T) {
	tests := []struct {
		name  string
		laps  []model.LapRecord
		opts  []Option
		count int
	}{
		{"two laps are skipped", []model.LapRecord{lap(1, 1, 90), lap(1, 2, 90.2)}, nil, 0},
		{"three laps are used", []model.LapRecord{lap(1, 1, 90), lap(1, 2, 90.2), lap(1, 3, 90.4)}, nil, 1},
		{"pit out lap does not count", []model.LapRecord{pitOut(1, 1, 110), lap(1, 2, 90.2), lap(1, 3, 90.4)}, nil, 0},
		{"missing duration does not count", []model.LapRecord{{DriverNumber: 1, LapNumber: 1}, lap(1, 2, 90.2), lap(1, 3, 90.4)}, nil, 0},
		{"duplicate laps count once", []model.LapRecord{lap(1, 1, 90), lap(1, 1, 90), lap(1, 2, 90.2)}, nil, 0},
		{"custom minimum", []model.LapRecord{lap(1, 1, 90), lap(1, 2, 90.2), lap(1, 3, 90.4)}, []Option{WithMinimumLaps(4)}, 0},
		{"minimum below 2 ignored", []model.LapRecord{lap(1, 1, 90), lap(1, 2, 90.2)}, []Option{WithMinimumLaps(1)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.laps, []model.StintRecord{stint(1, 1, 1, 5, model.CompoundMedium)}, tt.opts...)
			require.NoError(t, err)
			assert.Len(t, got, tt.count)
		})
	}
}

func TestPitOutLapExcludedFromRegression(t *testing.T) {
	laps := []model.LapRecord{pitOut(1, 10, 110), lap(1, 11, 90), lap(1, 12, 90.1), lap(1, 13, 90.2)}
	got, err := Compute(laps, []model.StintRecord{stint(1, 2, 10, 20, model.CompoundHard)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.1, got[0].DegradationPerLap, 1e-9)
	// extrapolated over the nominal length of 10 laps
	assert.InDelta(t, 1.0, got[0].TotalDegradation, 1e-9)
	assert.InDelta(t, 90.1, got[0].AverageLapTime, 1e-9)
}

func TestResultOrderFollowsStints(t *testing.T) {
	laps := []model.LapRecord{}
	for i := 1; i <= 10; i++ {
		laps = append(laps, lap(1, i, 90+float64(i)*0.1), lap(44, i, 91+float64(i)*0.05))
	}
	stints := []model.StintRecord{
		stint(44, 2, 6, 10, model.CompoundHard),
		stint(1, 1, 1, 5, model.CompoundSoft),
		stint(44, 1, 1, 5, model.CompoundMedium),
		stint(1, 2, 6, 10, model.CompoundHard),
	}
	got, err := Compute(laps, stints)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i := range stints {
		assert.Equal(t, stints[i].DriverNumber, got[i].DriverNumber)
		assert.Equal(t, stints[i].StintNumber, got[i].StintNumber)
	}
}

func TestGapPerLap(t *testing.T) {
	// driver 16 leads, driver 1 loses 0.5s per lap in the second stint
	laps := []model.LapRecord{}
	for i := 1; i <= 6; i++ {
		laps = append(laps, lap(16, i, 90), lap(1, i, 90.5))
	}
	t.Run("window after race start", func(t *testing.T) {
		got, err := Compute(laps, []model.StintRecord{stint(1, 2, 4, 6, model.CompoundHard)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].GapPerLap)
		assert.InDelta(t, 0.5, *got[0].GapPerLap, 1e-9)
	})
	t.Run("first stint uses race start", func(t *testing.T) {
		got, err := Compute(laps, []model.StintRecord{stint(1, 1, 1, 3, model.CompoundSoft)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.NotNil(t, got[0].GapPerLap)
		assert.InDelta(t, 0.5, *got[0].GapPerLap, 1e-9)
	})
	t.Run("undefined leader boundary", func(t *testing.T) {
		// no driver has a lap time for lap 3
		sparse := []model.LapRecord{
			lap(1, 1, 90), lap(1, 2, 90), {DriverNumber: 1, LapNumber: 3}, lap(1, 4, 90), lap(1, 5, 90), lap(1, 6, 90),
		}
		got, err := Compute(sparse, []model.StintRecord{stint(1, 2, 4, 6, model.CompoundHard)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].GapPerLap)
	})
}

func TestDegenerateStint(t *testing.T) {
	laps := []model.LapRecord{lap(1, 1, 90), lap(1, 2, 90), lap(1, 3, 90)}
	got, err := Compute(laps, []model.StintRecord{stint(1, 1, 1, 3, model.CompoundSoft)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	// constant lap times give no meaningful fit quality
	assert.True(t, math.IsNaN(got[0].RSquared))
	assert.False(t, got[0].Reliable())
}

func TestComputeInvalidInput(t *testing.T) {
	_, err := Compute([]model.LapRecord{lap(1, -2, 90)}, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidLapNumber))

	_, err = Compute([]model.LapRecord{lap(1, 1, 90), lap(1, 1<<30, 90)}, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidLapNumber))

	_, err = Compute(nil, []model.StintRecord{stint(1, 1, 5, 3, model.CompoundSoft)})
	assert.True(t, errors.Is(err, model.ErrInvalidStint))
}

func TestComputeEmpty(t *testing.T) {
	got, err := Compute(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
