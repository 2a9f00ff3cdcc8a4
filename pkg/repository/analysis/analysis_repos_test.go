package analysis_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository"
	"github.com/mpapenbr/racepace/pkg/repository/analysis"
	base "github.com/mpapenbr/racepace/testsupport/basedata"
	"github.com/mpapenbr/racepace/testsupport/testdb"
)

func sample(drivers ...int) *model.SessionAnalysis {
	return &model.SessionAnalysis{
		SessionKey: base.SessionKey,
		Drivers:    drivers,
		LapTimes: []model.LapRow{
			{LapNumber: 1, Values: []model.DriverValue{{DriverNumber: 1, Value: model.Seconds(95)}}},
		},
		Gaps:        []model.GapRow{},
		Degradation: []model.DegradationResult{},
		ComputedAt:  base.TestTime(),
	}
}

func TestCreateAndLoadLatest(t *testing.T) {
	pool := testdb.InitTestDB()
	ctx := context.Background()

	first, err := analysis.Create(ctx, pool, sample(1))
	assert.NilError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := analysis.Create(ctx, pool, sample(1, 44))
	assert.NilError(t, err)
	assert.Assert(t, first.ID != second.ID)

	got, err := analysis.LoadLatest(ctx, pool, base.SessionKey)
	assert.NilError(t, err)
	assert.Equal(t, got.ID, second.ID)
	assert.DeepEqual(t, got.Analysis.Drivers, []int{1, 44})
	v, ok := got.Analysis.LapTimes[0].Value(1)
	assert.Assert(t, ok)
	assert.Equal(t, *v, 95.0)
	assert.Assert(t, got.Analysis.ComputedAt.Equal(base.TestTime()))
}

func TestLoadLatestNoData(t *testing.T) {
	pool := testdb.InitTestDB()
	_, err := analysis.LoadLatest(context.Background(), pool, base.SessionKey)
	assert.Assert(t, errors.Is(err, repository.ErrNoData))
}

func TestDeleteBySession(t *testing.T) {
	pool := testdb.InitTestDB()
	ctx := context.Background()
	_, err := analysis.Create(ctx, pool, sample(1))
	assert.NilError(t, err)
	_, err = analysis.Create(ctx, pool, sample(44))
	assert.NilError(t, err)

	num, err := analysis.DeleteBySession(ctx, pool, base.SessionKey)
	assert.NilError(t, err)
	assert.Equal(t, num, 2)
}
