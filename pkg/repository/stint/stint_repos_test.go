package stint_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository/stint"
	base "github.com/mpapenbr/racepace/testsupport/basedata"
	"github.com/mpapenbr/racepace/testsupport/testdb"
)

func TestLoadBySession(t *testing.T) {
	pool := testdb.InitTestDB()
	want := base.CreateSampleSession(pool)

	got, err := stint.LoadBySession(context.Background(), pool, base.SessionKey)
	if err != nil {
		t.Fatalf("LoadBySession() error = %v", err)
	}
	if diff := cmp.Diff(want.Stints, got); diff != "" {
		t.Errorf("LoadBySession() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateInvalid(t *testing.T) {
	pool := testdb.InitTestDB()
	base.CreateSampleSession(pool)
	err := stint.Create(context.Background(), pool, base.SessionKey,
		[]model.StintRecord{{DriverNumber: 1, StintNumber: 9, LapStart: 5, LapEnd: 4}})
	if !errors.Is(err, model.ErrInvalidStint) {
		t.Errorf("Create() error = %v, want ErrInvalidStint", err)
	}
}
