package driver_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpapenbr/racepace/pkg/repository/driver"
	"github.com/mpapenbr/racepace/pkg/repository/pitstop"
	base "github.com/mpapenbr/racepace/testsupport/basedata"
	"github.com/mpapenbr/racepace/testsupport/testdb"
)

func TestLoadBySession(t *testing.T) {
	pool := testdb.InitTestDB()
	want := base.CreateSampleSession(pool)

	got, err := driver.LoadBySession(context.Background(), pool, base.SessionKey)
	if err != nil {
		t.Fatalf("LoadBySession() error = %v", err)
	}
	if diff := cmp.Diff(want.Drivers, got); diff != "" {
		t.Errorf("LoadBySession() mismatch (-want +got):\n%s", diff)
	}
}

func TestPitStopsLoadBySession(t *testing.T) {
	pool := testdb.InitTestDB()
	want := base.CreateSampleSession(pool)

	got, err := pitstop.LoadBySession(context.Background(), pool, base.SessionKey)
	if err != nil {
		t.Fatalf("LoadBySession() error = %v", err)
	}
	if diff := cmp.Diff(want.PitStops, got); diff != "" {
		t.Errorf("LoadBySession() mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteBySession(t *testing.T) {
	pool := testdb.InitTestDB()
	base.CreateSampleSession(pool)
	num, err := driver.DeleteBySession(context.Background(), pool, base.SessionKey)
	if err != nil {
		t.Fatalf("DeleteBySession() error = %v", err)
	}
	if num != 2 {
		t.Errorf("DeleteBySession() = %d, want 2", num)
	}
}
