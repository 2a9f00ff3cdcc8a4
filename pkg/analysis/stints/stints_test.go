//nolint:funlen,lll // ok for tests
package stints

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpapenbr/racepace/pkg/model"
)

func tl(driver, num int, compound string, life int) TyreLap {
	return TyreLap{
		Lap:      model.LapRecord{SessionKey: 9158, DriverNumber: driver, LapNumber: num, LapDuration: model.Seconds(90)},
		Compound: compound,
		TyreLife: &life,
	}
}

func pitOut(t TyreLap) TyreLap {
	t.Lap.IsPitOutLap = true
	return t
}

func st(driver, num int, c model.Compound, start, end, age int) model.StintRecord {
	return model.StintRecord{SessionKey: 9158, DriverNumber: driver, StintNumber: num, Compound: c, LapStart: start, LapEnd: end, TyreAgeAtStart: age}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		input []TyreLap
		want  []model.StintRecord
	}{
		{
			name:  "compound change",
			input: []TyreLap{tl(1, 1, "SOFT", 1), tl(1, 2, "SOFT", 2), tl(1, 3, "HARD", 1), tl(1, 4, "HARD", 2)},
			want:  []model.StintRecord{st(1, 1, model.CompoundSoft, 1, 2, 0), st(1, 2, model.CompoundHard, 3, 4, 0)},
		},
		{
			name:  "used tyres",
			input: []TyreLap{tl(1, 1, "medium", 4), tl(1, 2, "medium", 5)},
			want:  []model.StintRecord{st(1, 1, model.CompoundMedium, 1, 2, 3)},
		},
		{
			name:  "same compound after pit stop",
			input: []TyreLap{tl(1, 1, "HARD", 1), tl(1, 2, "HARD", 2), pitOut(tl(1, 3, "HARD", 1)), tl(1, 4, "HARD", 2)},
			want:  []model.StintRecord{st(1, 1, model.CompoundHard, 1, 2, 0), st(1, 2, model.CompoundHard, 3, 4, 0)},
		},
		{
			name:  "tyre life drops without pit out flag",
			input: []TyreLap{tl(1, 1, "HARD", 10), tl(1, 2, "HARD", 11), tl(1, 3, "HARD", 3)},
			want:  []model.StintRecord{st(1, 1, model.CompoundHard, 1, 2, 9), st(1, 2, model.CompoundHard, 3, 3, 2)},
		},
		{
			name:  "unsorted input and several drivers",
			input: []TyreLap{tl(44, 2, "SOFT", 2), tl(1, 1, "WET", 1), tl(44, 1, "SOFT", 1), tl(1, 2, "TEST_UNKNOWN", 1)},
			want: []model.StintRecord{
				st(44, 1, model.CompoundSoft, 1, 2, 0),
				st(1, 1, model.CompoundWet, 1, 1, 0),
				st(1, 2, model.CompoundUnknown, 2, 2, 0),
			},
		},
		{
			name:  "empty",
			input: nil,
			want:  []model.StintRecord{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Derive() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeriveUnknownTyreLife(t *testing.T) {
	first := tl(1, 1, "SOFT", 0)
	first.TyreLife = nil
	got := Derive([]TyreLap{first, tl(1, 2, "SOFT", 2)})
	want := []model.StintRecord{st(1, 1, model.CompoundSoft, 1, 2, 0)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Derive() mismatch (-want +got):\n%s", diff)
	}
}
