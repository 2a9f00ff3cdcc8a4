package analyze

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/racepace/pkg/model"
)

func TestRender(t *testing.T) {
	data := &model.SessionData{
		Session: model.Session{SessionKey: 9158, SessionName: "Race", CircuitShortName: "Singapore"},
		Drivers: []model.Driver{{DriverNumber: 1, NameAcronym: "VER"}},
	}
	res := &model.SessionAnalysis{
		SessionKey: 9158,
		Gaps: []model.GapRow{
			{LapNumber: 2, Drivers: []model.DriverGap{
				{DriverNumber: 1, CumulativeTime: model.Seconds(189.5), GapToLeader: model.Seconds(0)},
				{DriverNumber: 44, CumulativeTime: model.Seconds(190), GapToLeader: model.Seconds(0.5)},
			}},
		},
		Degradation: []model.DegradationResult{
			{
				DriverNumber: 1, StintNumber: 1, Compound: model.CompoundMedium,
				DegradationPerLap: -0.5, TotalDegradation: -2, AverageLapTime: 94.25, RSquared: 1,
			},
		},
	}
	var b bytes.Buffer
	render(&b, data, res)
	out := b.String()
	assert.Contains(t, out, "Singapore Race (9158)")
	assert.Contains(t, out, "VER (1)")
	assert.Contains(t, out, "44")
	assert.Contains(t, out, "+0.500")
	assert.Contains(t, out, "-0.500s/lap")
	assert.Contains(t, out, "1:34.250")
}

func TestDriverNames(t *testing.T) {
	names := driverNames(&model.SessionData{
		Drivers: []model.Driver{{DriverNumber: 44, NameAcronym: "HAM"}, {DriverNumber: 2}},
	})
	assert.Equal(t, "HAM (44)", names(44))
	assert.Equal(t, "2", names(2))
	assert.Equal(t, "7", names(7))
}
