// Package basedata provides a small sample session for tests.
package basedata

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/racepace/pkg/model"
	driverrepos "github.com/mpapenbr/racepace/pkg/repository/driver"
	laprepos "github.com/mpapenbr/racepace/pkg/repository/lap"
	pitrepos "github.com/mpapenbr/racepace/pkg/repository/pitstop"
	sessionrepos "github.com/mpapenbr/racepace/pkg/repository/session"
	stintrepos "github.com/mpapenbr/racepace/pkg/repository/stint"
)

const (
	SessionKey = 9158
	MeetingKey = 1219
)

func TestTime() time.Time {
	t, _ := time.Parse(time.RFC3339, "2023-09-17T12:00:00Z")
	return t
}

func SampleSession() model.Session {
	return model.Session{
		SessionKey:       SessionKey,
		MeetingKey:       MeetingKey,
		SessionName:      "Race",
		SessionType:      "Race",
		DateStart:        TestTime(),
		DateEnd:          TestTime().Add(2 * time.Hour),
		GmtOffset:        "08:00:00",
		Location:         "Marina Bay",
		CountryName:      "Singapore",
		CountryCode:      "SGP",
		CircuitKey:       61,
		CircuitShortName: "Singapore",
		Year:             2023,
	}
}

func SampleDrivers() []model.Driver {
	return []model.Driver{
		{
			SessionKey: SessionKey, MeetingKey: MeetingKey, DriverNumber: 1,
			BroadcastName: "M VERSTAPPEN", FullName: "Max VERSTAPPEN",
			NameAcronym: "VER", TeamName: "Red Bull Racing", TeamColour: "3671C6",
			FirstName: "Max", LastName: "Verstappen", CountryCode: "NED",
		},
		{
			SessionKey: SessionKey, MeetingKey: MeetingKey, DriverNumber: 44,
			BroadcastName: "L HAMILTON", FullName: "Lewis HAMILTON",
			NameAcronym: "HAM", TeamName: "Mercedes", TeamColour: "6CD3BF",
			FirstName: "Lewis", LastName: "Hamilton", CountryCode: "GBR",
		},
	}
}

// SampleLaps contains 4 laps per driver. Driver 1 leads throughout,
// driver 44 pits at the end of lap 2.
func SampleLaps() []model.LapRecord {
	lap := func(driver, num int, duration float64, pitOut bool) model.LapRecord {
		return model.LapRecord{
			SessionKey:      SessionKey,
			MeetingKey:      MeetingKey,
			DriverNumber:    driver,
			LapNumber:       num,
			LapDuration:     model.Seconds(duration),
			Sector1Duration: model.Seconds(30),
			Sector2Duration: model.Seconds(30),
			Sector3Duration: model.Seconds(duration - 60),
			IsPitOutLap:     pitOut,
			DateStart:       TestTime().Add(time.Duration(num) * 95 * time.Second),
		}
	}
	return []model.LapRecord{
		lap(1, 1, 95.0, false),
		lap(44, 1, 95.5, false),
		lap(1, 2, 94.5, false),
		lap(44, 2, 94.5, false),
		lap(1, 3, 94.0, false),
		lap(44, 3, 115.0, true),
		lap(1, 4, 93.5, false),
		lap(44, 4, 93.0, false),
	}
}

func SampleStints() []model.StintRecord {
	return []model.StintRecord{
		{
			SessionKey: SessionKey, MeetingKey: MeetingKey, DriverNumber: 1,
			StintNumber: 1, Compound: model.CompoundMedium, LapStart: 1, LapEnd: 4,
		},
		{
			SessionKey: SessionKey, MeetingKey: MeetingKey, DriverNumber: 44,
			StintNumber: 1, Compound: model.CompoundMedium, LapStart: 1, LapEnd: 2,
		},
		{
			SessionKey: SessionKey, MeetingKey: MeetingKey, DriverNumber: 44,
			StintNumber: 2, Compound: model.CompoundHard, LapStart: 3, LapEnd: 4,
			TyreAgeAtStart: 3,
		},
	}
}

func SamplePitStops() []model.PitStopRecord {
	return []model.PitStopRecord{
		{
			SessionKey: SessionKey, MeetingKey: MeetingKey, DriverNumber: 44,
			LapNumber: 2, PitDuration: 22.4,
			Date: TestTime().Add(285 * time.Second),
		},
	}
}

func SampleSessionData() *model.SessionData {
	return &model.SessionData{
		Session:  SampleSession(),
		Drivers:  SampleDrivers(),
		Laps:     SampleLaps(),
		Stints:   SampleStints(),
		PitStops: SamplePitStops(),
	}
}

// CreateSampleSession stores the sample session with all its data.
func CreateSampleSession(pool *pgxpool.Pool) *model.SessionData {
	ctx := context.Background()
	data := SampleSessionData()
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if err := sessionrepos.Upsert(ctx, tx, &data.Session); err != nil {
			return err
		}
		if err := driverrepos.Create(ctx, tx, SessionKey, data.Drivers); err != nil {
			return err
		}
		if err := laprepos.Create(ctx, tx, SessionKey, data.Laps); err != nil {
			return err
		}
		if err := stintrepos.Create(ctx, tx, SessionKey, data.Stints); err != nil {
			return err
		}
		return pitrepos.Create(ctx, tx, SessionKey, data.PitStops)
	})
	if err != nil {
		log.Fatalf("CreateSampleSession: %v\n", err)
	}
	return data
}
