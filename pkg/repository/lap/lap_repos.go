//nolint:whitespace //can't make both the linter and editor happy :(
package lap

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository"
)

// Create stores the laps of a session in one batch.
// Duplicates are stored as delivered, the analytics resolve them.
func Create(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
	laps []model.LapRecord,
) error {
	batch := &pgx.Batch{}
	for i := range laps {
		l := &laps[i]
		batch.Queue(`
insert into lap (session_key, driver_number, lap_number, lap_duration,
	duration_sector_1, duration_sector_2, duration_sector_3, is_pit_out_lap,
	date_start, i1_speed, i2_speed, st_speed, total_seconds)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
			sessionKey, l.DriverNumber, l.LapNumber, l.LapDuration,
			l.Sector1Duration, l.Sector2Duration, l.Sector3Duration, l.IsPitOutLap,
			nullTime(l.DateStart), l.I1Speed, l.I2Speed, l.StSpeed, l.TotalSeconds)
	}
	return conn.SendBatch(ctx, batch).Close()
}

// LoadBySession returns the laps in insertion order.
func LoadBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
) ([]model.LapRecord, error) {
	rows, err := conn.Query(ctx, `
select l.driver_number, l.lap_number, l.lap_duration, l.duration_sector_1,
	l.duration_sector_2, l.duration_sector_3, l.is_pit_out_lap, l.date_start,
	l.i1_speed, l.i2_speed, l.st_speed, l.total_seconds, s.meeting_key
from lap l join session s on s.session_key=l.session_key
where l.session_key=$1
order by l.id`, sessionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := []model.LapRecord{}
	for rows.Next() {
		l := model.LapRecord{SessionKey: sessionKey}
		var start *time.Time
		if err := rows.Scan(&l.DriverNumber, &l.LapNumber, &l.LapDuration,
			&l.Sector1Duration, &l.Sector2Duration, &l.Sector3Duration,
			&l.IsPitOutLap, &start, &l.I1Speed, &l.I2Speed, &l.StSpeed,
			&l.TotalSeconds, &l.MeetingKey); err != nil {
			return nil, err
		}
		if start != nil {
			l.DateStart = start.UTC()
		}
		ret = append(ret, l)
	}
	return ret, rows.Err()
}

func DeleteBySession(ctx context.Context, conn repository.Querier, sessionKey int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from lap where session_key=$1", sessionKey)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
