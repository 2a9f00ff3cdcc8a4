//nolint:whitespace //can't make both the linter and editor happy :(
package pitstop

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository"
)

func Create(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
	pits []model.PitStopRecord,
) error {
	batch := &pgx.Batch{}
	for i := range pits {
		p := &pits[i]
		var date *time.Time
		if !p.Date.IsZero() {
			date = &p.Date
		}
		batch.Queue(`
insert into pit_stop (session_key, driver_number, lap_number, pit_duration, date)
values ($1,$2,$3,$4,$5)`,
			sessionKey, p.DriverNumber, p.LapNumber, p.PitDuration, date)
	}
	return conn.SendBatch(ctx, batch).Close()
}

// LoadBySession returns the pit stops in insertion order.
func LoadBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
) ([]model.PitStopRecord, error) {
	rows, err := conn.Query(ctx, `
select p.driver_number, p.lap_number, p.pit_duration, p.date, s.meeting_key
from pit_stop p join session s on s.session_key=p.session_key
where p.session_key=$1
order by p.id`, sessionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := []model.PitStopRecord{}
	for rows.Next() {
		p := model.PitStopRecord{SessionKey: sessionKey}
		var date *time.Time
		if err := rows.Scan(&p.DriverNumber, &p.LapNumber, &p.PitDuration,
			&date, &p.MeetingKey); err != nil {
			return nil, err
		}
		if date != nil {
			p.Date = date.UTC()
		}
		ret = append(ret, p)
	}
	return ret, rows.Err()
}

func DeleteBySession(ctx context.Context, conn repository.Querier, sessionKey int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from pit_stop where session_key=$1", sessionKey)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
