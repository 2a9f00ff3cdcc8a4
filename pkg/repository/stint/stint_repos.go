//nolint:whitespace //can't make both the linter and editor happy :(
package stint

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository"
)

func Create(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
	stints []model.StintRecord,
) error {
	if err := model.ValidateStints(stints); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i := range stints {
		s := &stints[i]
		batch.Queue(`
insert into stint (session_key, driver_number, stint_number, compound,
	lap_start, lap_end, tyre_age_at_start)
values ($1,$2,$3,$4,$5,$6,$7)`,
			sessionKey, s.DriverNumber, s.StintNumber, string(s.Compound),
			s.LapStart, s.LapEnd, s.TyreAgeAtStart)
	}
	return conn.SendBatch(ctx, batch).Close()
}

// LoadBySession returns the stints ordered by driver and stint number.
func LoadBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
) ([]model.StintRecord, error) {
	rows, err := conn.Query(ctx, `
select st.driver_number, st.stint_number, st.compound, st.lap_start, st.lap_end,
	st.tyre_age_at_start, s.meeting_key
from stint st join session s on s.session_key=st.session_key
where st.session_key=$1
order by st.driver_number, st.stint_number`, sessionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := []model.StintRecord{}
	for rows.Next() {
		s := model.StintRecord{SessionKey: sessionKey}
		var compound string
		if err := rows.Scan(&s.DriverNumber, &s.StintNumber, &compound,
			&s.LapStart, &s.LapEnd, &s.TyreAgeAtStart, &s.MeetingKey); err != nil {
			return nil, err
		}
		s.Compound = model.Compound(compound)
		ret = append(ret, s)
	}
	return ret, rows.Err()
}

func DeleteBySession(ctx context.Context, conn repository.Querier, sessionKey int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from stint where session_key=$1", sessionKey)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
