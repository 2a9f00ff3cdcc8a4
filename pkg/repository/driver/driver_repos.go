//nolint:whitespace //can't make both the linter and editor happy :(
package driver

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository"
)

// Create stores the drivers of a session in one batch.
func Create(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
	drivers []model.Driver,
) error {
	batch := &pgx.Batch{}
	for i := range drivers {
		d := &drivers[i]
		batch.Queue(`
insert into driver (session_key, driver_number, broadcast_name, full_name,
	name_acronym, team_name, team_colour, first_name, last_name, headshot_url,
	country_code)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			sessionKey, d.DriverNumber, d.BroadcastName, d.FullName, d.NameAcronym,
			d.TeamName, d.TeamColour, d.FirstName, d.LastName, d.HeadshotURL,
			d.CountryCode)
	}
	return conn.SendBatch(ctx, batch).Close()
}

// LoadBySession returns the drivers ordered by driver number.
func LoadBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
) ([]model.Driver, error) {
	rows, err := conn.Query(ctx, `
select d.driver_number, d.broadcast_name, d.full_name, d.name_acronym,
	d.team_name, d.team_colour, d.first_name, d.last_name, d.headshot_url,
	d.country_code, s.meeting_key
from driver d join session s on s.session_key=d.session_key
where d.session_key=$1
order by d.driver_number`, sessionKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := []model.Driver{}
	for rows.Next() {
		d := model.Driver{SessionKey: sessionKey}
		if err := rows.Scan(&d.DriverNumber, &d.BroadcastName, &d.FullName,
			&d.NameAcronym, &d.TeamName, &d.TeamColour, &d.FirstName, &d.LastName,
			&d.HeadshotURL, &d.CountryCode, &d.MeetingKey); err != nil {
			return nil, err
		}
		ret = append(ret, d)
	}
	return ret, rows.Err()
}

func DeleteBySession(ctx context.Context, conn repository.Querier, sessionKey int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from driver where session_key=$1", sessionKey)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
