//nolint:whitespace //can't make both the linter and editor happy :(
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository"
)

// Upsert stores the session, an existing entry with the same key is replaced.
func Upsert(ctx context.Context, conn repository.Querier, s *model.Session) error {
	_, err := conn.Exec(ctx, `
insert into session (session_key, meeting_key, session_name, session_type,
	date_start, date_end, gmt_offset, location, country_name, country_code,
	circuit_key, circuit_short_name, year, imported_at)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, now())
on conflict (session_key) do update set
	meeting_key=excluded.meeting_key,
	session_name=excluded.session_name,
	session_type=excluded.session_type,
	date_start=excluded.date_start,
	date_end=excluded.date_end,
	gmt_offset=excluded.gmt_offset,
	location=excluded.location,
	country_name=excluded.country_name,
	country_code=excluded.country_code,
	circuit_key=excluded.circuit_key,
	circuit_short_name=excluded.circuit_short_name,
	year=excluded.year,
	imported_at=now()`,
		s.SessionKey, s.MeetingKey, s.SessionName, s.SessionType,
		nullTime(s.DateStart), nullTime(s.DateEnd), s.GmtOffset, s.Location,
		s.CountryName, s.CountryCode, s.CircuitKey, s.CircuitShortName, s.Year)
	return err
}

// LoadByKey returns repository.ErrNoData if the session is unknown.
func LoadByKey(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
) (*model.Session, error) {
	row := conn.QueryRow(ctx,
		fmt.Sprintf("%s where session_key=$1", selector), sessionKey)
	var item model.Session
	if err := scan(&item, row); err != nil {
		return nil, repository.NoDataOnEmpty(err)
	}
	return &item, nil
}

// LoadAll returns the stored sessions, latest first.
func LoadAll(ctx context.Context, conn repository.Querier) ([]model.Session, error) {
	rows, err := conn.Query(ctx,
		fmt.Sprintf("%s order by date_start desc nulls last, session_key desc", selector))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ret := []model.Session{}
	for rows.Next() {
		var item model.Session
		if err := scan(&item, rows); err != nil {
			return nil, err
		}
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

// DeleteByKey removes the session and all dependent rows.
// Returns the number of deleted sessions.
func DeleteByKey(ctx context.Context, conn repository.Querier, sessionKey int) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from session where session_key=$1", sessionKey)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

const selector = `select session_key, meeting_key, session_name, session_type,
	date_start, date_end, gmt_offset, location, country_name, country_code,
	circuit_key, circuit_short_name, year from session`

func scan(s *model.Session, row pgx.Row) error {
	var start, end *time.Time
	if err := row.Scan(&s.SessionKey, &s.MeetingKey, &s.SessionName, &s.SessionType,
		&start, &end, &s.GmtOffset, &s.Location, &s.CountryName, &s.CountryCode,
		&s.CircuitKey, &s.CircuitShortName, &s.Year); err != nil {
		return err
	}
	if start != nil {
		s.DateStart = start.UTC()
	}
	if end != nil {
		s.DateEnd = end.UTC()
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
