//nolint:whitespace //can't make both the linter and editor happy :(
package analysis

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid/v5"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository"
)

// Snapshot is a stored analysis run.
type Snapshot struct {
	ID         uuid.UUID
	SessionKey int
	CreatedAt  time.Time
	Analysis   model.SessionAnalysis
}

// Create stores a new snapshot for the session of a.
func Create(
	ctx context.Context,
	conn repository.Querier,
	a *model.SessionAnalysis,
) (*Snapshot, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	ret := &Snapshot{ID: id, SessionKey: a.SessionKey, Analysis: *a}
	row := conn.QueryRow(ctx, `
insert into analysis (id, session_key, payload)
values ($1,$2,$3)
returning created_at`, id, a.SessionKey, payload)
	if err := row.Scan(&ret.CreatedAt); err != nil {
		return nil, err
	}
	return ret, nil
}

// LoadLatest returns the most recent snapshot of a session.
// Returns repository.ErrNoData if there is none.
func LoadLatest(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
) (*Snapshot, error) {
	row := conn.QueryRow(ctx, `
select id, session_key, created_at, payload from analysis
where session_key=$1
order by created_at desc
limit 1`, sessionKey)
	var ret Snapshot
	var payload []byte
	if err := row.Scan(&ret.ID, &ret.SessionKey, &ret.CreatedAt, &payload); err != nil {
		return nil, repository.NoDataOnEmpty(err)
	}
	if err := json.Unmarshal(payload, &ret.Analysis); err != nil {
		return nil, err
	}
	return &ret, nil
}

// DeleteBySession removes all snapshots of a session.
func DeleteBySession(
	ctx context.Context,
	conn repository.Querier,
	sessionKey int,
) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from analysis where session_key=$1", sessionKey)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}
