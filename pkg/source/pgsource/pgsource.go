// Package pgsource serves imported sessions from postgres.
package pgsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/repository"
	analysisrepos "github.com/mpapenbr/racepace/pkg/repository/analysis"
	driverrepos "github.com/mpapenbr/racepace/pkg/repository/driver"
	laprepos "github.com/mpapenbr/racepace/pkg/repository/lap"
	pitrepos "github.com/mpapenbr/racepace/pkg/repository/pitstop"
	sessionrepos "github.com/mpapenbr/racepace/pkg/repository/session"
	stintrepos "github.com/mpapenbr/racepace/pkg/repository/stint"
	"github.com/mpapenbr/racepace/pkg/source"
)

type Source struct {
	pool *pgxpool.Pool
	l    *log.Logger
}

var _ source.DataSource = (*Source)(nil)

func New(pool *pgxpool.Pool, l *log.Logger) *Source {
	if l == nil {
		l = log.Default()
	}
	return &Source{pool: pool, l: l.Named("pgsource")}
}

func (s *Source) Session(ctx context.Context, sessionKey int) (*model.Session, error) {
	ret, err := sessionrepos.LoadByKey(ctx, s.pool, sessionKey)
	if errors.Is(err, repository.ErrNoData) {
		return nil, fmt.Errorf("session %d: %w", sessionKey, source.ErrNotFound)
	}
	return ret, err
}

func (s *Source) Drivers(ctx context.Context, sessionKey int) ([]model.Driver, error) {
	return driverrepos.LoadBySession(ctx, s.pool, sessionKey)
}

func (s *Source) Laps(ctx context.Context, sessionKey int) ([]model.LapRecord, error) {
	return laprepos.LoadBySession(ctx, s.pool, sessionKey)
}

func (s *Source) Stints(ctx context.Context, sessionKey int) ([]model.StintRecord, error) {
	return stintrepos.LoadBySession(ctx, s.pool, sessionKey)
}

func (s *Source) PitStops(ctx context.Context, sessionKey int) ([]model.PitStopRecord, error) {
	return pitrepos.LoadBySession(ctx, s.pool, sessionKey)
}

// Sessions lists the imported sessions.
func (s *Source) Sessions(ctx context.Context) ([]model.Session, error) {
	return sessionrepos.LoadAll(ctx, s.pool)
}

// Store replaces all data of the session in one transaction.
func (s *Source) Store(ctx context.Context, data *model.SessionData) error {
	key := data.Session.SessionKey
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := sessionrepos.DeleteByKey(ctx, tx, key); err != nil {
			return err
		}
		if err := sessionrepos.Upsert(ctx, tx, &data.Session); err != nil {
			return fmt.Errorf("session: %w", err)
		}
		if err := driverrepos.Create(ctx, tx, key, data.Drivers); err != nil {
			return fmt.Errorf("drivers: %w", err)
		}
		if err := laprepos.Create(ctx, tx, key, data.Laps); err != nil {
			return fmt.Errorf("laps: %w", err)
		}
		if err := stintrepos.Create(ctx, tx, key, data.Stints); err != nil {
			return fmt.Errorf("stints: %w", err)
		}
		if err := pitrepos.Create(ctx, tx, key, data.PitStops); err != nil {
			return fmt.Errorf("pit stops: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.l.Info("Stored session",
		log.Int("sessionKey", key),
		log.Int("drivers", len(data.Drivers)),
		log.Int("laps", len(data.Laps)),
		log.Int("stints", len(data.Stints)),
		log.Int("pitStops", len(data.PitStops)))
	return nil
}

// Delete removes the session including its analysis snapshots.
// Returns the number of deleted sessions.
func (s *Source) Delete(ctx context.Context, sessionKey int) (int, error) {
	var num int
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) (err error) {
		if _, err = analysisrepos.DeleteBySession(ctx, tx, sessionKey); err != nil {
			return err
		}
		num, err = sessionrepos.DeleteByKey(ctx, tx, sessionKey)
		return err
	})
	return num, err
}

// SaveAnalysis stores a snapshot of a.
func (s *Source) SaveAnalysis(ctx context.Context, a *model.SessionAnalysis) error {
	snap, err := analysisrepos.Create(ctx, s.pool, a)
	if err != nil {
		return err
	}
	s.l.Debug("Stored analysis", log.Int("sessionKey", a.SessionKey),
		log.String("id", snap.ID.String()))
	return nil
}

// LatestAnalysis returns source.ErrNotFound if no snapshot exists.
func (s *Source) LatestAnalysis(ctx context.Context, sessionKey int) (*model.SessionAnalysis, error) {
	snap, err := analysisrepos.LoadLatest(ctx, s.pool, sessionKey)
	if errors.Is(err, repository.ErrNoData) {
		return nil, fmt.Errorf("analysis %d: %w", sessionKey, source.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &snap.Analysis, nil
}
