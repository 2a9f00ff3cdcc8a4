// Package source defines where session data comes from.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/racepace/pkg/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrSessionInProgress = errors.New("session in progress")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnavailable       = errors.New("source unavailable")
)

// DataSource provides the raw data of a session.
type DataSource interface {
	Session(ctx context.Context, sessionKey int) (*model.Session, error)
	Drivers(ctx context.Context, sessionKey int) ([]model.Driver, error)
	Laps(ctx context.Context, sessionKey int) ([]model.LapRecord, error)
	Stints(ctx context.Context, sessionKey int) ([]model.StintRecord, error)
	PitStops(ctx context.Context, sessionKey int) ([]model.PitStopRecord, error)
}

// APIError is returned by remote sources for non 2xx responses.
type APIError struct {
	Status    int
	Endpoint  string
	Message   string
	Timestamp time.Time
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// Unwrap maps the status to one of the package errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized &&
		strings.Contains(strings.ToLower(e.Message), "progress"):
		return ErrSessionInProgress
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= http.StatusInternalServerError:
		return ErrUnavailable
	}
	return nil
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// LoadBundle fetches all data of a session concurrently and validates it.
func LoadBundle(ctx context.Context, src DataSource, sessionKey int) (*model.SessionData, error) {
	ret := &model.SessionData{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := src.Session(gctx, sessionKey)
		if err != nil {
			return fmt.Errorf("session: %w", err)
		}
		ret.Session = *s
		return nil
	})
	g.Go(func() (err error) {
		if ret.Drivers, err = src.Drivers(gctx, sessionKey); err != nil {
			return fmt.Errorf("drivers: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if ret.Laps, err = src.Laps(gctx, sessionKey); err != nil {
			return fmt.Errorf("laps: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if ret.Stints, err = src.Stints(gctx, sessionKey); err != nil {
			return fmt.Errorf("stints: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if ret.PitStops, err = src.PitStops(gctx, sessionKey); err != nil {
			return fmt.Errorf("pit stops: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := model.ValidateLaps(ret.Laps); err != nil {
		return nil, err
	}
	if err := model.ValidateStints(ret.Stints); err != nil {
		return nil, err
	}
	return ret, nil
}
