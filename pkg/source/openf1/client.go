// Package openf1 reads session data from the OpenF1 REST API.
package openf1

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/source"
)

const (
	DefaultBaseURL = "https://api.openf1.org/v1"
	DefaultTimeout = 30 * time.Second
)

type Client struct {
	getter *source.HTTPGetter
	tracer trace.Tracer
	l      *log.Logger
}

var _ source.DataSource = (*Client)(nil)

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.getter.BaseURL = u
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.getter.Client = hc
	}
}

// WithMaxRetryTime limits the time spent on retries of a single request.
func WithMaxRetryTime(d time.Duration) Option {
	return func(c *Client) {
		c.getter.MaxElapsed = d
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.l = l
		c.getter.Logger = l
	}
}

func New(opts ...Option) *Client {
	l := log.Default().Named("openf1")
	c := &Client{
		getter: &source.HTTPGetter{
			BaseURL: DefaultBaseURL,
			Client:  source.NewHTTPClient(DefaultTimeout),
			Logger:  l,
		},
		tracer: otel.Tracer("racepace/source/openf1"),
		l:      l,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

//nolint:whitespace // can't make both editor and linter happy
func fetch[T any](
	ctx context.Context,
	c *Client,
	endpoint string,
	sessionKey int,
) ([]T, error) {
	ctx, span := c.tracer.Start(ctx, "openf1"+endpoint,
		trace.WithAttributes(attribute.Int("session_key", sessionKey)))
	defer span.End()
	params := url.Values{"session_key": []string{strconv.Itoa(sessionKey)}}
	ret, err := source.GetJSON[[]T](ctx, c.getter, endpoint, params)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if ret == nil {
		ret = []T{}
	}
	span.SetAttributes(attribute.Int("items", len(ret)))
	return ret, nil
}

func (c *Client) Session(ctx context.Context, sessionKey int) (*model.Session, error) {
	sessions, err := fetch[model.Session](ctx, c, "/sessions", sessionKey)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("session %d: %w", sessionKey, source.ErrNotFound)
	}
	return &sessions[0], nil
}

func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]model.Driver, error) {
	return fetch[model.Driver](ctx, c, "/drivers", sessionKey)
}

func (c *Client) Laps(ctx context.Context, sessionKey int) ([]model.LapRecord, error) {
	return fetch[model.LapRecord](ctx, c, "/laps", sessionKey)
}

type stint struct {
	SessionKey     int     `json:"session_key"`
	MeetingKey     int     `json:"meeting_key"`
	DriverNumber   int     `json:"driver_number"`
	StintNumber    int     `json:"stint_number"`
	Compound       *string `json:"compound"`
	LapStart       *int    `json:"lap_start"`
	LapEnd         *int    `json:"lap_end"`
	TyreAgeAtStart *int    `json:"tyre_age_at_start"`
}

// Stints returns the stints sorted by driver and stint number.
// Stints without lap range (usually the running one of a live session) are
// left out.
func (c *Client) Stints(ctx context.Context, sessionKey int) ([]model.StintRecord, error) {
	raw, err := fetch[stint](ctx, c, "/stints", sessionKey)
	if err != nil {
		return nil, err
	}
	ret := make([]model.StintRecord, 0, len(raw))
	for i := range raw {
		s := &raw[i]
		if s.LapStart == nil || s.LapEnd == nil {
			c.l.Debug("skipping incomplete stint",
				log.Int("driver", s.DriverNumber), log.Int("stint", s.StintNumber))
			continue
		}
		compound, err := model.ParseCompound(lo.FromPtr(s.Compound))
		if err != nil {
			c.l.Debug("unknown compound",
				log.String("compound", lo.FromPtr(s.Compound)), log.Int("driver", s.DriverNumber))
		}
		ret = append(ret, model.StintRecord{
			SessionKey:     s.SessionKey,
			MeetingKey:     s.MeetingKey,
			DriverNumber:   s.DriverNumber,
			StintNumber:    s.StintNumber,
			Compound:       compound,
			LapStart:       *s.LapStart,
			LapEnd:         *s.LapEnd,
			TyreAgeAtStart: max(lo.FromPtr(s.TyreAgeAtStart), 0),
		})
	}
	slices.SortStableFunc(ret, func(a, b model.StintRecord) int {
		if a.DriverNumber != b.DriverNumber {
			return a.DriverNumber - b.DriverNumber
		}
		return a.StintNumber - b.StintNumber
	})
	return ret, nil
}

type pit struct {
	SessionKey   int       `json:"session_key"`
	MeetingKey   int       `json:"meeting_key"`
	DriverNumber int       `json:"driver_number"`
	LapNumber    int       `json:"lap_number"`
	PitDuration  *float64  `json:"pit_duration"`
	Date         time.Time `json:"date"`
}

// PitStops returns the pit stops ordered by time.
func (c *Client) PitStops(ctx context.Context, sessionKey int) ([]model.PitStopRecord, error) {
	raw, err := fetch[pit](ctx, c, "/pit", sessionKey)
	if err != nil {
		return nil, err
	}
	ret := lo.Map(raw, func(p pit, _ int) model.PitStopRecord {
		return model.PitStopRecord{
			SessionKey:   p.SessionKey,
			MeetingKey:   p.MeetingKey,
			DriverNumber: p.DriverNumber,
			LapNumber:    p.LapNumber,
			PitDuration:  lo.FromPtr(p.PitDuration),
			Date:         p.Date,
		}
	})
	slices.SortStableFunc(ret, func(a, b model.PitStopRecord) int {
		return a.Date.Compare(b.Date)
	})
	return ret, nil
}
