// Package fastf1 reads session data from a FastF1 backend service.
// The backend addresses sessions by year, event and session type, these are
// resolved from the session key with the help of OpenF1.
package fastf1

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/mod/semver"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/analysis/stints"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/source"
	"github.com/mpapenbr/racepace/pkg/utils/cache"
	"github.com/mpapenbr/racepace/pkg/utils/cache/loadercache"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	// FastF1 may need a while to load a session the first time
	DefaultTimeout = 60 * time.Second
	// RequiredBackendVersion is the minimum version of the backend api.
	RequiredBackendVersion = "v1.0.0"
)

// SessionResolver looks up session metadata by key.
type SessionResolver interface {
	Session(ctx context.Context, sessionKey int) (*model.Session, error)
}

// Params identify a session in the FastF1 backend.
type Params struct {
	Year        int
	Event       string
	SessionType string
}

func (p Params) values() url.Values {
	return url.Values{
		"year":         []string{strconv.Itoa(p.Year)},
		"event":        []string{p.Event},
		"session_type": []string{p.SessionType},
	}
}

var sessionTypes = map[string]string{
	"Practice 1":        "FP1",
	"Practice 2":        "FP2",
	"Practice 3":        "FP3",
	"Qualifying":        "Q",
	"Sprint":            "S",
	"Sprint Qualifying": "SQ",
	"Sprint Shootout":   "SQ",
	"Race":              "R",
}

// SessionType maps an OpenF1 session name to the FastF1 session type.
// Unknown names are treated as race.
func SessionType(sessionName string) string {
	if t, ok := sessionTypes[sessionName]; ok {
		return t
	}
	return "R"
}

// ParamsFor derives the backend parameters from session metadata.
func ParamsFor(s *model.Session) Params {
	return Params{Year: s.Year, Event: s.Location, SessionType: SessionType(s.SessionName)}
}

type Client struct {
	getter   *source.HTTPGetter
	resolver SessionResolver
	sessions cache.Cache[int, model.Session]
	laps     cache.Cache[int, []lap]
	tracer   trace.Tracer
	l        *log.Logger
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

func New(resolver SessionResolver, opts ...Option) *Client {
	l := log.Default().Named("fastf1")
	c := &Client{
		getter: &source.HTTPGetter{
			BaseURL: DefaultBaseURL,
			Client:  source.NewHTTPClient(DefaultTimeout),
			Logger:  l,
		},
		resolver: resolver,
		tracer:   otel.Tracer("racepace/source/fastf1"),
		l:        l,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sessions = loadercache.New(
		loadercache.WithExpiration[int, model.Session](time.Hour),
		loadercache.WithLogger[int, model.Session](c.l),
		loadercache.WithLoader[int, model.Session](c.resolver.Session),
	)
	// laps and stints are both derived from the same response
	c.laps = loadercache.New(
		loadercache.WithExpiration[int, []lap](time.Minute),
		loadercache.WithLogger[int, []lap](c.l),
		loadercache.WithLoader[int, []lap](c.loadLaps),
	)
	return c
}

func (c *Client) Params(ctx context.Context, sessionKey int) (Params, error) {
	s, err := c.sessions.Get(ctx, sessionKey)
	if err != nil {
		return Params{}, fmt.Errorf("resolve session %d: %w", sessionKey, err)
	}
	return ParamsFor(s), nil
}

func (c *Client) Session(ctx context.Context, sessionKey int) (*model.Session, error) {
	return c.sessions.Get(ctx, sessionKey)
}

// Sessions returns the sessions of a season as known to the backend.
func (c *Client) Sessions(ctx context.Context, year int) ([]model.Session, error) {
	ret, err := source.GetJSON[[]model.Session](ctx, c.getter,
		fmt.Sprintf("/api/sessions/%d", year), nil)
	if err != nil {
		return nil, err
	}
	return lo.Ternary(ret == nil, []model.Session{}, ret), nil
}

type driver struct {
	DriverNumber int    `json:"driver_number"`
	NameAcronym  string `json:"name_acronym"`
	FullName     string `json:"full_name"`
	TeamName     string `json:"team_name"`
	TeamColour   string `json:"team_colour"`
}

func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]model.Driver, error) {
	p, err := c.Params(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	raw, err := source.GetJSON[[]driver](ctx, c.getter, "/api/drivers", p.values())
	if err != nil {
		return nil, err
	}
	return lo.Map(raw, func(d driver, _ int) model.Driver {
		return model.Driver{
			SessionKey:   sessionKey,
			DriverNumber: d.DriverNumber,
			NameAcronym:  d.NameAcronym,
			FullName:     d.FullName,
			TeamName:     d.TeamName,
			TeamColour:   d.TeamColour,
		}
	}), nil
}

type lap struct {
	model.LapRecord
	Compound *string `json:"compound"`
	TyreLife *int    `json:"tyre_life"`
}

func (c *Client) loadLaps(ctx context.Context, sessionKey int) (*[]lap, error) {
	p, err := c.Params(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	ctx, span := c.tracer.Start(ctx, "fastf1/laps",
		trace.WithAttributes(
			attribute.Int("session_key", sessionKey),
			attribute.String("event", p.Event),
			attribute.String("session_type", p.SessionType)))
	defer span.End()
	raw, err := source.GetJSON[[]lap](ctx, c.getter, "/api/laps", p.values())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	// the backend reports its own session numbering
	for i := range raw {
		raw[i].SessionKey = sessionKey
	}
	return &raw, nil
}

func (c *Client) Laps(ctx context.Context, sessionKey int) ([]model.LapRecord, error) {
	raw, err := c.laps.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return lo.Map(*raw, func(l lap, _ int) model.LapRecord { return l.LapRecord }), nil
}

// Stints are derived from the tyre data of the laps.
func (c *Client) Stints(ctx context.Context, sessionKey int) ([]model.StintRecord, error) {
	raw, err := c.laps.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return stints.Derive(lo.Map(*raw, func(l lap, _ int) stints.TyreLap {
		return stints.TyreLap{Lap: l.LapRecord, Compound: lo.FromPtr(l.Compound), TyreLife: l.TyreLife}
	})), nil
}

// PitStops are not provided by the backend.
func (c *Client) PitStops(_ context.Context, _ int) ([]model.PitStopRecord, error) {
	return []model.PitStopRecord{}, nil
}

// Health reports whether the backend answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	res, err := source.GetJSON[struct {
		Status string `json:"status"`
	}](ctx, c.getter, "/health", nil)
	if err != nil {
		return err
	}
	if res.Status != "healthy" {
		return fmt.Errorf("backend status %q: %w", res.Status, source.ErrUnavailable)
	}
	return nil
}

// Version returns the api version announced by the backend.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := source.GetJSON[struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}](ctx, c.getter, "/openapi.json", nil)
	if err != nil {
		return "", err
	}
	return res.Info.Version, nil
}

// CheckVersion reports whether version satisfies RequiredBackendVersion.
func CheckVersion(version string) bool {
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return false
	}
	return semver.Compare(version, RequiredBackendVersion) >= 0
}
