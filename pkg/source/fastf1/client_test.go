//nolint:funlen,lll // ok for tests
package fastf1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/source"
)

type resolver struct{}

func (resolver) Session(_ context.Context, key int) (*model.Session, error) {
	if key != 9158 {
		return nil, source.ErrNotFound
	}
	return &model.Session{SessionKey: key, SessionName: "Race", Location: "Marina Bay", Year: 2023}, nil
}

const lapsJSON = `[
 {"meeting_key":1,"session_key":0,"driver_number":1,"lap_number":1,"lap_duration":95.1,"compound":"SOFT","tyre_life":1,"is_pit_out_lap":false,"total_seconds":95.1},
 {"meeting_key":1,"session_key":0,"driver_number":1,"lap_number":2,"lap_duration":93.2,"compound":"SOFT","tyre_life":2,"is_pit_out_lap":false,"total_seconds":188.3},
 {"meeting_key":1,"session_key":0,"driver_number":1,"lap_number":3,"lap_duration":110.0,"compound":"HARD","tyre_life":1,"is_pit_out_lap":true,"total_seconds":298.3},
 {"meeting_key":1,"session_key":0,"driver_number":1,"lap_number":4,"lap_duration":null,"compound":"HARD","tyre_life":2,"is_pit_out_lap":false,"total_seconds":null}
]`

func newClient(t *testing.T, lapCalls *atomic.Int32) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/laps":
			lapCalls.Add(1)
			q := r.URL.Query()
			if q.Get("year") != "2023" || q.Get("event") != "Marina Bay" || q.Get("session_type") != "R" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(lapsJSON))
		case "/api/drivers":
			w.Write([]byte(`[{"driver_number":1,"name_acronym":"VER","full_name":"Max Verstappen","team_name":"Red Bull Racing","team_colour":"3671C6"}]`))
		case "/api/sessions/2023":
			w.Write([]byte(`[{"session_key":9158,"session_name":"Race","location":"Marina Bay","year":2023}]`))
		case "/health":
			w.Write([]byte(`{"status":"healthy"}`))
		case "/openapi.json":
			w.Write([]byte(`{"openapi":"3.1.0","info":{"title":"F1 Dashboard API","version":"1.0.0"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return New(resolver{}, WithBaseURL(srv.URL), WithHTTPClient(srv.Client()), WithMaxRetryTime(time.Second))
}

func TestSessionType(t *testing.T) {
	tests := map[string]string{
		"Practice 1":        "FP1",
		"Practice 3":        "FP3",
		"Qualifying":        "Q",
		"Sprint Qualifying": "SQ",
		"Sprint":            "S",
		"Race":              "R",
		"Day 1":             "R",
	}
	for in, want := range tests {
		assert.Equal(t, want, SessionType(in), in)
	}
}

func TestLapsAndStints(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, &calls)
	ctx := context.Background()

	laps, err := c.Laps(ctx, 9158)
	require.NoError(t, err)
	require.Len(t, laps, 4)
	assert.Equal(t, 9158, laps[0].SessionKey)
	assert.Equal(t, 188.3, *laps[1].TotalSeconds)
	assert.Nil(t, laps[3].LapDuration)

	st, err := c.Stints(ctx, 9158)
	require.NoError(t, err)
	assert.Equal(t, []model.StintRecord{
		{SessionKey: 9158, MeetingKey: 1, DriverNumber: 1, StintNumber: 1, Compound: model.CompoundSoft, LapStart: 1, LapEnd: 2},
		{SessionKey: 9158, MeetingKey: 1, DriverNumber: 1, StintNumber: 2, Compound: model.CompoundHard, LapStart: 3, LapEnd: 4},
	}, st)
	// stints reuse the lap response
	assert.Equal(t, int32(1), calls.Load())

	pits, err := c.PitStops(ctx, 9158)
	require.NoError(t, err)
	assert.Empty(t, pits)
}

func TestUnknownSession(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, &calls)
	_, err := c.Laps(context.Background(), 1)
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDriversAndSessions(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, &calls)
	drivers, err := c.Drivers(context.Background(), 9158)
	require.NoError(t, err)
	assert.Equal(t, []model.Driver{{SessionKey: 9158, DriverNumber: 1, NameAcronym: "VER", FullName: "Max Verstappen", TeamName: "Red Bull Racing", TeamColour: "3671C6"}}, drivers)

	sessions, err := c.Sessions(context.Background(), 2023)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestHealthAndVersion(t *testing.T) {
	var calls atomic.Int32
	c := newClient(t, &calls)
	assert.NoError(t, c.Health(context.Background()))
	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v)
	assert.True(t, CheckVersion(v))
}

func TestCheckVersion(t *testing.T) {
	assert.True(t, CheckVersion("v1.0.0"))
	assert.True(t, CheckVersion("1.2.3"))
	assert.False(t, CheckVersion("0.9.0"))
	assert.False(t, CheckVersion("latest"))
}
