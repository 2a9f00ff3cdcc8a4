package source

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racepace/pkg/model"
)

type fakeSource struct {
	laps    []model.LapRecord
	stints  []model.StintRecord
	lapErr  error
	lapCall atomic.Int32
}

func (f *fakeSource) Session(_ context.Context, key int) (*model.Session, error) {
	return &model.Session{SessionKey: key, SessionName: "Race"}, nil
}

func (f *fakeSource) Drivers(_ context.Context, key int) ([]model.Driver, error) {
	return []model.Driver{{SessionKey: key, DriverNumber: 1, NameAcronym: "VER"}}, nil
}

func (f *fakeSource) Laps(_ context.Context, _ int) ([]model.LapRecord, error) {
	f.lapCall.Add(1)
	return f.laps, f.lapErr
}

func (f *fakeSource) Stints(_ context.Context, _ int) ([]model.StintRecord, error) {
	return f.stints, nil
}

func (f *fakeSource) PitStops(_ context.Context, _ int) ([]model.PitStopRecord, error) {
	return []model.PitStopRecord{}, nil
}

func TestLoadBundle(t *testing.T) {
	src := &fakeSource{
		laps:   []model.LapRecord{{DriverNumber: 1, LapNumber: 1, LapDuration: model.Seconds(90)}},
		stints: []model.StintRecord{{DriverNumber: 1, StintNumber: 1, LapStart: 1, LapEnd: 10}},
	}
	got, err := LoadBundle(context.Background(), src, 9158)
	require.NoError(t, err)
	assert.Equal(t, 9158, got.Session.SessionKey)
	assert.Len(t, got.Drivers, 1)
	assert.Len(t, got.Laps, 1)
	assert.Len(t, got.Stints, 1)
	assert.NotNil(t, got.PitStops)
}

func TestLoadBundleErrors(t *testing.T) {
	_, err := LoadBundle(context.Background(), &fakeSource{lapErr: &APIError{Status: 404, Endpoint: "/laps"}}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "laps:")

	_, err = LoadBundle(context.Background(), &fakeSource{laps: []model.LapRecord{{DriverNumber: 1, LapNumber: 0}}}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidLapNumber)

	_, err = LoadBundle(context.Background(), &fakeSource{stints: []model.StintRecord{{LapStart: 4, LapEnd: 2}}}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidStint)
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name      string
		err       *APIError
		want      error
		retryable bool
	}{
		{"in progress", &APIError{Status: http.StatusUnauthorized, Message: "Session in progress"}, ErrSessionInProgress, false},
		{"not found", &APIError{Status: http.StatusNotFound}, ErrNotFound, false},
		{"rate limit", &APIError{Status: http.StatusTooManyRequests}, ErrRateLimited, true},
		{"server", &APIError{Status: http.StatusBadGateway}, ErrUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.want))
			assert.Equal(t, tt.retryable, tt.err.Retryable())
		})
	}
	plain := &APIError{Status: http.StatusUnauthorized, Message: "invalid token"}
	assert.False(t, errors.Is(plain, ErrSessionInProgress))
}

func TestCachedLoader(t *testing.T) {
	src := &fakeSource{laps: []model.LapRecord{}}
	c := NewCachedLoader(src, time.Minute, nil)
	ctx := context.Background()

	_, err := c.Load(ctx, 1)
	require.NoError(t, err)
	_, err = c.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.lapCall.Load())

	c.Invalidate(ctx, 1)
	_, err = c.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.lapCall.Load())
}
