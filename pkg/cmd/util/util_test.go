package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/config"
	"github.com/mpapenbr/racepace/pkg/source/fastf1"
	"github.com/mpapenbr/racepace/pkg/source/openf1"
)

func TestParseDrivers(t *testing.T) {
	got, err := ParseDrivers(" 1, 44,,16 ")
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 44, 16}, got)

	got, err = ParseDrivers("")
	assert.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseDrivers("1,x")
	assert.Error(t, err)
	_, err = ParseDrivers("-3")
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, log.WarnLevel, ParseLogLevel("warn", log.InfoLevel))
	assert.Equal(t, log.InfoLevel, ParseLogLevel("loud", log.InfoLevel))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, ParseDuration("2s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}

func TestNewDataSource(t *testing.T) {
	l := log.Default()
	config.OpenF1URL = openf1.DefaultBaseURL
	config.FastF1URL = fastf1.DefaultBaseURL

	config.Source = SourceOpenF1
	src, err := NewDataSource(nil, l)
	assert.NoError(t, err)
	assert.IsType(t, &openf1.Client{}, src)

	config.Source = SourceFastF1
	src, err = NewDataSource(nil, l)
	assert.NoError(t, err)
	assert.IsType(t, &fastf1.Client{}, src)

	config.Source = SourceDB
	_, err = NewDataSource(nil, l)
	assert.Error(t, err)

	config.Source = "ergast"
	_, err = NewDataSource(nil, l)
	assert.Error(t, err)
}

func TestVerifyBackend(t *testing.T) {
	version := "1.2.0"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Write([]byte(`{"status":"healthy"}`))
		case "/openapi.json":
			w.Write([]byte(`{"info":{"version":"` + version + `"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := fastf1.New(openf1.New(), fastf1.WithBaseURL(srv.URL), fastf1.WithMaxRetryTime(time.Second))

	assert.NoError(t, VerifyBackend(context.Background(), c))
	version = "0.9.0"
	assert.Error(t, VerifyBackend(context.Background(), c))
	assert.NoError(t, VerifyBackend(context.Background(), openf1.New()))
}
