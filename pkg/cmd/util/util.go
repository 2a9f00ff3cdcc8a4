// Package util holds helpers shared by the commands.
package util

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/config"
	"github.com/mpapenbr/racepace/pkg/db/postgres"
	"github.com/mpapenbr/racepace/pkg/source"
	"github.com/mpapenbr/racepace/pkg/source/fastf1"
	"github.com/mpapenbr/racepace/pkg/source/openf1"
	"github.com/mpapenbr/racepace/pkg/source/pgsource"
	"github.com/mpapenbr/racepace/pkg/utils"
)

const (
	SourceOpenF1 = "openf1"
	SourceFastF1 = "fastf1"
	SourceDB     = "db"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the default logger from the log config file or the
// log flags and installs it as default.
func SetupLogger() (*log.Logger, error) {
	var logger *log.Logger
	if config.LogConfig != "" {
		cfg, err := log.LoadConfig(config.LogConfig)
		if err != nil {
			return nil, err
		}
		if logger, err = cfg.Build(os.Stderr, log.WithCaller(true)); err != nil {
			return nil, err
		}
	} else {
		opts := []log.Option{log.WithCaller(true)}
		if config.LogFilter != "" {
			filterOpt, err := log.WithFilter(config.LogFilter)
			if err != nil {
				return nil, err
			}
			opts = append(opts, filterOpt)
		}
		switch config.LogFormat {
		case "json":
			logger = log.New(os.Stderr,
				ParseLogLevel(config.LogLevel, log.InfoLevel), opts...)
		default:
			logger = log.DevLogger(os.Stderr,
				ParseLogLevel(config.LogLevel, log.DebugLevel), opts...)
		}
	}
	log.ResetDefault(logger)
	return logger, nil
}

func ParseDuration(value string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("Invalid duration value, using default",
			log.String("value", value),
			log.Duration("default", defaultVal))
		return defaultVal
	}
	return d
}

// WaitForRequiredServices blocks until the configured database and NATS
// server accept tcp connections. A FastF1 backend must answer http requests.
func WaitForRequiredServices(ctx context.Context, needDB bool) error {
	timeout := ParseDuration(config.WaitForServices, 60*time.Second)
	addrs := []string{}
	if needDB {
		if addr := utils.ExtractFromDBURL(config.DB); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	if config.NatsURL != "" {
		if addr := utils.ExtractFromNatsURL(config.NatsURL); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	checks := make([]func() error, 0, len(addrs)+1)
	for _, addr := range addrs {
		checks = append(checks, func() error {
			return utils.WaitForTCP(ctx, addr, timeout)
		})
	}
	if config.Source == SourceFastF1 {
		checks = append(checks, func() error {
			return utils.WaitForHTTPResponse(ctx,
				strings.TrimSuffix(config.FastF1URL, "/")+"/health", timeout)
		})
	}
	wg := sync.WaitGroup{}
	errs := make(chan error, len(checks))
	for _, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := check(); err != nil {
				errs <- err
			}
		}()
	}
	log.Debug("Waiting for connection checks to return")
	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		return fmt.Errorf("required services not ready: %w", err)
	}
	log.Debug("Required services are available")
	return nil
}

// NewPool connects to config.DB with the tracer matching the telemetry setup.
func NewPool(ctx context.Context, logger *log.Logger) (*pgxpool.Pool, error) {
	traceOpt := postgres.WithTracer(sqlLogger(logger))
	if config.EnableTelemetry {
		traceOpt = postgres.WithOtelTracer()
	}
	return postgres.InitWithURL(ctx, config.DB, traceOpt)
}

// sqlLogger logs statements with its own level unless a log config file is used.
func sqlLogger(logger *log.Logger) *log.Logger {
	if config.LogConfig != "" {
		return logger.Named("db")
	}
	level := ParseLogLevel(config.SQLLogLevel, log.InfoLevel)
	if config.LogFormat == "json" {
		return log.New(os.Stderr, level, log.WithCaller(true)).Named("db")
	}
	return log.DevLogger(os.Stderr, level, log.WithCaller(true)).Named("db")
}

// NewRemoteSource creates the remote source named by config.Source.
func NewRemoteSource(logger *log.Logger) (source.DataSource, error) {
	retry := ParseDuration(config.MaxRetryTime, source.DefaultMaxElapsed)
	of1 := openf1.New(
		openf1.WithBaseURL(config.OpenF1URL),
		openf1.WithMaxRetryTime(retry),
		openf1.WithLogger(logger.Named("openf1")))
	switch config.Source {
	case SourceOpenF1:
		return of1, nil
	case SourceFastF1:
		return fastf1.New(of1,
			fastf1.WithBaseURL(config.FastF1URL),
			fastf1.WithMaxRetryTime(retry),
			fastf1.WithLogger(logger.Named("fastf1"))), nil
	default:
		return nil, fmt.Errorf("unknown remote source %q", config.Source)
	}
}

// NewDataSource returns the source named by config.Source. The pool is
// only needed for SourceDB.
func NewDataSource(pool *pgxpool.Pool, logger *log.Logger) (source.DataSource, error) {
	if config.Source == SourceDB {
		if pool == nil {
			return nil, fmt.Errorf("source %q needs a database", SourceDB)
		}
		return pgsource.New(pool, logger), nil
	}
	return NewRemoteSource(logger)
}

// VerifyBackend checks health and api version of a FastF1 backend.
// Other sources are accepted as is.
func VerifyBackend(ctx context.Context, src source.DataSource) error {
	c, ok := src.(*fastf1.Client)
	if !ok {
		return nil
	}
	if err := c.Health(ctx); err != nil {
		return fmt.Errorf("fastf1 backend: %w", err)
	}
	v, err := c.Version(ctx)
	if err != nil {
		return fmt.Errorf("fastf1 backend: %w", err)
	}
	if !fastf1.CheckVersion(v) {
		return fmt.Errorf("fastf1 backend version %q, need at least %s",
			v, fastf1.RequiredBackendVersion)
	}
	log.Debug("FastF1 backend verified", log.String("version", v))
	return nil
}

// ParseDrivers reads a comma separated list of driver numbers.
func ParseDrivers(s string) ([]int, error) {
	ret := []int{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid driver number %q", p)
		}
		ret = append(ret, v)
	}
	return ret, nil
}
