package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // by design
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/api"
	"github.com/mpapenbr/racepace/pkg/cmd/util"
	"github.com/mpapenbr/racepace/pkg/config"
	"github.com/mpapenbr/racepace/pkg/messaging/natsbus"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/service/analysis"
	"github.com/mpapenbr/racepace/pkg/source"
	"github.com/mpapenbr/racepace/pkg/source/pgsource"
)

//nolint:funlen // by design
func NewServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "starts the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&config.ServerAddr,
		"addr",
		"a",
		"localhost:8080",
		"HTTP server listen address")
	cmd.Flags().StringVar(&config.CacheExpiration,
		"cache-expiration",
		"5m",
		"how long loaded sessions are cached")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"NATS server url, messaging is disabled if empty")
	cmd.Flags().StringVar(&config.NatsBucket,
		"nats-bucket",
		"",
		"JetStream key value bucket for the latest analyses")
	cmd.Flags().BoolVar(&config.StoreSnapshots,
		"store-snapshots",
		false,
		"store each computed analysis in the database")
	cmd.Flags().IntVar(&config.MinimumLaps,
		"minimum-laps",
		3,
		"valid laps a stint needs for a degradation result")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (use 'stdout' for console)")
	cmd.Flags().StringVar(&config.TLSCertFile,
		"tls-cert",
		"",
		"file containing the TLS certificate")
	cmd.Flags().StringVar(&config.TLSKeyFile,
		"tls-key",
		"",
		"file containing the TLS key")
	cmd.Flags().StringVar(&config.TLSCAFile,
		"tls-ca",
		"",
		"file containing the CA for client certificates")
	cmd.Flags().StringVar(&config.TraefikCerts,
		"traefik-certs",
		"",
		"traefik acme storage file to take the certificate from")
	cmd.Flags().StringVar(&config.TraefikCertDomain,
		"traefik-cert-domain",
		"",
		"domain to look up in the traefik acme storage")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	return cmd
}

type components struct {
	pool      *pgxpool.Pool
	nc        *nats.Conn
	bus       *natsbus.Bus
	analyzer  *analysis.Analyzer
	telemetry *config.Telemetry
}

func (c *components) close() {
	if c.analyzer != nil {
		c.analyzer.Close()
	}
	if c.bus != nil {
		c.bus.Close()
	}
	if c.nc != nil {
		if err := c.nc.Drain(); err != nil {
			log.Warn("nats drain", log.ErrorField(err))
		}
	}
	if c.pool != nil {
		c.pool.Close()
	}
	if c.telemetry != nil {
		c.telemetry.Shutdown()
	}
}

//nolint:funlen,cyclop // by design
func startServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := util.SetupLogger()
	if err != nil {
		return err
	}
	log.Debug("Config:",
		log.String("addr", config.ServerAddr),
		log.String("source", config.Source),
		log.String("nats", config.NatsURL),
		log.Bool("storeSnapshots", config.StoreSnapshots),
	)

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // by design
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	c := &components{}
	defer c.close()

	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		if c.telemetry, err = config.SetupTelemetry(ctx); err != nil {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
		err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
		if err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}

	needDB := config.Source == util.SourceDB || config.StoreSnapshots
	if err := util.WaitForRequiredServices(ctx, needDB); err != nil {
		return err
	}
	if needDB {
		if c.pool, err = util.NewPool(ctx, logger); err != nil {
			return err
		}
	}

	src, err := util.NewDataSource(c.pool, logger)
	if err != nil {
		return err
	}
	if err := util.VerifyBackend(ctx, src); err != nil {
		return err
	}
	loader := source.NewCachedLoader(src,
		util.ParseDuration(config.CacheExpiration, 5*time.Minute), logger)

	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithMinimumLaps(config.MinimumLaps),
	}
	if config.StoreSnapshots {
		opts = append(opts, analysis.WithSnapshotStore(pgsource.New(c.pool, logger)))
	}
	if config.NatsURL != "" {
		if c.nc, err = nats.Connect(config.NatsURL); err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		pub := &lazyPublisher{}
		opts = append(opts, analysis.WithPublisher(pub))
		c.analyzer = analysis.New(loader, opts...)
		busOpts := []natsbus.Option{
			natsbus.WithContext(ctx),
			natsbus.WithLogger(logger),
			natsbus.WithRefresher(c.analyzer),
		}
		if config.NatsBucket != "" {
			busOpts = append(busOpts, natsbus.WithKeyValue(config.NatsBucket))
		}
		if c.bus, err = natsbus.New(c.nc, busOpts...); err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		pub.bus = c.bus
	} else {
		c.analyzer = analysis.New(loader, opts...)
	}

	handler := api.New(c.analyzer, api.WithLogger(logger)).Router()
	//nolint:gosec // by design
	server := &http.Server{
		Addr: config.ServerAddr,
		Handler: h2c.NewHandler(
			newCORS().Handler(otelhttp.NewHandler(handler, "racepace")),
			&http2.Server{}),
	}
	certCtx, stopCerts := context.WithCancel(ctx)
	defer stopCerts()
	if server.TLSConfig, err = newTLSConfig(certCtx, logger); err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server",
			log.String("addr", config.ServerAddr),
			log.Bool("tls", server.TLSConfig != nil))
		var err error
		if server.TLSConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	setupGoRoutinesDump()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case v := <-sigChan:
		log.Debug("Got signal ", log.Any("signal", v))
	case err := <-errCh:
		if err != nil {
			log.Error("server could not be started", log.ErrorField(err))
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", log.ErrorField(err))
	}
	log.Info("Server terminated")
	return nil
}

// lazyPublisher breaks the cycle between the analyzer (publishing) and the
// bus (refreshing via the analyzer).
type lazyPublisher struct {
	bus *natsbus.Bus
}

func (p *lazyPublisher) Publish(ctx context.Context, a *model.SessionAnalysis) error {
	if p.bus == nil {
		return nil
	}
	return p.bus.Publish(ctx, a)
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}

func newCORS() *cors.Cors {
	// the API is read only, every origin may use it
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodOptions,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Content-Encoding",
			api.RequestIDHeader,
		},
		// FF caps this value at 24h, and modern Chrome caps it at 2h.
		MaxAge: int(2 * time.Hour / time.Second),
	})
}
