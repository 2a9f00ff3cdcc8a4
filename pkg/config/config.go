package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogConfig          string // path to log config file
	LogFilter          string // zapfilter rules, e.g. "info+:* debug+:analysis"
	MigrationSourceURL string // location of migration files, embedded migrations if empty
	EnableTelemetry    bool   // enable telemetry
	TelemetryEndpoint  string // endpoint for telemetry, "stdout" prints to console
	ProfilingPort      int    // port for profiling
	ServerAddr         string // listen addr for the HTTP API
	Source             string // data source: openf1, fastf1 or db
	OpenF1URL          string // base url of the OpenF1 API
	FastF1URL          string // base url of the FastF1 backend
	MaxRetryTime       string // how long remote requests are retried
	CacheExpiration    string // how long loaded sessions are kept
	NatsURL            string // url of the NATS server, disabled if empty
	NatsBucket         string // JetStream key value bucket for latest analyses
	StoreSnapshots     bool   // store each computed analysis in the database
	MinimumLaps        int    // valid laps a stint needs for degradation
	TLSCertFile        string // path to TLS certificate
	TLSKeyFile         string // path to TLS key
	TLSCAFile          string // path to TLS CA for client certificates
	TraefikCerts       string // path to traefik acme storage file
	TraefikCertDomain  string // domain to look up in the traefik certs
)
