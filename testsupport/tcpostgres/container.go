package tcpostgres

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	DefaultImage         = "postgres:17"
	DefaultContainerName = "racepace-test"
	DefaultDatabase      = "racepace"
	DefaultUser          = "racepace"
	DefaultPassword      = "racepace"
)

var pgPort = nat.Port("5432/tcp")

type (
	// containerConfig describes the racepace test database container.
	containerConfig struct {
		image    string
		name     string
		database string
		user     string
		password string
		startup  time.Duration
	}
	Option func(*containerConfig)

	// Container is a started postgres container holding the racepace database.
	Container struct {
		testcontainers.Container
		cfg containerConfig
	}
)

func WithImage(image string) Option {
	return func(c *containerConfig) {
		c.image = image
	}
}

// WithName sets the container name. Containers are reused by name.
func WithName(name string) Option {
	return func(c *containerConfig) {
		c.name = name
	}
}

func WithDatabase(database, user, password string) Option {
	return func(c *containerConfig) {
		c.database = database
		c.user = user
		c.password = password
	}
}

func WithStartupTimeout(d time.Duration) Option {
	return func(c *containerConfig) {
		c.startup = d
	}
}

func newConfig(opts ...Option) containerConfig {
	cfg := containerConfig{
		image:    DefaultImage,
		name:     DefaultContainerName,
		database: DefaultDatabase,
		user:     DefaultUser,
		password: DefaultPassword,
		startup:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c containerConfig) request() testcontainers.ContainerRequest {
	return testcontainers.ContainerRequest{
		Image: c.image,
		Name:  c.name,
		Env: map[string]string{
			"POSTGRES_USER":     c.user,
			"POSTGRES_PASSWORD": c.password,
			"POSTGRES_DB":       c.database,
		},
		ExposedPorts: []string{string(pgPort)},
		// durability is irrelevant for test data
		Cmd: []string{"postgres", "-c", "fsync=off"},
		// the server restarts once after running the init scripts
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(c.startup),
	}
}

func (c containerConfig) url(host, port string) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.user, c.password, host, port, c.database)
}

// StartContainer starts the test database container or reuses a running one.
func StartContainer(ctx context.Context, opts ...Option) (*Container, error) {
	cfg := newConfig(opts...)
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: cfg.request(),
			Started:          true,
			Reuse:            true,
		})
	if err != nil {
		return nil, err
	}
	return &Container{Container: container, cfg: cfg}, nil
}

// ConnectionURL returns the url of the database inside the container.
func (c *Container) ConnectionURL(ctx context.Context) (string, error) {
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := c.MappedPort(ctx, pgPort)
	if err != nil {
		return "", err
	}
	return c.cfg.url(host, port.Port()), nil
}
