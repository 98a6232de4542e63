package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "KPIBOARD"

// Database holds the credentials of the analytical store.
type Database struct {
	Driver       string `envconfig:"DB_DRIVER" default:"libsql"`
	URL          string `envconfig:"DB_URL"`
	Host         string `envconfig:"DB_HOST"`
	Name         string `envconfig:"DB_NAME" default:"superstore"`
	User         string `envconfig:"DB_USER" default:"analytics"`
	Password     string `envconfig:"DB_PASSWORD"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"5"`
}

// Dashboard holds the query pipeline settings.
type Dashboard struct {
	OrdersTable      string        `envconfig:"ORDERS_TABLE" default:"fct__orders"`
	CacheTTL         time.Duration `envconfig:"CACHE_TTL" default:"600s"`
	FetchConcurrency int           `envconfig:"FETCH_CONCURRENCY" default:"4"`
	TopRegions       int           `envconfig:"TOP_REGIONS" default:"5"`
	ScatterK         int           `envconfig:"SCATTER_K" default:"2"`
}

// Server holds HTTP settings.
type Server struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Log holds logger settings.
type Log struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"logfmt"`
}

// OTEL holds OTLP metrics exporter settings.
type OTEL struct {
	Enabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	Endpoint string `envconfig:"OTEL_ENDPOINT"`
	Insecure bool   `envconfig:"OTEL_INSECURE" default:"false"`
}

// Config is the complete kpiboard configuration.
type Config struct {
	Database  Database
	Dashboard Dashboard
	Server    Server
	Log       Log
	OTEL      OTEL
}

// Load reads the configuration from KPIBOARD_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	for _, section := range []any{&cfg.Database, &cfg.Dashboard, &cfg.Server, &cfg.Log, &cfg.OTEL} {
		if err := envconfig.Process(envPrefix, section); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "libsql", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q (use libsql or mysql)", c.Database.Driver)
	}
	if c.Dashboard.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Dashboard.CacheTTL)
	}
	if c.Dashboard.FetchConcurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1, got %d", c.Dashboard.FetchConcurrency)
	}
	if c.Dashboard.TopRegions < 1 {
		return fmt.Errorf("top regions must be at least 1, got %d", c.Dashboard.TopRegions)
	}
	if c.Dashboard.ScatterK < 1 {
		return fmt.Errorf("scatter k must be at least 1, got %d", c.Dashboard.ScatterK)
	}
	return nil
}

// Masked returns a copy safe to print.
func (c Config) Masked() Config {
	if c.Database.Password != "" {
		c.Database.Password = "********"
	}
	return c
}
