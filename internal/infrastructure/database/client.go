package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/logging"
	"github.com/emiliopalmerini/kpiboard/internal/ports"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/tursodatabase/go-libsql"
)

// Options configures the pool opened for each connection.
type Options struct {
	MaxOpenConns int
	Logger       log.Logger
}

// Provider opens connections to the analytical store.
type Provider struct {
	driver string
	dsn    string
	opts   Options
	logger log.Logger
}

// NewProvider creates a provider for the given driver name and DSN.
// Nothing is opened until Connect is called.
func NewProvider(driver, dsn string, opts Options) *Provider {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 5
	}
	return &Provider{
		driver: driver,
		dsn:    dsn,
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
	}
}

// Conn is an open handle on the data source. It wraps a database/sql pool and
// is safe for concurrent use by the fetches of one render.
type Conn struct {
	*sql.DB
	logger log.Logger
}

// Connect opens the data source and verifies it with a single ping.
// There are no retries: any failure is returned as a *domain.ConnectionError.
// The caller must Close the returned Conn.
func (p *Provider) Connect(ctx context.Context) (ports.Conn, error) {
	db, err := sql.Open(p.driver, p.dsn)
	if err != nil {
		return nil, &domain.ConnectionError{Cause: err}
	}

	// Turso's Hrana protocol closes idle streams aggressively, causing
	// "stream not found" errors on stale connections.
	db.SetMaxOpenConns(p.opts.MaxOpenConns)
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &domain.ConnectionError{Cause: err}
	}

	return &Conn{DB: db, logger: p.logger}, nil
}

// Close releases the connection. Close errors are logged, not returned, so
// deferred releases never mask the render outcome.
func (c *Conn) Close() error {
	if err := c.DB.Close(); err != nil {
		level.Warn(c.logger).Log("msg", "failed to close database connection", "err", err)
	}
	return nil
}
