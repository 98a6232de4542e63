package ports

import (
	"context"
	"database/sql"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
)

// Queryer executes SQL text. *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Fetcher runs a catalog query through a Queryer, returning a full result or
// a *domain.QueryError.
type Fetcher interface {
	Fetch(ctx context.Context, q Queryer, def domain.QueryDefinition) (*domain.FetchResult, error)
}

// Conn is a render's handle on the data source. It must be safe for the
// concurrent fetches of one render.
type Conn interface {
	Queryer
	Close() error
}

// ConnectionProvider opens a Conn per render. Failures are
// *domain.ConnectionError.
type ConnectionProvider interface {
	Connect(ctx context.Context) (Conn, error)
}
