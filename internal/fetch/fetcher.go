// Package fetch executes catalog queries and memoizes their results.
package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/logging"
	"github.com/emiliopalmerini/kpiboard/internal/ports"
)

// Fetcher runs query definitions through a cache.
type Fetcher struct {
	cache   *Cache
	metrics ports.FetchMetrics
	logger  log.Logger
}

// NewFetcher creates a fetcher. metrics and logger may be nil.
func NewFetcher(cache *Cache, metrics ports.FetchMetrics, logger log.Logger) *Fetcher {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Fetcher{
		cache:   cache,
		metrics: metrics,
		logger:  logging.OrNop(logger),
	}
}

// Cache exposes the underlying cache.
func (f *Fetcher) Cache() *Cache {
	return f.cache
}

// Fetch returns the result of def, from cache when fresh. Failures come back
// as *domain.QueryError and are never cached.
func (f *Fetcher) Fetch(ctx context.Context, q ports.Queryer, def domain.QueryDefinition) (*domain.FetchResult, error) {
	res, hit, err := f.cache.GetOrLoad(ctx, def.SQL, func(ctx context.Context) (*domain.FetchResult, error) {
		return f.execute(ctx, q, def)
	})
	if err != nil {
		var qerr *domain.QueryError
		if errors.As(err, &qerr) {
			return nil, err
		}
		return nil, &domain.QueryError{Query: def.Name, Cause: err}
	}
	if hit {
		f.metrics.CacheHit(def.Name)
	} else {
		f.metrics.CacheMiss(def.Name)
	}
	return res, nil
}

func (f *Fetcher) execute(ctx context.Context, q ports.Queryer, def domain.QueryDefinition) (*domain.FetchResult, error) {
	start := time.Now()
	res, err := f.query(ctx, q, def)
	elapsed := time.Since(start)

	f.metrics.QueryExecuted(def.Name, elapsed, err)
	if err != nil {
		level.Error(f.logger).Log("msg", "query failed", "query", def.Name, "duration", elapsed, "err", err)
		return nil, &domain.QueryError{Query: def.Name, Cause: err}
	}
	level.Debug(f.logger).Log("msg", "query executed", "query", def.Name, "rows", len(res.Rows), "duration", elapsed)
	return res, nil
}

func (f *Fetcher) query(ctx context.Context, q ports.Queryer, def domain.QueryDefinition) (*domain.FetchResult, error) {
	rows, err := q.QueryContext(ctx, def.SQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return materialize(def.Name, rows, f.cache.now())
}

type noopMetrics struct{}

func (noopMetrics) CacheHit(string)                            {}
func (noopMetrics) CacheMiss(string)                           {}
func (noopMetrics) QueryExecuted(string, time.Duration, error) {}
func (noopMetrics) WidgetMapped(string, string)                {}
