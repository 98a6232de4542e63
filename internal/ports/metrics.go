package ports

import (
	"context"
	"time"
)

// FetchMetrics records what the query pipeline does.
type FetchMetrics interface {
	CacheHit(query string)
	CacheMiss(query string)
	// QueryExecuted is called once per execution against the data source.
	QueryExecuted(query string, d time.Duration, err error)
	// WidgetMapped is called once per widget when it reaches a terminal state.
	WidgetMapped(kind, state string)
}

// MetricsExporter is a FetchMetrics that pushes to an external system and
// must be flushed on shutdown.
type MetricsExporter interface {
	FetchMetrics
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
