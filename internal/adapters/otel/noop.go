package otel

import (
	"context"
	"time"
)

// NoOpExporter is a metrics exporter that does nothing.
type NoOpExporter struct{}

// NewNoOpExporter creates a new no-op exporter for graceful degradation.
func NewNoOpExporter() *NoOpExporter {
	return &NoOpExporter{}
}

func (e *NoOpExporter) CacheHit(string)                            {}
func (e *NoOpExporter) CacheMiss(string)                           {}
func (e *NoOpExporter) QueryExecuted(string, time.Duration, error) {}
func (e *NoOpExporter) WidgetMapped(string, string)                {}

func (e *NoOpExporter) Close(ctx context.Context) error {
	return nil
}
