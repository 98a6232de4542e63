// Package otel pushes fetch pipeline metrics to an OpenTelemetry collector.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "kpiboard"
	serviceVersion = "1.0.0"
)

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// Exporter records fetch metrics on an OTLP meter provider.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	queryDuration metric.Float64Histogram
	queryErrors   metric.Int64Counter
	widgets       metric.Int64Counter
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	cacheHits, err := meter.Int64Counter(
		"kpiboard_cache_hits_total",
		metric.WithDescription("Fetches answered from the result cache"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache hits counter: %w", err)
	}

	cacheMisses, err := meter.Int64Counter(
		"kpiboard_cache_misses_total",
		metric.WithDescription("Fetches that executed their query"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cache misses counter: %w", err)
	}

	queryDuration, err := meter.Float64Histogram(
		"kpiboard_query_duration_seconds",
		metric.WithDescription("Catalog query execution time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating query duration histogram: %w", err)
	}

	queryErrors, err := meter.Int64Counter(
		"kpiboard_query_errors_total",
		metric.WithDescription("Catalog query executions that failed"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating query errors counter: %w", err)
	}

	widgets, err := meter.Int64Counter(
		"kpiboard_widgets_total",
		metric.WithDescription("Widgets built, by kind and terminal state"),
		metric.WithUnit("{widget}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating widgets counter: %w", err)
	}

	return &Exporter{
		provider:      provider,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
		queryDuration: queryDuration,
		queryErrors:   queryErrors,
		widgets:       widgets,
	}, nil
}

// CacheHit counts a fetch served from the result cache.
func (e *Exporter) CacheHit(query string) {
	e.cacheHits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("query", query)))
}

// CacheMiss counts a fetch that had to run its query.
func (e *Exporter) CacheMiss(query string) {
	e.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(attribute.String("query", query)))
}

// QueryExecuted records how long a query ran and counts it as failed when
// err is non-nil.
func (e *Exporter) QueryExecuted(query string, d time.Duration, err error) {
	ctx := context.Background()
	opt := metric.WithAttributes(attribute.String("query", query))

	e.queryDuration.Record(ctx, d.Seconds(), opt)
	if err != nil {
		e.queryErrors.Add(ctx, 1, opt)
	}
}

// WidgetMapped counts a mapped widget by kind and final state.
func (e *Exporter) WidgetMapped(kind, state string) {
	e.widgets.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("state", state),
	))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
