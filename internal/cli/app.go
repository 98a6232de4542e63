package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/emiliopalmerini/kpiboard/internal/adapters/metrics"
	"github.com/emiliopalmerini/kpiboard/internal/adapters/otel"
	"github.com/emiliopalmerini/kpiboard/internal/adapters/prometheus"
	"github.com/emiliopalmerini/kpiboard/internal/catalog"
	"github.com/emiliopalmerini/kpiboard/internal/dashboard"
	"github.com/emiliopalmerini/kpiboard/internal/fetch"
	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/config"
	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/database"
	"github.com/emiliopalmerini/kpiboard/internal/page"
	"github.com/emiliopalmerini/kpiboard/internal/ports"
)

// AppContext holds the shared dependencies of the commands that touch the
// data source.
type AppContext struct {
	Config   *config.Config
	Logger   log.Logger
	Catalog  *catalog.Catalog
	Provider ports.ConnectionProvider
	Fetcher  *fetch.Fetcher
	Metrics  *prometheus.Recorder
	Exporter ports.MetricsExporter
	Renderer *dashboard.Renderer
}

// NewAppContext wires the query pipeline from cfg. Nothing connects to the
// data source until a render or fetch runs.
func NewAppContext(ctx context.Context, cfg *config.Config, logger log.Logger) (*AppContext, error) {
	dialect, err := catalog.DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(catalog.Options{
		Table:      cfg.Dashboard.OrdersTable,
		Dialect:    dialect,
		TopRegions: cfg.Dashboard.TopRegions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build query catalog: %w", err)
	}

	dsn, err := database.DSN(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to build data source name: %w", err)
	}
	provider := database.NewProvider(cfg.Database.Driver, dsn, database.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Logger:       logger,
	})

	recorder, err := prometheus.NewRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
	}
	exporter := newExporter(ctx, cfg.OTEL, logger)
	fetchMetrics := metrics.Multi(recorder, exporter)

	fetcher := fetch.NewFetcher(fetch.NewCache(cfg.Dashboard.CacheTTL, nil), fetchMetrics, logger)

	layout := page.DefaultLayout(page.LayoutOptions{
		TopRegions: cfg.Dashboard.TopRegions,
		ScatterK:   cfg.Dashboard.ScatterK,
	})
	renderer, err := dashboard.NewRenderer(provider, cat, fetcher, layout, dashboard.Options{
		Concurrency: cfg.Dashboard.FetchConcurrency,
		Metrics:     fetchMetrics,
		Logger:      logger,
	})
	if err != nil {
		_ = exporter.Close(ctx)
		return nil, err
	}

	return &AppContext{
		Config:   cfg,
		Logger:   logger,
		Catalog:  cat,
		Provider: provider,
		Fetcher:  fetcher,
		Metrics:  recorder,
		Exporter: exporter,
		Renderer: renderer,
	}, nil
}

// newExporter falls back to a no-op exporter when OTLP is disabled or cannot
// be set up.
func newExporter(ctx context.Context, cfg config.OTEL, logger log.Logger) ports.MetricsExporter {
	if !cfg.Enabled {
		return otel.NewNoOpExporter()
	}
	exp, err := otel.NewExporter(ctx, otel.Config{
		Endpoint: cfg.Endpoint,
		Enabled:  cfg.Enabled,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		level.Warn(logger).Log("msg", "OTLP metrics disabled", "err", err)
		return otel.NewNoOpExporter()
	}
	return exp
}

// Close flushes the metrics exporter.
func (a *AppContext) Close(ctx context.Context) error {
	if a.Exporter == nil {
		return nil
	}
	if err := a.Exporter.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to flush metrics: %w", err)
	}
	return nil
}
