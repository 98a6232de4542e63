package otel

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/emiliopalmerini/kpiboard/internal/ports"
)

var (
	_ ports.MetricsExporter = (*Exporter)(nil)
	_ ports.MetricsExporter = (*NoOpExporter)(nil)
)

func TestNewExporter_Disabled(t *testing.T) {
	if _, err := NewExporter(context.Background(), Config{Enabled: false, Endpoint: "localhost:4317"}); err == nil {
		t.Error("expected error when disabled")
	}
	if _, err := NewExporter(context.Background(), Config{Enabled: true}); err == nil {
		t.Error("expected error without endpoint")
	}
}

func TestExporter_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exp, err := newExporter(provider)
	if err != nil {
		t.Fatalf("failed to create exporter: %v", err)
	}
	defer exp.Close(context.Background())

	exp.CacheMiss("monthly_sales")
	exp.CacheHit("monthly_sales")
	exp.QueryExecuted("monthly_sales", 15*time.Millisecond, nil)
	exp.QueryExecuted("return_rate", time.Millisecond, errors.New("boom"))
	exp.WidgetMapped("metric", "no_data")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	sums := map[string]int64{}
	var histograms int
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					histograms += int(dp.Count)
				}
			}
		}
	}

	want := map[string]int64{
		"kpiboard_cache_hits_total":   1,
		"kpiboard_cache_misses_total": 1,
		"kpiboard_query_errors_total": 1,
		"kpiboard_widgets_total":      1,
	}
	for name, n := range want {
		if sums[name] != n {
			t.Errorf("%s = %d, want %d", name, sums[name], n)
		}
	}
	if histograms != 2 {
		t.Errorf("expected 2 duration observations, got %d", histograms)
	}
}

func TestNoOpExporter(t *testing.T) {
	e := NewNoOpExporter()
	e.CacheHit("q")
	e.QueryExecuted("q", time.Second, errors.New("x"))
	if err := e.Close(context.Background()); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
