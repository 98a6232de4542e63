package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/kpiboard/internal/catalog"
	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/fetch"
	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/database"
	"github.com/emiliopalmerini/kpiboard/internal/page"
	"github.com/emiliopalmerini/kpiboard/internal/ports"
	"github.com/emiliopalmerini/kpiboard/internal/testutil"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.Options{Table: testutil.OrdersTable, Dialect: catalog.LibSQL, TopRegions: 5})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

type fixture struct {
	renderer *Renderer
	metrics  *recordingMetrics
}

func newFixture(t *testing.T, orders []testutil.Order) fixture {
	t.Helper()
	dsn, _ := testutil.OrdersDB(t, orders)

	metrics := newRecordingMetrics()
	fetcher := fetch.NewFetcher(fetch.NewCache(time.Minute, nil), metrics, nil)
	provider := database.NewProvider("libsql", dsn, database.Options{})

	r, err := NewRenderer(provider, testCatalog(t), fetcher, page.DefaultLayout(page.LayoutOptions{}), Options{Metrics: metrics})
	if err != nil {
		t.Fatalf("failed to create renderer: %v", err)
	}
	return fixture{renderer: r, metrics: metrics}
}

func widgetByID(t *testing.T, p page.Page, id string) domain.Widget {
	t.Helper()
	for _, s := range p.Sections {
		for _, w := range s.Widgets {
			if w.ID == id {
				return w
			}
		}
	}
	t.Fatalf("widget %q not on page", id)
	return domain.Widget{}
}

func TestRender_Superstore(t *testing.T) {
	f := newFixture(t, testutil.Superstore())

	p := f.renderer.Render(context.Background())

	if p.Halted() {
		t.Fatalf("render halted: %s", p.Err)
	}
	if len(p.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(p.Sections))
	}
	for _, s := range p.Sections {
		for _, w := range s.Widgets {
			if w.State != domain.StateRendered {
				t.Errorf("widget %s: state %s (%s)", w.ID, w.State, w.Err)
			}
		}
	}
	for _, id := range []string{"monthly_sales", "top_regions", "discount_profit"} {
		if w := widgetByID(t, p, id); !strings.Contains(w.SVG, "<svg") {
			t.Errorf("widget %s has no svg", id)
		}
	}

	best := widgetByID(t, p, "best_seller")
	if best.Label != "Binders" || best.Delta != "3 units sold" {
		t.Errorf("best seller = %q %q", best.Label, best.Delta)
	}
	scatter := widgetByID(t, p, "discount_profit")
	if len(scatter.Chart.Scatter) != 4 {
		t.Errorf("expected 4 scatter entities, got %d", len(scatter.Chart.Scatter))
	}
	if p.RenderID.String() == "" || p.GeneratedAt.IsZero() {
		t.Error("page should be stamped")
	}
	if f.metrics.widgets["rendered"] != 10 {
		t.Errorf("expected 10 rendered widgets reported, got %v", f.metrics.widgets)
	}
}

func TestRender_MarginScenario(t *testing.T) {
	f := newFixture(t, []testutil.Order{
		{Sales: 100.00, Profit: 10.00},
		{Sales: 250.50, Profit: -5.50},
		{Sales: 75.25, Profit: 20.00},
	})

	p := f.renderer.Render(context.Background())

	sales := widgetByID(t, p, "total_sales")
	if sales.Primary != 425.75 {
		t.Errorf("total sales = %v, want 425.75", sales.Primary)
	}
	profit := widgetByID(t, p, "total_profit")
	if profit.Primary != 24.5 {
		t.Errorf("total profit = %v, want 24.50", profit.Primary)
	}
	if profit.Delta != "5.8% Margin" {
		t.Errorf("margin delta = %q, want 5.8%% Margin", profit.Delta)
	}

	if got := widgetByID(t, p, "most_returned").State; got != domain.StateNoData {
		t.Errorf("most returned with no returns should be no_data, got %s", got)
	}
}

func TestRender_MostReturnedScenario(t *testing.T) {
	f := newFixture(t, []testutil.Order{
		{SubCategory: "Chairs", Sales: 10, Returned: true},
		{SubCategory: "Chairs", Sales: 10, Returned: true},
		{SubCategory: "Chairs", Sales: 10, Returned: true},
		{SubCategory: "Phones", Sales: 10, Returned: true},
		{SubCategory: "Phones", Sales: 10},
	})

	p := f.renderer.Render(context.Background())

	w := widgetByID(t, p, "most_returned")
	if w.Label != "Chairs" || w.Primary != 3 {
		t.Errorf("most returned = %q %v, want Chairs 3", w.Label, w.Primary)
	}
	if !w.InverseDelta {
		t.Error("most returned should use an inverse delta")
	}
}

func TestRender_CachesAcrossRenders(t *testing.T) {
	f := newFixture(t, testutil.Superstore())
	ctx := context.Background()

	f.renderer.Render(ctx)
	f.renderer.Render(ctx)

	if len(f.metrics.executed) != 9 {
		t.Errorf("expected 9 distinct queries, got %d", len(f.metrics.executed))
	}
	for q, n := range f.metrics.executed {
		if n != 1 {
			t.Errorf("query %s executed %d times, want 1", q, n)
		}
	}
}

func TestRender_ConnectionFailureHalts(t *testing.T) {
	provider := &mockProvider{
		ConnectFunc: func(context.Context) (ports.Conn, error) {
			return nil, &domain.ConnectionError{Cause: errors.New("access denied for user 'analytics'")}
		},
	}
	fetcher := &mockFetcher{}

	r, err := NewRenderer(provider, testCatalog(t), fetcher, page.DefaultLayout(page.LayoutOptions{}), Options{})
	if err != nil {
		t.Fatal(err)
	}
	p := r.Render(context.Background())

	if !p.Halted() {
		t.Fatal("expected halted page")
	}
	if !strings.Contains(p.Err, "access denied") {
		t.Errorf("err = %q", p.Err)
	}
	if len(p.Sections) != 0 {
		t.Error("halted page must not have sections")
	}
	if fetcher.calls.Load() != 0 {
		t.Errorf("no fetch should run after a connection failure, got %d", fetcher.calls.Load())
	}
}

func TestRender_QueryFailureDegradesOnlyItsWidget(t *testing.T) {
	provider := &mockProvider{}
	fetcher := &mockFetcher{
		FetchFunc: func(_ context.Context, _ ports.Queryer, def domain.QueryDefinition) (*domain.FetchResult, error) {
			if def.Name == catalog.MonthlySales {
				return nil, &domain.QueryError{Query: def.Name, Cause: errors.New("no such function: DATE_TRUNC")}
			}
			res := domain.NewFetchResult(def.Name, []string{"item_group", "value"}, time.Time{})
			return res, nil
		},
	}
	metrics := newRecordingMetrics()

	r, err := NewRenderer(provider, testCatalog(t), fetcher, page.DefaultLayout(page.LayoutOptions{}), Options{Metrics: metrics})
	if err != nil {
		t.Fatal(err)
	}
	p := r.Render(context.Background())

	if p.Halted() {
		t.Fatalf("query failure must not halt the page: %s", p.Err)
	}
	trend := widgetByID(t, p, "monthly_sales")
	if trend.State != domain.StateFailed || !strings.Contains(trend.Err, "monthly_sales") {
		t.Errorf("trend = %s %q", trend.State, trend.Err)
	}
	for _, s := range p.Sections {
		if s.ID == "trend" {
			continue
		}
		for _, w := range s.Widgets {
			if w.State != domain.StateNoData {
				t.Errorf("widget %s should be no_data, got %s", w.ID, w.State)
			}
		}
	}
	if metrics.widgets["failed"] != 1 || metrics.widgets["no_data"] != 9 {
		t.Errorf("unexpected widget metrics: %v", metrics.widgets)
	}
	if provider.closes.Load() != 1 {
		t.Errorf("connection should be released once, got %d", provider.closes.Load())
	}
}

func TestRenderSection(t *testing.T) {
	provider := &mockProvider{}
	var fetched []string
	fetcher := &mockFetcher{
		FetchFunc: func(_ context.Context, _ ports.Queryer, def domain.QueryDefinition) (*domain.FetchResult, error) {
			fetched = append(fetched, def.Name)
			res := domain.NewFetchResult(def.Name, []string{"order_month", "monthly_sales"}, time.Time{})
			res.AppendRow([]any{"2017-01-01", 100.0})
			return res, nil
		},
	}

	r, err := NewRenderer(provider, testCatalog(t), fetcher, page.DefaultLayout(page.LayoutOptions{}), Options{SkipCharts: true})
	if err != nil {
		t.Fatal(err)
	}

	s, err := r.RenderSection(context.Background(), "trend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fetched) != 1 || fetched[0] != catalog.MonthlySales {
		t.Errorf("fetched %v, want only monthly_sales", fetched)
	}
	if s.Widgets[0].State != domain.StateRendered || s.Widgets[0].SVG != "" {
		t.Errorf("trend widget = %s svg=%d", s.Widgets[0].State, len(s.Widgets[0].SVG))
	}

	if _, err := r.RenderSection(context.Background(), "nope"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("expected ErrUnknownSection, got %v", err)
	}
}

func TestNewRenderer_RejectsBadLayout(t *testing.T) {
	layout := page.Layout{{ID: "x", Panels: []page.Panel{{ID: "p", Query: "missing"}}}}
	if _, err := NewRenderer(&mockProvider{}, testCatalog(t), &mockFetcher{}, layout, Options{}); err == nil {
		t.Error("expected layout validation error")
	}
}
