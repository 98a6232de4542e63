// Package dashboard runs the catalog through the fetcher and mapper to build
// a page.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/kpiboard/internal/catalog"
	"github.com/emiliopalmerini/kpiboard/internal/chart"
	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/infrastructure/logging"
	"github.com/emiliopalmerini/kpiboard/internal/page"
	"github.com/emiliopalmerini/kpiboard/internal/ports"
	"github.com/emiliopalmerini/kpiboard/internal/widget"
)

// ErrUnknownSection is returned by RenderSection for an ID not in the layout.
var ErrUnknownSection = errors.New("unknown section")

// DefaultConcurrency bounds parallel fetches within one render.
const DefaultConcurrency = 4

// Options configures a Renderer.
type Options struct {
	// Concurrency bounds parallel fetches within one render.
	Concurrency int
	// SkipCharts leaves chart widgets without SVG.
	SkipCharts bool
	Metrics    ports.FetchMetrics
	Logger     log.Logger
	// Now stamps GeneratedAt. Defaults to time.Now.
	Now func() time.Time
}

// Renderer builds pages. It is safe for concurrent use; each render opens
// and releases its own connection.
type Renderer struct {
	provider ports.ConnectionProvider
	catalog  *catalog.Catalog
	fetcher  ports.Fetcher
	layout   page.Layout
	opts     Options
	logger   log.Logger
}

// NewRenderer validates layout against the catalog and returns a renderer.
func NewRenderer(provider ports.ConnectionProvider, cat *catalog.Catalog, fetcher ports.Fetcher, layout page.Layout, opts Options) (*Renderer, error) {
	if err := layout.Validate(cat); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{
		provider: provider,
		catalog:  cat,
		fetcher:  fetcher,
		layout:   layout,
		opts:     opts,
		logger:   logging.OrNop(opts.Logger),
	}, nil
}

// Layout returns the layout pages are built from.
func (r *Renderer) Layout() page.Layout {
	return r.layout
}

// Render builds the whole page. A connection failure halts the render and
// yields a page carrying only the error; a query failure only fails the
// widgets built from that query.
func (r *Renderer) Render(ctx context.Context) page.Page {
	renderID := uuid.New()
	logger := log.With(r.logger, "render_id", renderID)
	start := time.Now()

	widgets, err := r.render(ctx, logger, r.layout.Panels())
	var p page.Page
	if err != nil {
		level.Error(logger).Log("msg", "render halted", "err", err)
		p = page.Halt(err)
	} else {
		p = page.Compose(r.layout, widgets)
	}
	p.RenderID = renderID
	p.GeneratedAt = r.opts.Now()

	level.Info(logger).Log("msg", "page rendered", "halted", p.Halted(), "duration", time.Since(start))
	return p
}

// RenderSection builds one section on its own connection.
func (r *Renderer) RenderSection(ctx context.Context, id string) (page.Section, error) {
	spec, ok := r.layout.Section(id)
	if !ok {
		return page.Section{}, fmt.Errorf("%w: %q", ErrUnknownSection, id)
	}

	logger := log.With(r.logger, "render_id", uuid.New(), "section", id)
	widgets, err := r.render(ctx, logger, spec.Panels)
	if err != nil {
		level.Error(logger).Log("msg", "section render halted", "err", err)
		return page.Section{}, err
	}
	return page.ComposeSection(spec, widgets), nil
}

func (r *Renderer) render(ctx context.Context, logger log.Logger, panels []page.Panel) (map[string]domain.Widget, error) {
	conn, err := r.provider.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Each goroutine writes only its own slot.
	results := make([]domain.Widget, len(panels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, p := range panels {
		g.Go(func() error {
			results[i] = r.renderPanel(gctx, logger, conn, p)
			return nil
		})
	}
	_ = g.Wait()

	widgets := make(map[string]domain.Widget, len(panels))
	for i, p := range panels {
		widgets[p.ID] = results[i]
	}
	return widgets, nil
}

func (r *Renderer) renderPanel(ctx context.Context, logger log.Logger, conn ports.Conn, p page.Panel) domain.Widget {
	var w domain.Widget
	def, _ := r.catalog.Lookup(p.Query)

	res, err := r.fetcher.Fetch(ctx, conn, def)
	if err != nil {
		w = widget.Failed(p.Intent, err)
	} else {
		w = widget.Map(res, p.Intent)
	}
	if w.State == domain.StateFailed {
		level.Warn(logger).Log("msg", "widget failed", "panel", p.ID, "query", p.Query, "err", w.Err)
	}

	if w.State == domain.StateRendered && w.Chart != nil && !r.opts.SkipCharts {
		if svg, err := chart.Render(w.Chart); err != nil {
			level.Warn(logger).Log("msg", "chart render failed", "panel", p.ID, "err", err)
		} else {
			w.SVG = svg
		}
	}

	w.ID = p.ID
	r.opts.Metrics.WidgetMapped(string(w.Kind), w.State.String())
	return w
}

type nopMetrics struct{}

func (nopMetrics) CacheHit(string)                            {}
func (nopMetrics) CacheMiss(string)                           {}
func (nopMetrics) QueryExecuted(string, time.Duration, error) {}
func (nopMetrics) WidgetMapped(string, string)                {}
