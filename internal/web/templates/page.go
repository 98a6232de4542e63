// Package templates holds the HTML components of the dashboard.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/page"
)

// refreshSeconds matches the default result cache TTL.
const refreshSeconds = 600

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title><link rel="stylesheet" href="/static/style.css">`)
		h.raw(`<script src="https://unpkg.com/htmx.org@1.9.12" defer></script></head><body>`)
		h.render(ctx, body)
		h.raw(`</body></html>`)
		return h.err
	})
}

// Page renders the full dashboard document.
func Page(p page.Page) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<header><h1>`)
		h.text(p.Title)
		h.raw(`</h1><p class="meta">`)
		if ts := formatGenerated(p.GeneratedAt); ts != "" {
			h.raw(`Generated `)
			h.text(ts)
		}
		h.raw(`</p></header><main>`)

		if p.Halted() {
			h.render(ctx, ErrorBanner(p.Err))
		}
		for _, s := range p.Sections {
			h.render(ctx, Section(s))
		}
		h.raw(`</main>`)
		return h.err
	})
	return layout(p.Title, body)
}

// Section renders one section. htmx swaps it in place on refresh.
func Section(s page.Section) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<section class="section" id="section-`)
		h.text(s.ID)
		h.raw(`" hx-get="`)
		h.text(string(sectionURL(s.ID)))
		h.rawf(`" hx-trigger="every %ds" hx-swap="outerHTML"><h2>`, refreshSeconds)
		h.text(s.Title)
		h.raw(`</h2><div class="widgets">`)
		for _, wd := range s.Widgets {
			h.render(ctx, Widget(wd))
		}
		h.raw(`</div></section>`)
		return h.err
	})
}

// Widget renders a card or chart.
func Widget(wd domain.Widget) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		kind := "card"
		if isChart(wd.Kind) {
			kind = "chart"
		}
		h.rawf(`<article class="widget %s %s" id="widget-`, kind, stateClass(wd.State))
		h.text(wd.ID)
		h.raw(`"><h3>`)
		h.text(wd.Title)
		h.raw(`</h3>`)

		switch wd.State {
		case domain.StateNoData:
			h.raw(`<p class="empty">No data</p>`)
		case domain.StateFailed:
			h.raw(`<p class="error">Unavailable: `)
			h.text(wd.Err)
			h.raw(`</p>`)
		case domain.StateRendered:
			if isChart(wd.Kind) {
				writeChart(h, wd)
			} else {
				writeCard(h, wd)
			}
		default:
			h.raw(`<p class="empty">Loading</p>`)
		}

		h.raw(`</article>`)
		return h.err
	})
}

func writeCard(h *html, wd domain.Widget) {
	h.raw(`<p class="value">`)
	if wd.Kind == domain.KindRankedEntity {
		h.text(wd.Label)
	} else {
		h.text(wd.Value)
	}
	h.raw(`</p>`)
	if wd.Delta != "" {
		h.rawf(`<p class="%s">`, deltaClass(wd))
		h.text(wd.Delta)
		h.raw(`</p>`)
	}
}

func writeChart(h *html, wd domain.Widget) {
	if wd.SVG != "" {
		h.raw(`<figure>`)
		// Chart SVG is generated server side.
		h.raw(wd.SVG)
		h.raw(`</figure>`)
	} else if wd.Chart != nil {
		writeChartTable(h, wd.Chart)
	}
	if wd.Chart != nil && wd.Chart.Note != "" {
		h.raw(`<p class="note">`)
		h.text(wd.Chart.Note)
		h.raw(`</p>`)
	}
}

// writeChartTable is the fallback when no SVG could be drawn.
func writeChartTable(h *html, c *domain.ChartPayload) {
	h.raw(`<table class="chart-data"><tbody>`)
	for _, p := range c.Points {
		h.raw(`<tr><th>`)
		h.text(p.Label)
		h.rawf(`</th><td>%.2f</td></tr>`, p.Value)
	}
	for _, b := range c.Bars {
		h.raw(`<tr><th>`)
		h.text(b.Label)
		h.rawf(`</th><td>%.2f</td></tr>`, b.Value)
	}
	for _, s := range c.Scatter {
		h.raw(`<tr><th>`)
		h.text(s.Label)
		h.rawf(`</th><td>%.3f</td><td>%.2f</td><td>%.2f</td></tr>`, s.X, s.Y, s.Size)
	}
	h.raw(`</tbody></table>`)
}

// ErrorBanner renders a single error message.
func ErrorBanner(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="banner error" role="alert">`)
		h.text(msg)
		h.raw(`</div>`)
		return h.err
	})
}
