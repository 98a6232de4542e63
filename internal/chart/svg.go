// Package chart renders widget chart payloads to inline SVG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/util"
)

const (
	Width  = 720
	Height = 360
)

var (
	lineColor = drawing.ColorFromHex("4c78a8")
	barColor  = drawing.ColorFromHex("7b3294")
	dotColor  = drawing.ColorFromHex("e45756")
)

// ErrEmpty is returned for payloads with nothing to draw.
var ErrEmpty = errors.New("chart has no data")

// Render draws p as an SVG document.
func Render(p *domain.ChartPayload) (string, error) {
	if p == nil {
		return "", ErrEmpty
	}

	var buf bytes.Buffer
	var err error
	switch p.Kind {
	case domain.KindTrendLine:
		err = renderTrend(&buf, p)
	case domain.KindRankedBar:
		err = renderBars(&buf, p)
	case domain.KindScatter:
		err = renderScatter(&buf, p)
	default:
		return "", fmt.Errorf("no chart for widget kind %q", p.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("render %s chart: %w", p.Kind, err)
	}
	return buf.String(), nil
}

func currencyTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return util.FormatCurrency(f)
	}
	return ""
}

func percentTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return util.FormatPercent(f, 1)
	}
	return ""
}

// span returns a range around [lo, hi] that go-chart can draw even when the
// data collapses to a single value.
func span(lo, hi float64) *gochart.ContinuousRange {
	if lo == hi {
		pad := 1.0
		if lo != 0 {
			pad = abs(lo) * 0.1
		}
		return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	pad := (hi - lo) * 0.1
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func renderTrend(buf *bytes.Buffer, p *domain.ChartPayload) error {
	if len(p.Points) == 0 {
		return ErrEmpty
	}

	xs := make([]time.Time, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i] = pt.Time
		ys[i] = pt.Value
	}
	// go-chart needs two x values to build a range.
	if len(xs) == 1 {
		xs = append(xs, xs[0].AddDate(0, 1, 0))
		ys = append(ys, ys[0])
	}
	lo, hi := bounds(ys)

	ch := gochart.Chart{
		Title:  p.Title,
		Width:  Width,
		Height: Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 12},
		},
		XAxis: gochart.XAxis{
			Name:           p.XTitle,
			ValueFormatter: gochart.TimeValueFormatterWithFormat("Jan 2006"),
		},
		YAxis: gochart.YAxis{
			Name:           p.YTitle,
			Range:          span(min(lo, 0), hi),
			ValueFormatter: currencyTick,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    p.YTitle,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotColor:    lineColor,
					DotWidth:    3,
				},
			},
		},
	}
	return ch.Render(gochart.SVG, buf)
}

func renderBars(buf *bytes.Buffer, p *domain.ChartPayload) error {
	if len(p.Bars) == 0 {
		return ErrEmpty
	}

	values := make([]gochart.Value, len(p.Bars))
	raw := make([]float64, len(p.Bars))
	for i, b := range p.Bars {
		values[i] = gochart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: gochart.Style{FillColor: barColor, StrokeColor: barColor},
		}
		raw[i] = b.Value
	}
	lo, hi := bounds(raw)

	bc := gochart.BarChart{
		Title:  p.Title,
		Width:  Width,
		Height: Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40},
		},
		BarWidth:     60,
		UseBaseValue: true,
		BaseValue:    0,
		YAxis: gochart.YAxis{
			Name:           p.YTitle,
			Range:          span(min(lo, 0), max(hi, 0)),
			ValueFormatter: currencyTick,
		},
		Bars: values,
	}
	return bc.Render(gochart.SVG, buf)
}

func renderScatter(buf *bytes.Buffer, p *domain.ChartPayload) error {
	if len(p.Scatter) == 0 {
		return ErrEmpty
	}

	xs := make([]float64, len(p.Scatter))
	ys := make([]float64, len(p.Scatter))
	sizes := make([]float64, len(p.Scatter))
	labels := make([]gochart.Value2, len(p.Scatter))
	for i, pt := range p.Scatter {
		xs[i], ys[i], sizes[i] = pt.X, pt.Y, pt.Size
		labels[i] = gochart.Value2{XValue: pt.X, YValue: pt.Y, Label: pt.Label}
	}
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)
	slo, shi := bounds(sizes)

	// Dot radius scales with size between 6 and 24 pixels.
	dotWidth := func(_, _ gochart.Range, index int, _, _ float64) float64 {
		if shi == slo {
			return 12
		}
		return 6 + 18*(sizes[index]-slo)/(shi-slo)
	}

	ch := gochart.Chart{
		Title:  p.Title,
		Width:  Width,
		Height: Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 24, Bottom: 12},
		},
		XAxis: gochart.XAxis{
			Name:           p.XTitle,
			Range:          span(xlo, xhi),
			ValueFormatter: percentTick,
		},
		YAxis: gochart.YAxis{
			Name:           p.YTitle,
			Range:          span(ylo, yhi),
			ValueFormatter: currencyTick,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeWidth:      gochart.Disabled,
					DotColor:         dotColor.WithAlpha(180),
					DotWidthProvider: dotWidth,
				},
			},
			gochart.AnnotationSeries{Annotations: labels},
		},
	}
	return ch.Render(gochart.SVG, buf)
}
