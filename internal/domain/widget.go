package domain

import "time"

// WidgetKind is the display intent a widget was mapped with.
type WidgetKind string

const (
	KindMetric       WidgetKind = "metric"
	KindRankedEntity WidgetKind = "ranked_entity"
	KindTrendLine    WidgetKind = "trend_line"
	KindRankedBar    WidgetKind = "ranked_bar"
	KindScatter      WidgetKind = "scatter"
)

// WidgetState follows Pending -> {Rendered | NoData | Failed}. The three
// outcomes are terminal for a render cycle.
type WidgetState int

const (
	StatePending WidgetState = iota
	StateRendered
	StateNoData
	StateFailed
)

func (s WidgetState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRendered:
		return "rendered"
	case StateNoData:
		return "no_data"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText lets JSON output carry the state name.
func (s WidgetState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Widget is a display-ready value derived from exactly one FetchResult.
// Widgets live for a single render.
type Widget struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Kind  WidgetKind  `json:"kind"`
	State WidgetState `json:"state"`

	// Label names the entity a ranked card refers to.
	Label string `json:"label,omitempty"`
	// Value is the formatted primary value.
	Value   string  `json:"value,omitempty"`
	Primary float64 `json:"primary"`

	Secondary    *float64 `json:"secondary,omitempty"`
	Delta        string   `json:"delta,omitempty"`
	InverseDelta bool     `json:"inverse_delta,omitempty"`

	Chart *ChartPayload `json:"chart,omitempty"`
	// SVG holds the rendered chart, if any.
	SVG string `json:"-"`

	Err string `json:"error,omitempty"`
}

// Terminal reports whether the widget reached a final state.
func (w Widget) Terminal() bool {
	return w.State != StatePending
}

// ChartPayload is the data a chart widget hands to the renderer.
type ChartPayload struct {
	Kind    WidgetKind     `json:"kind"`
	Title   string         `json:"title"`
	XTitle  string         `json:"x_title,omitempty"`
	YTitle  string         `json:"y_title,omitempty"`
	Points  []TimePoint    `json:"points,omitempty"`
	Bars    []Bar          `json:"bars,omitempty"`
	Scatter []ScatterPoint `json:"scatter,omitempty"`
	Note    string         `json:"note,omitempty"`
}

type TimePoint struct {
	Time  time.Time `json:"time"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
}

type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type ScatterPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
}
