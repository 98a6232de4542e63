// Package widget turns fetch results into display-ready widgets.
package widget

import (
	"fmt"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/util"
)

// DefaultLabelColumn is the entity column of the ranked item queries.
const DefaultLabelColumn = "item_group"

// DefaultK is how many entities each end of a scatter keeps.
const DefaultK = 2

// Intent describes how a result should be displayed. Column names are matched
// case-insensitively.
type Intent struct {
	Kind  domain.WidgetKind
	Title string

	// ValueColumn holds the primary metric. Empty means the first numeric
	// column of the first row.
	ValueColumn string
	// LabelColumn names the entity for ranked cards and bars.
	LabelColumn string
	Format      Formatter

	// RatioOf divides the primary value by this column to get a secondary
	// value, shown through RatioFormat.
	RatioOf     string
	RatioFormat Formatter
	// DeltaFormat is a fmt pattern fed the formatted secondary value, or the
	// formatted primary value when there is no ratio.
	DeltaFormat  string
	InverseDelta bool

	// TimeColumn is the x axis of a trend line.
	TimeColumn string

	// X, Y and Size are the scatter columns. RankColumn picks the metric
	// the top and bottom K are chosen by and defaults to Y.
	X, Y, Size string
	RankColumn string
	K          int

	XTitle, YTitle string
	Note           string
}

// mappingError marks an intent that does not fit the result it was given.
type mappingError struct {
	msg string
}

func (e *mappingError) Error() string {
	return e.msg
}

func missingColumn(res *domain.FetchResult, column string) error {
	return &mappingError{msg: fmt.Sprintf("column %q not in %s result", column, res.Query)}
}

// Map builds a widget from result. It never panics: an empty result yields
// StateNoData and an intent that does not fit the result yields StateFailed.
func Map(result *domain.FetchResult, intent Intent) domain.Widget {
	w := domain.Widget{
		Title:        intent.Title,
		Kind:         intent.Kind,
		State:        domain.StatePending,
		InverseDelta: intent.InverseDelta,
	}
	if result.Empty() {
		w.State = domain.StateNoData
		return w
	}

	var err error
	switch intent.Kind {
	case domain.KindMetric:
		err = mapMetric(&w, result, intent)
	case domain.KindRankedEntity:
		err = mapRankedEntity(&w, result, intent)
	case domain.KindTrendLine:
		err = mapTrend(&w, result, intent)
	case domain.KindRankedBar:
		err = mapBars(&w, result, intent)
	case domain.KindScatter:
		err = mapScatter(&w, result, intent)
	default:
		err = &mappingError{msg: fmt.Sprintf("unknown widget kind %q", intent.Kind)}
	}
	if err != nil {
		return Failed(intent, err)
	}
	if w.State == domain.StatePending {
		w.State = domain.StateRendered
	}
	return w
}

// Failed builds the widget shown when the query behind intent failed.
func Failed(intent Intent, err error) domain.Widget {
	return domain.Widget{
		Title:        intent.Title,
		Kind:         intent.Kind,
		State:        domain.StateFailed,
		InverseDelta: intent.InverseDelta,
		Err:          err.Error(),
	}
}

// primary resolves the primary metric of row. ok is false when the value is
// NULL.
func primary(res *domain.FetchResult, row domain.Row, intent Intent) (column string, value float64, ok bool, err error) {
	column = intent.ValueColumn
	if column == "" {
		for _, c := range res.Columns {
			if util.IsNumeric(row[c]) {
				column = c
				break
			}
		}
		if column == "" {
			for _, c := range res.Columns {
				if row[c] != nil {
					return "", 0, false, &mappingError{msg: fmt.Sprintf("no numeric column in %s result", res.Query)}
				}
			}
			// Aggregates over zero rows come back as a single row of NULLs.
			return "", 0, false, nil
		}
	}
	if !res.HasColumn(column) {
		return "", 0, false, missingColumn(res, column)
	}

	raw, _ := row.Get(column)
	if raw == nil {
		return column, 0, false, nil
	}
	v, isNum := util.AsFloat64(raw)
	if !isNum {
		return "", 0, false, &mappingError{msg: fmt.Sprintf("column %q of %s is not numeric", column, res.Query)}
	}
	return column, v, true, nil
}
