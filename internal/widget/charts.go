package widget

import (
	"fmt"
	"sort"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/util"
)

func chartPayload(intent Intent) *domain.ChartPayload {
	return &domain.ChartPayload{
		Kind:   intent.Kind,
		Title:  intent.Title,
		XTitle: intent.XTitle,
		YTitle: intent.YTitle,
		Note:   intent.Note,
	}
}

func requireColumns(res *domain.FetchResult, columns ...string) error {
	for _, c := range columns {
		if c == "" {
			return &mappingError{msg: fmt.Sprintf("%s intent is missing a column name", res.Query)}
		}
		if !res.HasColumn(c) {
			return missingColumn(res, c)
		}
	}
	return nil
}

// number reads a numeric cell. NULL reads as zero.
func number(res *domain.FetchResult, row domain.Row, column string) (float64, error) {
	raw, _ := row.Get(column)
	if raw == nil {
		return 0, nil
	}
	v, ok := util.AsFloat64(raw)
	if !ok {
		return 0, &mappingError{msg: fmt.Sprintf("column %q of %s is not numeric: %v", column, res.Query, raw)}
	}
	return v, nil
}

// mapTrend keeps rows in the order the source delivered them.
func mapTrend(w *domain.Widget, res *domain.FetchResult, intent Intent) error {
	if err := requireColumns(res, intent.TimeColumn, intent.ValueColumn); err != nil {
		return err
	}

	chart := chartPayload(intent)
	chart.Points = make([]domain.TimePoint, 0, len(res.Rows))
	for _, row := range res.Rows {
		raw, _ := row.Get(intent.TimeColumn)
		t, ok := util.ToTime(raw)
		if !ok {
			return &mappingError{msg: fmt.Sprintf("column %q of %s is not a date: %v", intent.TimeColumn, res.Query, raw)}
		}
		v, err := number(res, row, intent.ValueColumn)
		if err != nil {
			return err
		}
		chart.Points = append(chart.Points, domain.TimePoint{Time: t, Label: util.FormatMonth(t), Value: v})
	}

	last := chart.Points[len(chart.Points)-1].Value
	w.Primary = last
	w.Value = intent.Format.orPlain()(last)
	w.Chart = chart
	return nil
}

// mapBars keeps rows in the order the source delivered them.
func mapBars(w *domain.Widget, res *domain.FetchResult, intent Intent) error {
	if err := requireColumns(res, intent.LabelColumn, intent.ValueColumn); err != nil {
		return err
	}

	chart := chartPayload(intent)
	chart.Bars = make([]domain.Bar, 0, len(res.Rows))
	for _, row := range res.Rows {
		label, _ := row.Get(intent.LabelColumn)
		v, err := number(res, row, intent.ValueColumn)
		if err != nil {
			return err
		}
		chart.Bars = append(chart.Bars, domain.Bar{Label: util.ToString(label), Value: v})
	}

	w.Primary = chart.Bars[0].Value
	w.Value = intent.Format.orPlain()(w.Primary)
	w.Label = chart.Bars[0].Label
	w.Chart = chart
	return nil
}

type ranked struct {
	point domain.ScatterPoint
	rank  float64
}

// mapScatter keeps the top K and bottom K entities by the rank column, top
// first, and drops the second occurrence of any entity in both groups.
func mapScatter(w *domain.Widget, res *domain.FetchResult, intent Intent) error {
	rankCol := intent.RankColumn
	if rankCol == "" {
		rankCol = intent.Y
	}
	if err := requireColumns(res, intent.LabelColumn, intent.X, intent.Y, intent.Size, rankCol); err != nil {
		return err
	}
	k := intent.K
	if k <= 0 {
		k = DefaultK
	}

	all := make([]ranked, 0, len(res.Rows))
	for _, row := range res.Rows {
		rawRank, _ := row.Get(rankCol)
		if rawRank == nil {
			continue
		}
		rank, err := number(res, row, rankCol)
		if err != nil {
			return err
		}
		x, err := number(res, row, intent.X)
		if err != nil {
			return err
		}
		y, err := number(res, row, intent.Y)
		if err != nil {
			return err
		}
		size, err := number(res, row, intent.Size)
		if err != nil {
			return err
		}
		label, _ := row.Get(intent.LabelColumn)
		all = append(all, ranked{
			point: domain.ScatterPoint{Label: util.ToString(label), X: x, Y: y, Size: size},
			rank:  rank,
		})
	}
	if len(all) == 0 {
		w.State = domain.StateNoData
		return nil
	}

	top := make([]ranked, len(all))
	copy(top, all)
	sort.SliceStable(top, func(i, j int) bool { return top[i].rank > top[j].rank })

	bottom := make([]ranked, len(all))
	copy(bottom, all)
	sort.SliceStable(bottom, func(i, j int) bool { return bottom[i].rank < bottom[j].rank })

	picked := make([]ranked, 0, 2*k)
	picked = append(picked, top[:min(k, len(top))]...)
	picked = append(picked, bottom[:min(k, len(bottom))]...)

	chart := chartPayload(intent)
	seen := make(map[string]bool, len(picked))
	for _, r := range picked {
		if seen[r.point.Label] {
			continue
		}
		seen[r.point.Label] = true
		chart.Scatter = append(chart.Scatter, r.point)
	}

	w.Primary = float64(len(chart.Scatter))
	w.Value = Count(w.Primary)
	w.Chart = chart
	return nil
}
