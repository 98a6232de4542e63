package widget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/util"
)

// ratioPlaces bounds the precision of secondary ratios.
const ratioPlaces = 6

func mapMetric(w *domain.Widget, res *domain.FetchResult, intent Intent) error {
	row := res.Rows[0]
	_, v, ok, err := primary(res, row, intent)
	if err != nil {
		return err
	}
	if !ok {
		w.State = domain.StateNoData
		return nil
	}

	w.Primary = v
	w.Value = intent.Format.orPlain()(v)

	if intent.RatioOf == "" {
		if intent.DeltaFormat != "" {
			w.Delta = fmt.Sprintf(intent.DeltaFormat, w.Value)
		}
		return nil
	}

	if !res.HasColumn(intent.RatioOf) {
		return missingColumn(res, intent.RatioOf)
	}
	raw, _ := row.Get(intent.RatioOf)
	denom, isNum := util.AsFloat64(raw)
	if !isNum || denom == 0 {
		// No meaningful ratio; the primary value still stands.
		return nil
	}

	ratio := decimal.NewFromFloat(v).DivRound(decimal.NewFromFloat(denom), ratioPlaces).InexactFloat64()
	w.Secondary = &ratio
	if intent.DeltaFormat != "" {
		w.Delta = fmt.Sprintf(intent.DeltaFormat, intent.RatioFormat.orPlain()(ratio))
	}
	return nil
}

func mapRankedEntity(w *domain.Widget, res *domain.FetchResult, intent Intent) error {
	row := res.Rows[0]

	labelCol := intent.LabelColumn
	if labelCol == "" {
		labelCol = DefaultLabelColumn
	}
	if !res.HasColumn(labelCol) {
		return missingColumn(res, labelCol)
	}

	_, v, ok, err := primary(res, row, intent)
	if err != nil {
		return err
	}
	if !ok {
		w.State = domain.StateNoData
		return nil
	}

	label, _ := row.Get(labelCol)
	w.Label = util.ToString(label)
	w.Primary = v
	w.Value = intent.Format.orPlain()(v)
	if intent.DeltaFormat != "" {
		w.Delta = fmt.Sprintf(intent.DeltaFormat, w.Value)
	}
	return nil
}
