package widget

import (
	"strconv"

	"github.com/emiliopalmerini/kpiboard/internal/util"
)

// Formatter renders a numeric value for display.
type Formatter func(float64) string

var (
	// Plain prints the shortest exact representation.
	Plain Formatter = func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	// Currency prints whole dollars with thousands separators.
	Currency Formatter = util.FormatCurrency

	// Count prints an integer with thousands separators.
	Count Formatter = func(v float64) string {
		return util.FormatCount(int64(v))
	}
)

// Percent prints a ratio as a percentage with the given precision.
func Percent(precision int) Formatter {
	return func(v float64) string {
		return util.FormatPercent(v, precision)
	}
}

func (f Formatter) orPlain() Formatter {
	if f == nil {
		return Plain
	}
	return f
}
