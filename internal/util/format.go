package util

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a dollar amount with thousands separators and no cents.
// Halves round to even, so 24.50 shows as "$24" and 25.50 as "$26".
// Examples: 425.75 -> "$426", 2297200.86 -> "$2,297,201", -5.5 -> "-$6"
func FormatCurrency(v float64) string {
	d := decimal.NewFromFloat(v).RoundBank(0)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + humanize.FormatFloat("#,###.", d.InexactFloat64())
}

// FormatPercent formats a ratio as a percentage with the given precision.
// Examples: (0.0575, 1) -> "5.8%", (0.08, 2) -> "8.00%"
func FormatPercent(ratio float64, precision int) string {
	return fmt.Sprintf("%.*f%%", precision, ratio*100)
}

// FormatCount formats an integer count with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatMonth formats a time bucket as "Jan 2006".
func FormatMonth(t time.Time) string {
	return t.Format("Jan 2006")
}

// ParseTime parses the date layouts SQL engines hand back for date buckets:
// "YYYY-MM-DD", "YYYY-MM-DD HH:MM:SS" (SQLite) and RFC3339.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339, "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
