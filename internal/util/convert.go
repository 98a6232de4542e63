package util

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AsFloat64 converts a scalar to float64 and reports whether v held a number.
// Handles float64, int64, int, string, []byte, decimal.Decimal, sql.NullFloat64
// and sql.NullInt64 types.
func AsFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f, err == nil
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case sql.NullFloat64:
		return n.Float64, n.Valid
	case sql.NullInt64:
		return float64(n.Int64), n.Valid
	default:
		return 0, false
	}
}

// IsNumeric reports whether v holds a native numeric value. Strings are not
// considered numeric even if they parse.
func IsNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int64, int, int32, decimal.Decimal:
		return true
	default:
		return false
	}
}

// ToString renders a scalar value as text.
func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case decimal.Decimal:
		return s.String()
	default:
		return ""
	}
}

// ToTime converts a time.Time or a date string to time.Time.
// Returns false when v holds neither.
func ToTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		return ParseTime(t)
	case []byte:
		return ParseTime(string(t))
	default:
		return time.Time{}, false
	}
}
