package fetch

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
)

// materialize reads every row into a FetchResult. Any scan or iteration error
// discards the rows read so far.
func materialize(name string, rows *sql.Rows, fetchedAt time.Time) (*domain.FetchResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	res := domain.NewFetchResult(name, cols, fetchedAt)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalize(v)
		}
		res.AppendRow(values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return res, nil
}

// normalize maps driver values onto the FetchResult value set. MySQL hands
// DECIMAL and SUM() results back as []byte.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		s := string(t)
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return d.InexactFloat64()
		}
		return s
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case decimal.Decimal:
		return t.InexactFloat64()
	default:
		return v
	}
}
