package domain

import (
	"strings"
	"time"
)

// Row maps a lower-cased column name to its value. Values are float64, int64,
// string, bool, time.Time or nil.
type Row map[string]any

// Get returns the value of a column, looking the name up case-insensitively.
func (r Row) Get(column string) (any, bool) {
	v, ok := r[strings.ToLower(column)]
	return v, ok
}

// FetchResult is the materialized output of one query execution.
// It is shared between renders once cached and must be treated as read-only.
type FetchResult struct {
	Query     string
	Columns   []string
	Rows      []Row
	FetchedAt time.Time
}

// NewFetchResult builds a result whose column names are lower-cased, since
// engines disagree on how they fold unquoted aliases.
func NewFetchResult(query string, columns []string, fetchedAt time.Time) *FetchResult {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.ToLower(c)
	}
	return &FetchResult{
		Query:     query,
		Columns:   cols,
		Rows:      make([]Row, 0),
		FetchedAt: fetchedAt,
	}
}

// AppendRow adds a row given values in column order.
func (r *FetchResult) AppendRow(values []any) {
	row := make(Row, len(r.Columns))
	for i, c := range r.Columns {
		if i < len(values) {
			row[c] = values[i]
		}
	}
	r.Rows = append(r.Rows, row)
}

// Empty reports whether the result has no rows.
func (r *FetchResult) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// HasColumn reports whether the result carries the column, ignoring case.
func (r *FetchResult) HasColumn(column string) bool {
	for _, c := range r.Columns {
		if strings.EqualFold(c, column) {
			return true
		}
	}
	return false
}
