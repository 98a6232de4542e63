// Package metrics combines FetchMetrics implementations.
package metrics

import (
	"time"

	"github.com/emiliopalmerini/kpiboard/internal/ports"
)

type multi []ports.FetchMetrics

// Multi forwards every call to each non-nil recorder in order.
func Multi(recorders ...ports.FetchMetrics) ports.FetchMetrics {
	var m multi
	for _, r := range recorders {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

func (m multi) CacheHit(query string) {
	for _, r := range m {
		r.CacheHit(query)
	}
}

func (m multi) CacheMiss(query string) {
	for _, r := range m {
		r.CacheMiss(query)
	}
}

func (m multi) QueryExecuted(query string, d time.Duration, err error) {
	for _, r := range m {
		r.QueryExecuted(query, d, err)
	}
}

func (m multi) WidgetMapped(kind, state string) {
	for _, r := range m {
		r.WidgetMapped(kind, state)
	}
}
