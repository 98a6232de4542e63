// Package prometheus exposes fetch pipeline metrics for scraping.
package prometheus

import (
	"errors"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kpiboard"

// Recorder is a ports.FetchMetrics backed by its own registry.
type Recorder struct {
	registry      *prom.Registry
	cacheHits     *prom.CounterVec
	cacheMisses   *prom.CounterVec
	queryDuration *prom.HistogramVec
	queryErrors   *prom.CounterVec
	widgets       *prom.CounterVec
}

// NewRecorder creates a recorder with Go runtime and process collectors
// registered alongside the kpiboard metrics.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prom.NewRegistry(),
		cacheHits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Fetches answered from the result cache.",
		}, []string{"query"}),
		cacheMisses: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Fetches that executed their query.",
		}, []string{"query"}),
		queryDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time spent executing catalog queries against the data source.",
			Buckets:   prom.ExponentialBuckets(0.005, 2, 12),
		}, []string{"query"}),
		queryErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Catalog query executions that failed.",
		}, []string{"query"}),
		widgets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "widgets_total",
			Help:      "Widgets built, by kind and terminal state.",
		}, []string{"kind", "state"}),
	}

	cs := []prom.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.cacheHits, r.cacheMisses, r.queryDuration, r.queryErrors, r.widgets,
	}
	for _, c := range cs {
		if err := r.registry.Register(c); err != nil {
			var are prom.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
		}
	}
	return r, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prom.Registry {
	return r.registry
}

func (r *Recorder) CacheHit(query string) {
	r.cacheHits.WithLabelValues(query).Inc()
}

func (r *Recorder) CacheMiss(query string) {
	r.cacheMisses.WithLabelValues(query).Inc()
}

func (r *Recorder) QueryExecuted(query string, d time.Duration, err error) {
	r.queryDuration.WithLabelValues(query).Observe(d.Seconds())
	if err != nil {
		r.queryErrors.WithLabelValues(query).Inc()
	}
}

func (r *Recorder) WidgetMapped(kind, state string) {
	r.widgets.WithLabelValues(kind, state).Inc()
}
