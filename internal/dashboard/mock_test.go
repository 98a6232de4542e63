package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
	"github.com/emiliopalmerini/kpiboard/internal/ports"
)

// mockProvider is a ports.ConnectionProvider for testing.
type mockProvider struct {
	ConnectFunc func(ctx context.Context) (ports.Conn, error)
	connects    atomic.Int32
	closes      atomic.Int32
}

func (m *mockProvider) Connect(ctx context.Context) (ports.Conn, error) {
	m.connects.Add(1)
	if m.ConnectFunc != nil {
		conn, err := m.ConnectFunc(ctx)
		if err != nil {
			return nil, err
		}
		return &trackedConn{Queryer: conn, closes: &m.closes}, nil
	}
	return &trackedConn{closes: &m.closes}, nil
}

type trackedConn struct {
	ports.Queryer
	closes *atomic.Int32
}

func (c *trackedConn) Close() error {
	c.closes.Add(1)
	return nil
}

// mockFetcher is a ports.Fetcher for testing.
type mockFetcher struct {
	FetchFunc func(ctx context.Context, q ports.Queryer, def domain.QueryDefinition) (*domain.FetchResult, error)
	calls     atomic.Int32
}

func (m *mockFetcher) Fetch(ctx context.Context, q ports.Queryer, def domain.QueryDefinition) (*domain.FetchResult, error) {
	m.calls.Add(1)
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, q, def)
	}
	return domain.NewFetchResult(def.Name, nil, time.Time{}), nil
}

// recordingMetrics is a ports.FetchMetrics that remembers what it saw.
type recordingMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	executed map[string]int
	widgets  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{executed: map[string]int{}, widgets: map[string]int{}}
}

func (m *recordingMetrics) CacheHit(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *recordingMetrics) CacheMiss(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *recordingMetrics) QueryExecuted(query string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executed[query]++
}

func (m *recordingMetrics) WidgetMapped(_ string, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.widgets[state]++
}
