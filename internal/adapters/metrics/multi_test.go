package metrics

import (
	"testing"
	"time"
)

type counter struct {
	hits, misses, executed, widgets int
}

func (c *counter) CacheHit(string)                            { c.hits++ }
func (c *counter) CacheMiss(string)                           { c.misses++ }
func (c *counter) QueryExecuted(string, time.Duration, error) { c.executed++ }
func (c *counter) WidgetMapped(string, string)                { c.widgets++ }

func TestMulti(t *testing.T) {
	a, b := &counter{}, &counter{}
	m := Multi(a, nil, b)

	m.CacheHit("q")
	m.CacheMiss("q")
	m.QueryExecuted("q", time.Millisecond, nil)
	m.WidgetMapped("metric", "rendered")

	for i, c := range []*counter{a, b} {
		if c.hits != 1 || c.misses != 1 || c.executed != 1 || c.widgets != 1 {
			t.Errorf("recorder %d = %+v", i, *c)
		}
	}
}

func TestMulti_Empty(t *testing.T) {
	m := Multi()
	m.CacheHit("q")
	m.WidgetMapped("metric", "failed")
}
