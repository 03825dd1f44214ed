package testmetrics

import (
	"sync"

	"github.com/go-kit/kit/metrics"
)

// series identifies one metric of the Provider: its name and any label
// values bound by With.
type series struct {
	name        string
	p           *Provider
	labelValues []string
}

func (s series) extend(labelValues []string) []string {
	return append(append([]string(nil), s.labelValues...), labelValues...)
}

// value is a float guarded for concurrent requests.
type value struct {
	mu sync.RWMutex
	v  float64
}

func (v *value) add(delta float64) {
	v.mu.Lock()
	v.v += delta
	v.mu.Unlock()
}

func (v *value) set(f float64) {
	v.mu.Lock()
	v.v = f
	v.mu.Unlock()
}

func (v *value) getValue() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Counter accumulates a value based on Add calls.
type Counter struct {
	series
	value
}

// Add implements the metrics.Counter interface.
func (c *Counter) Add(delta float64) { c.add(delta) }

// With implements the metrics.Counter interface.
func (c *Counter) With(labelValues ...string) metrics.Counter {
	return c.p.newCounter(c.name, c.extend(labelValues)...)
}

// Gauge stores a value based on Add/Set calls.
type Gauge struct {
	series
	value
}

// Add implements the metrics.Gauge interface.
func (g *Gauge) Add(delta float64) { g.add(delta) }

// Set implements the metrics.Gauge interface.
func (g *Gauge) Set(v float64) { g.set(v) }

// With implements the metrics.Gauge interface.
func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	return g.p.newGauge(g.name, g.extend(labelValues)...)
}

// Histogram keeps every observation, so tests can check durations
// directly instead of through quantiles.
type Histogram struct {
	series

	mu           sync.RWMutex
	observations []float64
}

// Observe implements the metrics.Histogram interface.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observations = append(h.observations, v)
}

// With implements the metrics.Histogram interface.
func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return h.p.newHistogram(h.name, h.extend(labelValues)...)
}

func (h *Histogram) getObservations() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]float64(nil), h.observations...)
}
