// Package metricsregistry provides name-keyed access to dynamically created
// metrics. Request statistics use it to look up per-category and per-project
// timers whose names are only known once a request has been classified.
package metricsregistry

import (
	"sync"
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"

	"github.com/heroku/grokstats/go-kit/metrics"
)

// A Registry holds references to a set of metrics by name. It's guaranteed
// to keep returning the same metric given the same name and type. All
// implementations are also required to be thread safe.
type Registry interface {
	GetOrRegisterCounter(name string) kitmetrics.Counter
	GetOrRegisterGauge(name string) kitmetrics.Gauge
	GetOrRegisterHistogram(name string, buckets int) kitmetrics.Histogram
	GetOrRegisterTimer(name string) Timer
}

// Timer records durations. It is backed by a histogram observed in
// milliseconds.
type Timer interface {
	Record(d time.Duration)
}

type histogramTimer struct {
	h kitmetrics.Histogram
}

func (t histogramTimer) Record(d time.Duration) {
	metrics.ObserveDuration(t.h, d)
}

var (
	_ Registry = &basicRegistry{}
	_ Registry = &prefixedRegistry{}
)

type basicRegistry struct {
	sync.Mutex
	p          metrics.Provider
	counters   map[string]kitmetrics.Counter
	gauges     map[string]kitmetrics.Gauge
	histograms map[string]kitmetrics.Histogram
}

// New creates a Registry given a metrics.Provider.
func New(p metrics.Provider) Registry {
	return &basicRegistry{
		p:          p,
		counters:   make(map[string]kitmetrics.Counter),
		gauges:     make(map[string]kitmetrics.Gauge),
		histograms: make(map[string]kitmetrics.Histogram),
	}
}

// GetOrRegisterCounter creates or finds the Counter given a name.
func (r *basicRegistry) GetOrRegisterCounter(name string) kitmetrics.Counter {
	r.Lock()
	defer r.Unlock()

	c, ok := r.counters[name]
	if !ok {
		c = r.p.NewCounter(name)
		r.counters[name] = c
	}
	return c
}

// GetOrRegisterGauge creates or finds the Gauge given a name.
func (r *basicRegistry) GetOrRegisterGauge(name string) kitmetrics.Gauge {
	r.Lock()
	defer r.Unlock()

	g, ok := r.gauges[name]
	if !ok {
		g = r.p.NewGauge(name)
		r.gauges[name] = g
	}
	return g
}

// GetOrRegisterHistogram creates or finds the Histogram given a name. The
// bucket count is only used the first time a name is seen.
func (r *basicRegistry) GetOrRegisterHistogram(name string, buckets int) kitmetrics.Histogram {
	r.Lock()
	defer r.Unlock()

	h, ok := r.histograms[name]
	if !ok {
		h = r.p.NewHistogram(name, buckets)
		r.histograms[name] = h
	}
	return h
}

// GetOrRegisterTimer creates or finds the millisecond histogram given a
// name and returns it as a Timer.
func (r *basicRegistry) GetOrRegisterTimer(name string) Timer {
	return histogramTimer{h: r.GetOrRegisterHistogram(name, metrics.DefaultBuckets)}
}

// prefixedRegistry shares all state with its parent.
type prefixedRegistry struct {
	r      Registry
	prefix string
}

// NewPrefixed creates a new Registry backed by r
// with all created metric names prefixed with prefix + ".".
// An empty prefix returns r unchanged.
func NewPrefixed(r Registry, prefix string) Registry {
	if prefix == "" {
		return r
	}
	return &prefixedRegistry{
		r:      r,
		prefix: prefix,
	}
}

func (r *prefixedRegistry) GetOrRegisterCounter(name string) kitmetrics.Counter {
	return r.r.GetOrRegisterCounter(r.prefixedName(name))
}

func (r *prefixedRegistry) GetOrRegisterGauge(name string) kitmetrics.Gauge {
	return r.r.GetOrRegisterGauge(r.prefixedName(name))
}

func (r *prefixedRegistry) GetOrRegisterHistogram(name string, buckets int) kitmetrics.Histogram {
	return r.r.GetOrRegisterHistogram(r.prefixedName(name), buckets)
}

func (r *prefixedRegistry) GetOrRegisterTimer(name string) Timer {
	return r.r.GetOrRegisterTimer(r.prefixedName(name))
}

func (r *prefixedRegistry) prefixedName(name string) string {
	return r.prefix + "." + name
}
