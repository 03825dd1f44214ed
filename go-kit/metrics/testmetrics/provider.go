// Package testmetrics is an in-memory metrics.Provider whose recorded
// values can be checked by tests.
package testmetrics

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-kit/kit/metrics"

	xmetrics "github.com/heroku/grokstats/go-kit/metrics"
)

var _ xmetrics.Provider = &Provider{}

// Provider collects registered metrics for testing.
type Provider struct {
	t testing.TB

	sync.Mutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	stopped    bool
}

// NewProvider constructs a test provider which can later be checked.
func NewProvider(t testing.TB) *Provider {
	return &Provider{
		t:          t,
		counters:   make(map[string]*Counter),
		histograms: make(map[string]*Histogram),
		gauges:     make(map[string]*Gauge),
	}
}

// Stop makes it Provider compliant.
func (p *Provider) Stop() {
	p.Lock()
	defer p.Unlock()
	p.stopped = true
}

// NewCounter implements go-kit's Provider interface.
func (p *Provider) NewCounter(name string) metrics.Counter {
	return p.newCounter(name)
}

func (p *Provider) newCounter(name string, labelValues ...string) metrics.Counter {
	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if _, ok := p.counters[k]; !ok {
		p.counters[k] = &Counter{series: series{name: name, p: p, labelValues: labelValues}}
	}
	return p.counters[k]
}

// NewGauge implements go-kit's Provider interface.
func (p *Provider) NewGauge(name string) metrics.Gauge {
	return p.newGauge(name)
}

func (p *Provider) newGauge(name string, labelValues ...string) metrics.Gauge {
	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if _, ok := p.gauges[k]; !ok {
		p.gauges[k] = &Gauge{series: series{name: name, p: p, labelValues: labelValues}}
	}
	return p.gauges[k]
}

// NewHistogram implements go-kit's Provider interface.
func (p *Provider) NewHistogram(name string, _ int) metrics.Histogram {
	return p.newHistogram(name)
}

func (p *Provider) newHistogram(name string, labelValues ...string) metrics.Histogram {
	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if _, ok := p.histograms[k]; !ok {
		p.histograms[k] = &Histogram{series: series{name: name, p: p, labelValues: labelValues}}
	}
	return p.histograms[k]
}

// CheckCounter checks that there is a registered counter
// with the name and value provided.
func (p *Provider) CheckCounter(name string, v float64, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	c, ok := p.counters[k]
	if !ok {
		p.t.Fatalf("no counter named %s out of available counters: \n%s", k, available(p.counters))
	}

	if got := c.getValue(); got != v {
		p.t.Fatalf("%v = %v, want %v", name, got, v)
	}

	if len(labelValues) > 0 && !reflect.DeepEqual(labelValues, c.labelValues) {
		p.t.Fatalf("want counter label values: %#v, got %#v", labelValues, c.labelValues)
	}
}

// PrintCounterValue prints the value of the specified counter.
func (p *Provider) PrintCounterValue(name string) {
	p.Lock()
	defer p.Unlock()

	var v float64
	if c, ok := p.counters[name]; ok {
		v = c.getValue()
	}
	fmt.Printf("%s: %v\n", name, v)
}

// PrintObservationCount prints how many observations the specified
// histogram has received.
func (p *Provider) PrintObservationCount(name string) {
	p.Lock()
	defer p.Unlock()

	var n int
	if h, ok := p.histograms[name]; ok {
		n = len(h.getObservations())
	}
	fmt.Printf("%s: %d\n", name, n)
}

// CheckNoCounter checks that there is no registered counter with the name
// provided.
func (p *Provider) CheckNoCounter(name string, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if _, ok := p.counters[k]; ok {
		p.t.Fatalf("a counter named %s was found", k)
	}
}

// CheckNoHistogram checks that there is no registered histogram with the
// name provided.
func (p *Provider) CheckNoHistogram(name string, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	if _, ok := p.histograms[k]; ok {
		p.t.Fatalf("a histogram named %s was found", k)
	}
}

// CheckEmpty checks that no metric of any kind has been registered.
func (p *Provider) CheckEmpty() {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	if n := len(p.counters) + len(p.gauges) + len(p.histograms); n != 0 {
		p.t.Fatalf("want no metrics, got %d:\ncounters:\n%s\nhistograms:\n%s",
			n, available(p.counters), available(p.histograms))
	}
}

// CheckObservationsMinMax checks that there is a histogram
// with the name and that the values all fall within the min/max range.
func (p *Provider) CheckObservationsMinMax(name string, min, max float64, labelValues ...string) {
	p.t.Helper()

	for _, o := range p.getObservations(name, labelValues...) {
		if o < min || o > max {
			p.t.Fatalf("got %f want %f..%f ", o, min, max)
		}
	}
}

// CheckObservations checks that there is a histogram
// with the name and observations provided.
func (p *Provider) CheckObservations(name string, obs []float64, labelValues ...string) {
	p.t.Helper()

	observations := p.getObservations(name, labelValues...)
	if !reflect.DeepEqual(observations, obs) {
		p.t.Fatalf("%v = %v, want %v", p.keyFor(name, labelValues...), observations, obs)
	}
}

// CheckObservationsMatch checks that there is a histogram with the name and
// observations provided, ignoring order.
func (p *Provider) CheckObservationsMatch(name string, obs []float64, labelValues ...string) {
	p.t.Helper()

	got := p.getObservations(name, labelValues...)

	want := make([]float64, len(obs))
	copy(want, obs)

	sort.Float64s(got)
	sort.Float64s(want)

	if !reflect.DeepEqual(want, got) {
		p.t.Fatalf("%v = %v, want %v", p.keyFor(name, labelValues...), got, want)
	}
}

// CheckObservationCount checks that there is a histogram
// with the name and number of observations provided.
func (p *Provider) CheckObservationCount(name string, n int, labelValues ...string) {
	p.t.Helper()

	observations := p.getObservations(name, labelValues...)

	if len(observations) != n {
		p.t.Fatalf("len(%v) = %v, want %v", p.keyFor(name, labelValues...), len(observations), n)
	}
}

func (p *Provider) getObservations(name string, labelValues ...string) []float64 {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	h, ok := p.histograms[k]
	if !ok {
		p.t.Fatalf("no histogram named %s out of available histograms: \n%s", k, available(p.histograms))
	}

	return h.getObservations()
}

// CheckGauge checks that there is a registered gauge
// with the name and value provided.
func (p *Provider) CheckGauge(name string, v float64, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	g, ok := p.gauges[k]
	if !ok {
		p.t.Fatalf("no gauge named %s out of available gauges: \n%s", k, available(p.gauges))
	}

	if got := g.getValue(); got != v {
		p.t.Fatalf("%v = %v, want %v", k, got, v)
	}
}

// CheckGaugeNonZero checks that there is a registered gauge with the name
// provided and a non-zero value.
func (p *Provider) CheckGaugeNonZero(name string, labelValues ...string) {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	k := p.keyFor(name, labelValues...)
	g, ok := p.gauges[k]
	if !ok {
		p.t.Fatalf("no gauge named %s out of available gauges: \n%s", k, available(p.gauges))
	}

	if g.getValue() == 0 {
		p.t.Fatalf("%v = 0, want non-zero", k)
	}
}

// CheckStopped verifies that a provider has been Stop'd.
func (p *Provider) CheckStopped() {
	p.t.Helper()

	p.Lock()
	defer p.Unlock()

	if !p.stopped {
		p.t.Fatal("provider is not stopped")
	}
}

func (p *Provider) keyFor(name string, labelValues ...string) string {
	if len(labelValues) == 0 {
		return name
	}
	return name + "." + strings.Join(labelValues, ":")
}

func available[T any](m map[string]T) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\n")
}
