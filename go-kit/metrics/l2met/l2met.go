// Package l2met provides a log-based metrics provider. It is the default
// sink when no metrics backend is configured: request statistics are
// flushed as l2met formatted log lines once per interval.
package l2met

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/generic"
	"github.com/sirupsen/logrus"

	xmetrics "github.com/heroku/grokstats/go-kit/metrics"
)

var _ xmetrics.Provider = &Provider{}

// DefaultInterval is how often Run flushes metrics.
const DefaultInterval = time.Minute

// Provider provides constructors for creating, tracking, and logging metrics.
type Provider struct {
	logger   logrus.FieldLogger
	interval time.Duration

	mu         sync.Mutex
	counters   map[string]*generic.Counter
	gauges     map[string]*generic.Gauge
	histograms map[string]*generic.Histogram
}

// New returns a metrics provider that logs through l every DefaultInterval.
func New(l logrus.FieldLogger) *Provider {
	return NewWithInterval(l, DefaultInterval)
}

// NewWithInterval is like New but flushes every interval. A non-positive
// interval means DefaultInterval.
func NewWithInterval(l logrus.FieldLogger, interval time.Duration) *Provider {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Provider{
		logger:     l,
		interval:   interval,
		counters:   map[string]*generic.Counter{},
		gauges:     map[string]*generic.Gauge{},
		histograms: map[string]*generic.Histogram{},
	}
}

// NewCounter implements Provider.
func (p *Provider) NewCounter(name string) metrics.Counter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.counters[name]; ok {
		return c
	}

	p.counters[name] = generic.NewCounter(name)
	return p.counters[name]
}

// NewGauge implements Provider.
func (p *Provider) NewGauge(name string) metrics.Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.gauges[name]; ok {
		return g
	}

	p.gauges[name] = generic.NewGauge(name)
	return p.gauges[name]
}

// NewHistogram implements Provider.
func (p *Provider) NewHistogram(name string, buckets int) metrics.Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.histograms[name]; ok {
		return h
	}

	p.histograms[name] = generic.NewHistogram(name, buckets)
	return p.histograms[name]
}

// Run logs metrics once per interval until the context is canceled. A
// final flush happens on cancellation so short lived processes still
// report.
func (p *Provider) Run(ctx context.Context) error {
	tick := time.NewTicker(p.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Flush()
			return ctx.Err()
		case <-tick.C:
			p.Flush()
		}
	}
}

// Flush logs a single line with every metric's current value. Counters
// are reset; histograms report their median and p99.
func (p *Provider) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.counters)+len(p.gauges)+len(p.histograms) == 0 {
		return
	}

	data := logrus.Fields{"at": "metrics"}

	for name, c := range p.counters {
		data["count#"+name] = c.ValueReset()
	}

	for name, g := range p.gauges {
		data["measure#"+name] = g.Value()
	}

	names := make([]string, 0, len(p.histograms))
	for name := range p.histograms {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		h := p.histograms[name]
		v := h.Quantile(0.99)
		// no measurement to report
		if v < 0 {
			continue
		}

		data["measure#"+name+".p50"] = h.Quantile(0.50)
		data["measure#"+name+".p99"] = v
	}

	p.logger.WithFields(data).Info()
}

// Stop implements Provider.
func (p *Provider) Stop() {}
