// Package otel is a metrics.Provider that pushes to an OpenTelemetry
// collector over OTLP.
//
// As with the Prometheus provider, metric names are carried as the value of
// a "metric" attribute on three shared instruments (<namespace>.counter,
// <namespace>.gauge and <namespace>.timer) because OTel instrument names
// cannot contain names such as "*".
package otel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/generic"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	xmetrics "github.com/heroku/grokstats/go-kit/metrics"
)

var (
	_ xmetrics.Provider = (*Provider)(nil)
	_ metrics.Counter   = (*Counter)(nil)
	_ metrics.Gauge     = (*Gauge)(nil)
	_ metrics.Histogram = (*Histogram)(nil)
)

const (
	metricKey      = "metric"
	serviceNameKey = "service.name"
)

// Provider owns an SDK MeterProvider and the shared instruments.
type Provider struct {
	ctx context.Context
	mp  *sdkmetric.MeterProvider

	counter   metric.Float64Counter
	histogram metric.Float64Histogram

	mu     sync.Mutex
	gauges map[string]*Gauge
}

// New returns a started Provider. The exporter is chosen by the options;
// without one, metrics go to DefaultAgentEndpoint over HTTP.
func New(ctx context.Context, serviceName string, opts ...Option) (*Provider, error) {
	cfg := config{
		ctx:       ctx,
		namespace: "grokstats",
		period:    DefaultCollectPeriod,
		buckets:   xmetrics.FiveSecondDistribution(),
	}
	defaults := []Option{WithHTTPEndpointExporter(DefaultAgentEndpoint)}
	for _, opt := range append(defaults, opts...) {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("failed to apply options: %w", err)
		}
	}

	reader, err := cfg.newReader()
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(append(
		[]attribute.KeyValue{attribute.String(serviceNameKey, serviceName)},
		cfg.attributes...,
	)...)

	p := &Provider{
		ctx:    ctx,
		gauges: make(map[string]*Gauge),
		mp: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(reader),
			sdkmetric.WithResource(res),
		),
	}

	meter := p.mp.Meter(serviceName)

	if p.counter, err = meter.Float64Counter(cfg.namespace + ".counter"); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	p.histogram, err = meter.Float64Histogram(cfg.namespace+".timer",
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(cfg.buckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram: %w", err)
	}

	_, err = meter.Float64ObservableGauge(cfg.namespace+".gauge",
		metric.WithFloat64Callback(p.observeGauges),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge: %w", err)
	}

	return p, nil
}

// Stop flushes pending metrics and shuts down the exporter.
func (p *Provider) Stop() {
	_ = p.mp.Shutdown(p.ctx)
}

// NewCounter implements metrics.Provider.
func (p *Provider) NewCounter(name string) metrics.Counter {
	return &Counter{p: p, lvs: []string{metricKey, name}}
}

// NewGauge implements metrics.Provider.
func (p *Provider) NewGauge(name string) metrics.Gauge {
	return p.newGauge(metricKey, name)
}

func (p *Provider) newGauge(labelValues ...string) *Gauge {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := keyName(labelValues...)
	if g, ok := p.gauges[k]; ok {
		return g
	}

	g := &Gauge{Gauge: generic.NewGauge(k), p: p, lvs: labelValues}
	p.gauges[k] = g
	return g
}

// NewHistogram implements metrics.Provider. Bucket boundaries are set on the
// shared instrument, so the count is ignored.
func (p *Provider) NewHistogram(name string, _ int) metrics.Histogram {
	return &Histogram{p: p, lvs: []string{metricKey, name}}
}

func (p *Provider) observeGauges(_ context.Context, o metric.Float64Observer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, g := range p.gauges {
		o.Observe(g.Value(), metric.WithAttributes(makeAttributes(g.lvs)...))
	}
	return nil
}

// Counter is a go-kit Counter on the shared counter instrument.
type Counter struct {
	p   *Provider
	lvs []string
}

// Add implements metrics.Counter.
func (c *Counter) Add(delta float64) {
	c.p.counter.Add(c.p.ctx, delta, metric.WithAttributes(makeAttributes(c.lvs)...))
}

// With implements metrics.Counter.
func (c *Counter) With(labelValues ...string) metrics.Counter {
	return &Counter{p: c.p, lvs: appendLabels(c.lvs, labelValues)}
}

// Gauge keeps its value locally; the observable gauge callback reports it
// on every collection.
type Gauge struct {
	*generic.Gauge
	p   *Provider
	lvs []string
}

// With implements metrics.Gauge.
func (g *Gauge) With(labelValues ...string) metrics.Gauge {
	return g.p.newGauge(appendLabels(g.lvs, labelValues)...)
}

// Histogram is a go-kit Histogram on the shared timer instrument.
type Histogram struct {
	p   *Provider
	lvs []string
}

// Observe implements metrics.Histogram.
func (h *Histogram) Observe(value float64) {
	h.p.histogram.Record(h.p.ctx, value, metric.WithAttributes(makeAttributes(h.lvs)...))
}

// With implements metrics.Histogram.
func (h *Histogram) With(labelValues ...string) metrics.Histogram {
	return &Histogram{p: h.p, lvs: appendLabels(h.lvs, labelValues)}
}

func appendLabels(lvs, more []string) []string {
	return append(append([]string(nil), lvs...), more...)
}

// keyName is used as the map key for gauges.
func keyName(labelValues ...string) string {
	l := len(labelValues)
	parts := make([]string, 0, l/2)
	for i := 0; i+1 < l; i += 2 {
		parts = append(parts, labelValues[i]+":"+labelValues[i+1])
	}
	sort.Strings(parts)
	return strings.Join(parts, ".")
}

// makeAttributes converts label pairs into attributes. An odd trailing key
// gets the value "unknown".
func makeAttributes(labels []string) []attribute.KeyValue {
	if len(labels)%2 != 0 {
		labels = append(labels, "unknown")
	}

	attributes := make([]attribute.KeyValue, 0, len(labels)/2)
	for i := 0; i < len(labels); i += 2 {
		attributes = append(attributes, attribute.String(labels[i], labels[i+1]))
	}
	return attributes
}
