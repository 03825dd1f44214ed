// Package prometheus provides a metrics.Provider backed by a Prometheus
// registry.
//
// Provider metric names are free-form strings (request statistics use names
// such as "*" and "viewing_of_<project>"), which are not valid Prometheus
// metric names. Rather than rewriting them, every metric of a kind shares a
// single family and the provider name becomes the value of the "metric"
// label:
//
//	grokstats_counter_total{metric="requests"} 12
//	grokstats_timer_milliseconds_bucket{metric="viewing_of_kernel",le="55"} 3
package prometheus

import (
	"net/http"

	"github.com/go-kit/kit/metrics"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	xmetrics "github.com/heroku/grokstats/go-kit/metrics"
)

// DefaultNamespace prefixes every family name.
const DefaultNamespace = "grokstats"

const metricLabel = "metric"

var _ xmetrics.Provider = &Provider{}

// Provider creates Prometheus backed go-kit metrics.
type Provider struct {
	reg *stdprometheus.Registry

	counters   *kitprometheus.Counter
	gauges     *kitprometheus.Gauge
	histograms *kitprometheus.Histogram
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	namespace string
	buckets   []float64
}

// WithNamespace overrides DefaultNamespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithBuckets sets the histogram bucket boundaries, in milliseconds.
func WithBuckets(fn xmetrics.DistributionFunc) Option {
	return func(o *options) {
		o.buckets = fn()
	}
}

// New returns a Provider registering its families on a fresh registry.
func New(opts ...Option) *Provider {
	o := options{
		namespace: DefaultNamespace,
		buckets:   xmetrics.FiveSecondDistribution(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	cv := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: o.namespace,
		Name:      "counter_total",
		Help:      "Request statistics counters.",
	}, []string{metricLabel})

	gv := stdprometheus.NewGaugeVec(stdprometheus.GaugeOpts{
		Namespace: o.namespace,
		Name:      "gauge",
		Help:      "Request statistics gauges.",
	}, []string{metricLabel})

	hv := stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: o.namespace,
		Name:      "timer_milliseconds",
		Help:      "Request statistics timers in milliseconds.",
		Buckets:   o.buckets,
	}, []string{metricLabel})

	reg := stdprometheus.NewRegistry()
	reg.MustRegister(cv, gv, hv)

	return &Provider{
		reg:        reg,
		counters:   kitprometheus.NewCounter(cv),
		gauges:     kitprometheus.NewGauge(gv),
		histograms: kitprometheus.NewHistogram(hv),
	}
}

// NewCounter implements metrics.Provider.
func (p *Provider) NewCounter(name string) metrics.Counter {
	return p.counters.With(metricLabel, name)
}

// NewGauge implements metrics.Provider.
func (p *Provider) NewGauge(name string) metrics.Gauge {
	return p.gauges.With(metricLabel, name)
}

// NewHistogram implements metrics.Provider. Buckets are fixed at
// construction, so the bucket count is ignored.
func (p *Provider) NewHistogram(name string, _ int) metrics.Histogram {
	return p.histograms.With(metricLabel, name)
}

// Registry exposes the underlying registry, e.g. to add runtime collectors.
func (p *Provider) Registry() *stdprometheus.Registry {
	return p.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Stop implements metrics.Provider. Prometheus is pull based, so there is
// nothing to flush.
func (p *Provider) Stop() {}
