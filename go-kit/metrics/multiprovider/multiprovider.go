// Package multiprovider fans metrics out to several Providers, so request
// statistics can go to e.g. Prometheus and l2met at the same time.
package multiprovider

import (
	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/multi"

	"github.com/heroku/grokstats/go-kit/metrics"
)

// New takes any number of providers and returns a metrics.Provider that fans
// out all constructor calls to all the providers. A single provider is
// returned as is.
func New(providers ...metrics.Provider) metrics.Provider {
	if len(providers) == 1 {
		return providers[0]
	}
	return &multiProvider{providers: providers}
}

var _ metrics.Provider = &multiProvider{}

type multiProvider struct {
	providers []metrics.Provider
}

// NewCounter returns a multi.Counter composed from all the given providers.
func (m *multiProvider) NewCounter(name string) kitmetrics.Counter {
	counters := make([]kitmetrics.Counter, 0, len(m.providers))
	for _, p := range m.providers {
		counters = append(counters, p.NewCounter(name))
	}
	return multi.NewCounter(counters...)
}

// NewGauge returns a multi.Gauge composed from all the given providers.
func (m *multiProvider) NewGauge(name string) kitmetrics.Gauge {
	gauges := make([]kitmetrics.Gauge, 0, len(m.providers))
	for _, p := range m.providers {
		gauges = append(gauges, p.NewGauge(name))
	}
	return multi.NewGauge(gauges...)
}

// NewHistogram returns a multi.Histogram composed from all the given providers.
func (m *multiProvider) NewHistogram(name string, buckets int) kitmetrics.Histogram {
	histograms := make([]kitmetrics.Histogram, 0, len(m.providers))
	for _, p := range m.providers {
		histograms = append(histograms, p.NewHistogram(name, buckets))
	}
	return multi.NewHistogram(histograms...)
}

// Stop calls stop on all the underlying providers.
func (m *multiProvider) Stop() {
	for _, p := range m.providers {
		p.Stop()
	}
}
