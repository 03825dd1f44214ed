// Package metrics wraps the go-kit metrics Provider type so request
// statistics can be reported to any backend the service is configured with.
//
// Timers are not a separate metric kind: a timer is a Histogram whose
// observations are durations in milliseconds. See ObserveDuration.
package metrics

import (
	"github.com/go-kit/kit/metrics"
)

// Provider represents the different types of metrics that a provider
// can expose. We duplicate the definition from go-kit so that backends
// in this module do not have to import every go-kit provider.
//
// Implementations must be safe for concurrent use, and calling a
// constructor twice with the same name must yield metrics that accumulate
// into the same underlying series.
type Provider interface {
	NewCounter(name string) metrics.Counter
	NewGauge(name string) metrics.Gauge
	NewHistogram(name string, buckets int) metrics.Histogram
	Stop()
}
