// Package discard provides a metrics.Provider that drops everything. It
// backs METRICS_BACKEND=discard and is handy in benchmarks.
package discard

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"

	xmetrics "github.com/heroku/grokstats/go-kit/metrics"
)

type discardProvider struct{}

var _ xmetrics.Provider = discardProvider{}

// New returns a provider that produces no-op metrics via the
// discarding backend.
func New() xmetrics.Provider { return discardProvider{} }

func (discardProvider) NewCounter(string) metrics.Counter { return discard.NewCounter() }

func (discardProvider) NewGauge(string) metrics.Gauge { return discard.NewGauge() }

func (discardProvider) NewHistogram(string, int) metrics.Histogram { return discard.NewHistogram() }

func (discardProvider) Stop() {}
