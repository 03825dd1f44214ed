package metrics

import (
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"
)

// defaultTimingUnit is the resolution we'll use for all duration measurements.
const defaultTimingUnit = time.Millisecond

// DefaultBuckets is the bucket count passed to NewHistogram for timers.
const DefaultBuckets = 50

// ObserveDuration records d on h in milliseconds. Negative durations are
// recorded as zero.
func ObserveDuration(h kitmetrics.Histogram, d time.Duration) {
	observe(h, d, defaultTimingUnit)
}

// Milliseconds converts d to fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(defaultTimingUnit)
}

func observe(h kitmetrics.Histogram, d, unit time.Duration) {
	if d < 0 {
		d = 0
	}
	h.Observe(float64(d) / float64(unit))
}
