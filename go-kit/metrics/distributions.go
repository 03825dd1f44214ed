package metrics

import "time"

var (
	// FiveSecondDistribution covers request timers between 0 and 5000
	// milliseconds, which is where page views and searches are expected to
	// land.
	//
	//     []float64{10, 55, 255, 505, 1255, 2505, 3755, 4505, 4755, 4955, 5000}
	FiveSecondDistribution = WithStandardPercentiles(0, 5000)

	standardPercentiles = []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 0.99, 0.999}
)

// TimerDistribution returns the standard percentile boundaries for timers
// expected to finish within max. It falls back to FiveSecondDistribution
// when max is not positive.
func TimerDistribution(max time.Duration) DistributionFunc {
	if max <= 0 {
		return FiveSecondDistribution
	}
	return WithStandardPercentiles(0, Milliseconds(max))
}

// DistributionFunc returns explicit histogram bucket boundaries.
type DistributionFunc func() []float64

// WithStandardPercentiles returns boundaries that are dense near min and
// max and sparse in the middle, for histograms read as P99/P999 latencies.
func WithStandardPercentiles(min, max float64) DistributionFunc {
	return WithPercentileDistribution(min, max, standardPercentiles)
}

// WithPercentileDistribution scales pattern between min and max.
func WithPercentileDistribution(min, max float64, pattern []float64) DistributionFunc {
	return func() []float64 {
		boundaries := make([]float64, len(pattern))

		s := min + max
		l := s * pattern[len(pattern)-1]

		for i, p := range pattern {
			boundaries[i] = (s * p) + (s - l)
		}

		return boundaries
	}
}
