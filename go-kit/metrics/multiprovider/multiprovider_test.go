package multiprovider

import (
	"testing"

	"github.com/heroku/grokstats/go-kit/metrics/testmetrics"
)

func TestCounters(t *testing.T) {
	p1 := testmetrics.NewProvider(t)
	p2 := testmetrics.NewProvider(t)

	p := New(p1, p2)
	p.NewCounter("requests").Add(1)

	p1.CheckCounter("requests", 1)
	p2.CheckCounter("requests", 1)
}

func TestGauges(t *testing.T) {
	p1 := testmetrics.NewProvider(t)
	p2 := testmetrics.NewProvider(t)

	p := New(p1, p2)
	p.NewGauge("projects").Set(4)

	p1.CheckGauge("projects", 4)
	p2.CheckGauge("projects", 4)
}

func TestHistograms(t *testing.T) {
	p1 := testmetrics.NewProvider(t)
	p2 := testmetrics.NewProvider(t)

	p := New(p1, p2)
	p.NewHistogram("empty_search", 50).Observe(7)

	p1.CheckObservations("empty_search", []float64{7})
	p2.CheckObservations("empty_search", []float64{7})
}

func TestStop(t *testing.T) {
	p1 := testmetrics.NewProvider(t)
	p2 := testmetrics.NewProvider(t)

	p := New(p1, p2)
	p.Stop()

	p1.CheckStopped()
	p2.CheckStopped()
}

func TestSingleProvider(t *testing.T) {
	p1 := testmetrics.NewProvider(t)

	if got := New(p1); got != p1 {
		t.Fatalf("got %T, want the provider itself", got)
	}
}
