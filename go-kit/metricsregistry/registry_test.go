package metricsregistry

import (
	"sync"
	"testing"
	"time"

	"github.com/heroku/grokstats/go-kit/metrics/testmetrics"
)

func TestGetOrRegisterCounter(t *testing.T) {
	t.Run("basic registry", func(t *testing.T) {
		p := testmetrics.NewProvider(t)
		r := New(p)
		runCounterTests(t, r, p, "")
	})

	t.Run("with prefix", func(t *testing.T) {
		p := testmetrics.NewProvider(t)
		r := New(p)
		runCounterTests(t, NewPrefixed(r, "grok"), p, "grok.")
	})
}

func TestGetOrRegisterGauge(t *testing.T) {
	p := testmetrics.NewProvider(t)
	r := New(p)

	r.GetOrRegisterGauge("projects").Set(3)
	r.GetOrRegisterGauge("projects").Add(1)
	p.CheckGauge("projects", 4)
}

func TestGetOrRegisterTimer(t *testing.T) {
	t.Run("basic registry", func(t *testing.T) {
		p := testmetrics.NewProvider(t)
		r := New(p)
		runTimerTests(t, r, p, "")
	})

	t.Run("with prefix", func(t *testing.T) {
		p := testmetrics.NewProvider(t)
		r := New(p)
		runTimerTests(t, NewPrefixed(r, "grok"), p, "grok.")
	})
}

func TestNewPrefixedEmpty(t *testing.T) {
	p := testmetrics.NewProvider(t)
	r := New(p)

	if got := NewPrefixed(r, ""); got != r {
		t.Fatalf("got %T, want the parent registry", got)
	}
}

func TestConcurrentLookups(t *testing.T) {
	p := testmetrics.NewProvider(t)
	r := New(p)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.GetOrRegisterCounter("requests").Add(1)
			r.GetOrRegisterTimer("*").Record(time.Millisecond)
		}()
	}
	wg.Wait()

	p.CheckCounter("requests", 50)
	p.CheckObservationCount("*", 50)
}

func runCounterTests(t *testing.T, r Registry, p *testmetrics.Provider, prefix string) {
	t.Helper()
	r.GetOrRegisterCounter("requests").Add(1)
	r.GetOrRegisterCounter("requests").Add(1)
	p.CheckCounter(prefix+"requests", 2)

	r.GetOrRegisterCounter("other").Add(1)
	p.CheckCounter(prefix+"other", 1)
}

func runTimerTests(t *testing.T, r Registry, p *testmetrics.Provider, prefix string) {
	t.Helper()
	r.GetOrRegisterTimer("xref").Record(2 * time.Millisecond)
	r.GetOrRegisterTimer("xref").Record(4 * time.Millisecond)
	p.CheckObservations(prefix+"xref", []float64{2, 4})

	r.GetOrRegisterTimer("search").Record(time.Second)
	p.CheckObservations(prefix+"search", []float64{1000})
}
