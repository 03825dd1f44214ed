package runtimemetrics

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"

	"github.com/heroku/grokstats/go-kit/metricsregistry"
)

// DefaultInterval is how often Run collects.
const DefaultInterval = 20 * time.Second

// Collector collects metrics about the Go runtime into go-kit metrics.
type Collector struct {
	goroutines  kitmetrics.Gauge
	allocBytes  kitmetrics.Gauge
	sysBytes    kitmetrics.Gauge
	totalAlloc  kitmetrics.Gauge
	nextGCBytes kitmetrics.Gauge
	gcPause     metricsregistry.Timer

	// lastGCNum is the GC cycle observed by the previous Collect, so only
	// new pauses are recorded.
	lastGCNum int64
}

// NewCollector returns a collector whose metrics are registered with reg.
func NewCollector(reg metricsregistry.Registry) *Collector {
	return &Collector{
		goroutines:  reg.GetOrRegisterGauge("go.goroutines"),
		allocBytes:  reg.GetOrRegisterGauge("go.mem.alloc-bytes"),
		sysBytes:    reg.GetOrRegisterGauge("go.mem.sys-bytes"),
		totalAlloc:  reg.GetOrRegisterGauge("go.mem.total-alloc-bytes"),
		nextGCBytes: reg.GetOrRegisterGauge("go.gc.next-target-heap-size-bytes"),
		gcPause:     reg.GetOrRegisterTimer("go.gc.pause-duration.ms"),
	}
}

// Collect calls into the runtime to update its internal metrics.
func (c *Collector) Collect() {
	c.goroutines.Set(float64(runtime.NumGoroutine()))

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	c.allocBytes.Set(float64(ms.Alloc))
	c.sysBytes.Set(float64(ms.Sys))
	c.totalAlloc.Set(float64(ms.TotalAlloc))
	c.nextGCBytes.Set(float64(ms.NextGC))

	var gs debug.GCStats
	debug.ReadGCStats(&gs)

	// More GCs than the runtime keeps pauses for may have happened since the
	// last Collect; then every stored pause is new.
	unobserved := int(gs.NumGC - c.lastGCNum)
	if unobserved > len(gs.Pause) {
		unobserved = len(gs.Pause)
	}
	for i := 0; i < unobserved; i++ {
		c.gcPause.Record(gs.Pause[i])
	}

	c.lastGCNum = gs.NumGC
}

// Run collects every interval until ctx is done.
func (c *Collector) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		c.Collect()

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
