// Package runtimemetrics reports Go runtime metrics next to the request
// statistics, so latency can be read against memory and GC pressure.
//
// It collects the following metrics:
//
//	go.goroutines - number of goroutines
//	go.mem.alloc-bytes - allocated bytes for heap objects
//	go.mem.sys-bytes - bytes requested from OS (may not all be used)
//	go.mem.total-alloc-bytes - cumulative total allocated bytes for heap objects
//	go.gc.pause-duration.ms - histogram of GC pause durations
//	go.gc.next-target-heap-size-bytes - target heap size of the next GC cycle
package runtimemetrics
