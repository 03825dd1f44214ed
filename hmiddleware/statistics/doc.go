// Package statistics provides middleware that times each request and
// records the duration under a small, fixed set of metric names derived
// from what the request was for.
//
// After the wrapped handler returns, the request is classified:
//
//	root        the context path itself ("" or "/" below it)
//	<prefix>    a known page prefix without its slash, e.g. xref, search, s
//	(none)      anything else; nothing at all is recorded
//
// For a classified request the following are recorded:
//
//	requests                counter, +1
//	*                       timer, every classified request
//	<category>              timer
//	viewing_of_<project>    timer, when the request is bound to a project
//	empty_search            timer, when a search produced no hits
//	successful_search       timer, when a search produced hits
//
// Timers are histograms in milliseconds. Project names are used verbatim in
// metric names, so they must be valid in the configured backend's key
// space; the Prometheus and OTLP providers carry names as label values and
// accept any string.
//
// A handler that panics propagates the panic through this middleware and
// its request is not recorded.
package statistics
