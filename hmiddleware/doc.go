// Package hmiddleware contains the Chi style (function that takes and
// returns a HTTP handler) middleware grokstats wraps its pages in.
//
// The usual order, outermost first, is page.Middleware, RequestID,
// PostRequestLogger, Recover and then the statistics middleware, so panics
// in a page are logged and answered with a 500 without being recorded as
// statistics.
package hmiddleware
