package statistics

import (
	"net/http"
	"time"

	"github.com/heroku/grokstats/go-kit/metrics"
	"github.com/heroku/grokstats/go-kit/metricsregistry"
	"github.com/heroku/grokstats/page"
)

// New returns an HTTP middleware which times requests and reports
// statistics to the given provider.
//
// The request's page.Config is taken from its context or, when missing,
// resolved and attached before the handler runs, so handlers can bind a
// project or store a search result on it.
func New(p metrics.Provider, opts ...Option) func(http.Handler) http.Handler {
	o := options{resolver: page.NewResolver("", nil)}
	for _, opt := range opts {
		opt(&o)
	}

	e := NewEmitter(metricsregistry.NewPrefixed(metricsregistry.New(p), o.prefix))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pc, r := page.Get(r, o.resolver)

			dur := timeServe(next, w, r)

			cat, ok := Classify(pc.RequestURI, pc.ContextPath, pc.Prefix)
			if !ok {
				if o.logger != nil {
					o.logger.Debugf("statistics: skipping unknown route %s", pc.RequestURI)
				}
				return
			}
			e.Emit(cat, dur, pc)
		})
	}
}

// timeServe calls next once and returns how long it took. A panic in next
// is not recovered.
func timeServe(next http.Handler, w http.ResponseWriter, r *http.Request) time.Duration {
	start := time.Now()
	next.ServeHTTP(w, r)
	return time.Since(start)
}

// DebugLogger is satisfied by logrus.FieldLogger and svclog.SampleLogger.
type DebugLogger interface {
	Debugf(format string, args ...interface{})
}

type options struct {
	resolver *page.Resolver
	prefix   string
	logger   DebugLogger
}

// Option configures the middleware.
type Option func(*options)

// WithResolver sets the resolver used for requests that arrive without a
// page.Config.
func WithResolver(rv *page.Resolver) Option {
	return func(o *options) {
		o.resolver = rv
	}
}

// WithContextPath is shorthand for a resolver mounted at contextPath with
// no project catalog.
func WithContextPath(contextPath string) Option {
	return func(o *options) {
		o.resolver = page.NewResolver(contextPath, nil)
	}
}

// WithMetricsPrefix prefixes every metric name with prefix + ".".
func WithMetricsPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithLogger logs skipped requests at debug level. A rate limited logger
// such as svclog.SampleLogger is recommended.
func WithLogger(l DebugLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}
