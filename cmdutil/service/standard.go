// Package service wires the standard parts of a grokstats process:
// logging, metrics, debugging and signal handling.
package service

import (
	"context"
	"net/http"
	"strings"
	"syscall"

	"github.com/joeshaw/envdecode"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/heroku/grokstats/cmdutil"
	"github.com/heroku/grokstats/cmdutil/debug"
	"github.com/heroku/grokstats/cmdutil/metrics"
	"github.com/heroku/grokstats/cmdutil/signals"
	"github.com/heroku/grokstats/cmdutil/svclog"
	xmetrics "github.com/heroku/grokstats/go-kit/metrics"
)

// Standard is a standard service.
type Standard struct {
	g run.Group

	App             string
	Deploy          string
	Logger          logrus.FieldLogger
	MetricsProvider xmetrics.Provider

	// MetricsPrefix is METRICS_PREFIX with the process type appended, e.g.
	// "grokstats.server" for a web dyno. Empty when METRICS_PREFIX is.
	MetricsPrefix string

	// MetricsHandler serves Prometheus metrics, nil unless that backend is
	// enabled.
	MetricsHandler http.Handler
}

// New returns a Standard service with logging, metrics, debugging, and
// common signal handling.
//
// It calls envdecode.MustStrictDecode on the provided appConfig.
func New(appConfig interface{}, ofs ...OptionFunc) *Standard {
	var sc standardConfig
	envdecode.MustStrictDecode(&sc)
	if appConfig != nil {
		envdecode.MustStrictDecode(appConfig)
	}

	var o options
	for _, of := range ofs {
		of(&o)
	}

	logger := svclog.NewLogger(sc.Logger)

	s := &Standard{
		App:           sc.Logger.AppName,
		Deploy:        sc.Logger.Deploy,
		Logger:        logger,
		MetricsPrefix: sc.Metrics.Prefix,
	}

	if !o.skipMetricsSuffix && s.MetricsPrefix != "" {
		suf := o.customMetricsSuffix
		if suf == "" {
			suf = metricsSuffixFromDyno(sc.Logger.Dyno)
		}
		if suf != "" {
			s.MetricsPrefix += "." + suf
		}
	}

	m, err := metrics.Setup(context.Background(), logger, sc.Metrics, sc.Logger.AppName,
		attribute.String("deploy", sc.Logger.Deploy),
		attribute.String("dyno", sc.Logger.Dyno),
	)
	if err != nil {
		logger.WithError(err).Fatal("setting up metrics")
	}
	s.MetricsProvider = m.Provider
	s.MetricsHandler = m.Handler
	s.Add(m.Servers...)

	if sc.Debug.Port != 0 {
		s.Add(debug.New(logger, sc.Debug.Port))
	}
	if sc.Debug.PProf.EnablePProfDebugging {
		s.Add(debug.NewPProfServer(logger, &sc.Debug.PProf))
	}
	s.Add(signals.NewServer(logger, syscall.SIGINT, syscall.SIGTERM))

	return s
}

// Add adds cmdutil.Servers to be managed.
func (s *Standard) Add(svs ...cmdutil.Server) {
	for _, sv := range svs {
		s.g.Add(sv.Run, sv.Stop)
	}
}

// Run runs all standard and Added cmdutil.Servers.
//
// A panic is logged before it propagates. If the error returned by
// oklog/run.Run is non-nil, it is logged with s.Logger.Fatal.
func (s *Standard) Run() {
	defer ReportPanic(s.Logger)

	err := s.g.Run()

	// Not using defer here since it will have no effect if Fatal below
	// is called.
	s.MetricsProvider.Stop()

	if err != nil {
		s.Logger.WithError(err).Fatal()
	}
}

// ReportPanic logs a panic in the calling goroutine and re-panics. Use it
// with defer.
func ReportPanic(l logrus.FieldLogger) {
	if p := recover(); p != nil {
		l.WithField("at", "panic").Errorf("%v", p)
		panic(p)
	}
}

type options struct {
	skipMetricsSuffix   bool
	customMetricsSuffix string
}

// OptionFunc is a function that modifies internal service options.
type OptionFunc func(*options)

// SkipMetricsSuffix is an OptionFunc that has New skip automatically
// adding the process type from DYNO as a suffix on MetricsPrefix.
func SkipMetricsSuffix() OptionFunc {
	return func(o *options) {
		o.skipMetricsSuffix = true
	}
}

// CustomMetricsSuffix is an OptionFunc that has New use the given suffix
// on MetricsPrefix instead of inferring it from DYNO.
func CustomMetricsSuffix(s string) OptionFunc {
	return func(o *options) {
		o.customMetricsSuffix = s
	}
}

// metricsSuffixFromDyno determines a metrics suffix from
// dyno. It uses the process type component from dyno, or
// "server" if that's "web."
// If dyno is empty, it returns an empty suffix.
func metricsSuffixFromDyno(dyno string) string {
	if dyno == "" {
		return ""
	}
	parts := strings.SplitN(dyno, ".", 2)
	pt := parts[0]
	if pt == "web" {
		pt = "server"
	}
	return pt
}
