// Package metrics sets up the metrics providers a service reports to.
package metrics

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/heroku/grokstats/cmdutil"
	xmetrics "github.com/heroku/grokstats/go-kit/metrics"
	"github.com/heroku/grokstats/go-kit/metrics/l2met"
	"github.com/heroku/grokstats/go-kit/metrics/multiprovider"
	"github.com/heroku/grokstats/go-kit/metrics/provider/discard"
	"github.com/heroku/grokstats/go-kit/metrics/provider/otel"
	"github.com/heroku/grokstats/go-kit/metrics/provider/prometheus"
	"github.com/heroku/grokstats/go-kit/metricsregistry"
	"github.com/heroku/grokstats/go-kit/runtimemetrics"
)

// Backends.
const (
	L2Met      = "l2met"
	Prometheus = "prometheus"
	OTel       = "otel"
	Discard    = "discard"
)

// ErrUnknownBackend is returned by Setup for backends it does not know.
var ErrUnknownBackend = errors.New("unknown metrics backend")

// Config stores all the env related config to bootstrap metrics.
type Config struct {
	// Backends are separated by ";" in METRICS_BACKEND. Several backends
	// receive the same metrics.
	Backends       []string      `env:"METRICS_BACKEND,default=l2met"`
	Prefix         string        `env:"METRICS_PREFIX"`
	ReportInterval time.Duration `env:"METRICS_REPORT_INTERVAL,default=60s"`

	// TimerMax is the duration the prometheus and otel timer buckets are
	// spread over. Raise it when downloads or history walks run long.
	TimerMax time.Duration `env:"METRICS_TIMER_MAX,default=5s"`

	// RuntimeInterval is how often Go runtime metrics are collected. Zero
	// disables them.
	RuntimeInterval time.Duration `env:"METRICS_RUNTIME_INTERVAL,default=20s"`
	OTEL           OTELConfig
}

// OTELConfig configures the otel backend.
type OTELConfig struct {
	CollectorURL  *url.URL      `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Protocol      string        `env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	CollectPeriod time.Duration `env:"OTEL_METRIC_EXPORT_INTERVAL,default=20s"`
}

// Metrics is the result of Setup.
type Metrics struct {
	Provider xmetrics.Provider

	// Servers must run for the provider to report, e.g. the l2met flusher.
	Servers []cmdutil.Server

	// Handler serves the Prometheus exposition format. It is nil unless the
	// prometheus backend is enabled.
	Handler http.Handler
}

// Setup builds the providers named in cfg.Backends and combines them.
// attrs are attached to the otel resource, e.g. deploy and dyno.
func Setup(ctx context.Context, l logrus.FieldLogger, cfg Config, service string, attrs ...attribute.KeyValue) (*Metrics, error) {
	var (
		m         Metrics
		providers []xmetrics.Provider
		seen      = make(map[string]bool)
	)

	for _, b := range cfg.Backends {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true

		switch b {
		case L2Met:
			p := l2met.NewWithInterval(l, cfg.ReportInterval)
			providers = append(providers, p)
			m.Servers = append(m.Servers, cmdutil.NewContextServer(func(ctx context.Context) error {
				if err := p.Run(ctx); err != context.Canceled {
					return err
				}
				return nil
			}))

		case Prometheus:
			p := prometheus.New(
				prometheus.WithNamespace(service),
				prometheus.WithBuckets(xmetrics.TimerDistribution(cfg.TimerMax)),
			)
			providers = append(providers, p)
			m.Handler = p.Handler()

		case OTel:
			p, err := newOTel(ctx, l, cfg, service, attrs)
			if err != nil {
				return nil, errors.Wrap(err, "setting up otel metrics")
			}
			providers = append(providers, p)

		case Discard:
			providers = append(providers, discard.New())

		default:
			return nil, errors.Wrap(ErrUnknownBackend, b)
		}

		l.WithField("backend", b).Info("metrics backend enabled")
	}

	if len(providers) == 0 {
		providers = append(providers, discard.New())
	}
	m.Provider = multiprovider.New(providers...)

	if cfg.RuntimeInterval > 0 {
		c := runtimemetrics.NewCollector(metricsregistry.New(m.Provider))
		m.Servers = append(m.Servers, cmdutil.NewContextServer(func(ctx context.Context) error {
			return c.Run(ctx, cfg.RuntimeInterval)
		}))
	}

	return &m, nil
}

func newOTel(ctx context.Context, l logrus.FieldLogger, mcfg Config, service string, attrs []attribute.KeyValue) (*otel.Provider, error) {
	cfg := mcfg.OTEL
	opts := []otel.Option{
		otel.WithNamespace(service),
		otel.WithCollectPeriod(cfg.CollectPeriod),
		otel.WithAttributes(attrs...),
		otel.WithBuckets(xmetrics.TimerDistribution(mcfg.TimerMax)),
	}

	if cfg.CollectorURL != nil {
		l.WithFields(logrus.Fields{
			"collector": withoutCredentials(cfg.CollectorURL).String(),
			"protocol":  cfg.Protocol,
		}).Info("exporting otel metrics")

		if cfg.Protocol == "grpc" {
			opts = append(opts, otel.WithGRPCExporter(cfg.CollectorURL.Host))
		} else {
			opts = append(opts, otel.WithHTTPEndpointExporter(cfg.CollectorURL.String()))
		}
	}

	return otel.New(ctx, service, opts...)
}

// withoutCredentials returns a copy of u with any userinfo removed, so the
// URL can be logged.
func withoutCredentials(u *url.URL) *url.URL {
	clean := *u
	clean.User = nil
	return &clean
}
