package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli"

	"github.com/heroku/grokstats/authz"
	"github.com/heroku/grokstats/browse"
	"github.com/heroku/grokstats/catalog"
	"github.com/heroku/grokstats/cmdutil"
	"github.com/heroku/grokstats/cmdutil/service"
	"github.com/heroku/grokstats/cmdutil/svclog"
	"github.com/heroku/grokstats/go-kit/metrics"
	"github.com/heroku/grokstats/go-kit/metricsregistry"
	"github.com/heroku/grokstats/hmiddleware"
	"github.com/heroku/grokstats/hmiddleware/statistics"
	"github.com/heroku/grokstats/page"
)

func runWeb(c *cli.Context) error {
	var cfg webConfig
	s := service.New(&cfg)

	cat, err := loadCatalog(context.Background(), cfg.Catalog)
	if err != nil {
		s.Logger.WithError(err).Fatal("loading catalog")
	}

	if cfg.ReindexInterval > 0 {
		s.Add(cmdutil.NewContextServer(func(ctx context.Context) error {
			return cat.Reindex(ctx, s.Logger, cfg.ReindexInterval)
		}))
	} else if err := cat.Index(context.Background()); err != nil {
		s.Logger.WithError(err).Fatal("indexing catalog")
	}

	az, err := newAuthz(cfg)
	if err != nil {
		s.Logger.WithError(err).Fatal()
	}
	defer az.Unload()

	h := newHandler(s.Logger, s.MetricsProvider, s.MetricsPrefix, s.MetricsHandler, cat, az, cfg)
	s.Add(service.HTTP(s.Logger, h))

	s.Logger.WithFields(logrus.Fields{
		"context_path": cfg.ContextPath,
		"projects":     len(cat.Names()),
		"authz":        cfg.AuthzPlugin,
	}).Info("starting")

	s.Run()
	return nil
}

// newHandler builds the web router. Pages are mounted at the context path
// behind the statistics middleware; the metrics endpoint, when there is
// one, is not measured.
func newHandler(
	l logrus.FieldLogger,
	p metrics.Provider,
	metricsPrefix string,
	metricsHandler http.Handler,
	cat *catalog.Catalog,
	az authz.Plugin,
	cfg webConfig,
) http.Handler {
	rv := page.NewResolver(cfg.ContextPath, cat)

	r := chi.NewRouter()
	r.Use(
		page.Middleware(rv),
		hmiddleware.RequestID,
		hmiddleware.PostRequestLogger(l),
		hmiddleware.Recover(l),
	)
	if len(cfg.BasicAuth) > 0 {
		reg := metricsregistry.NewPrefixed(metricsregistry.New(p), metricsPrefix)
		r.Use(authz.NewChecker(cfg.BasicAuth).Authenticate(reg))
	}

	if metricsHandler != nil {
		r.Method("GET", cfg.MetricsPath, metricsHandler)
	}

	stats := statistics.New(p,
		statistics.WithResolver(rv),
		statistics.WithMetricsPrefix(metricsPrefix),
		statistics.WithLogger(svclog.NewSampleLogger(l, 10, time.Second)),
	)

	mount := rv.ContextPath()
	if mount == "" {
		mount = "/"
	}
	r.Mount(mount, stats(browse.New(cat, az, l).Routes()))

	return r
}
