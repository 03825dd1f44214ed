package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/heroku/grokstats/authz"
	"github.com/heroku/grokstats/catalog"
)

type catalogConfig struct {
	ProjectsFile string `env:"PROJECTS_FILE"`
	SourceRoot   string `env:"SOURCE_ROOT"`
}

type webConfig struct {
	Catalog catalogConfig

	ContextPath     string        `env:"CONTEXT_PATH,default=/source"`
	ReindexInterval time.Duration `env:"REINDEX_INTERVAL,default=10m"`
	MetricsPath     string        `env:"METRICS_PATH,default=/metrics"`

	AuthzPlugin string            `env:"AUTHZ_PLUGIN,default=true"`
	AuthzUsers  string            `env:"AUTHZ_USERS"`
	BasicAuth   authz.Credentials `env:"BASIC_AUTH_CREDENTIALS"`
}

var errNoCatalogSource = errors.New("one of PROJECTS_FILE or SOURCE_ROOT is required")

// loadCatalog prefers the projects file over scanning the source root.
func loadCatalog(ctx context.Context, cfg catalogConfig) (*catalog.Catalog, error) {
	switch {
	case cfg.ProjectsFile != "":
		return catalog.Load(cfg.ProjectsFile)
	case cfg.SourceRoot != "":
		return catalog.Discover(ctx, cfg.SourceRoot)
	}
	return nil, errNoCatalogSource
}

// newAuthz returns the loaded plugin named in cfg.
func newAuthz(cfg webConfig) (authz.Plugin, error) {
	az, err := authz.New(cfg.AuthzPlugin)
	if err != nil {
		return nil, err
	}

	var params map[string]any
	if cfg.AuthzUsers != "" {
		params = map[string]any{"users": cfg.AuthzUsers}
	}
	if err := az.Load(params); err != nil {
		return nil, errors.Wrapf(err, "loading authz plugin %s", cfg.AuthzPlugin)
	}
	return az, nil
}
