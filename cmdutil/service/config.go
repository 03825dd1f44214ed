package service

import (
	"github.com/heroku/grokstats/cmdutil/debug"
	"github.com/heroku/grokstats/cmdutil/metrics"
	"github.com/heroku/grokstats/cmdutil/svclog"
)

// standardConfig is used when service.New is called.
type standardConfig struct {
	Debug   debug.Config
	Logger  svclog.Config
	Metrics metrics.Config
}

// platformConfig is used by HTTP.
type platformConfig struct {
	// Port is the primary port to listen on.
	Port int `env:"PORT,default=5000"`

	// AdditionalPort defines an additional port to listen on in addition to the
	// primary port for use with dyno-dyno networking.
	AdditionalPort int `env:"ADDITIONAL_PORT"`
}
