package service

import (
	"fmt"
	"net/http"

	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/heroku/grokstats/cmdutil"
)

// HTTP returns a standard HTTP server for the provided handler, listening
// on PORT and, when set, ADDITIONAL_PORT.
func HTTP(l logrus.FieldLogger, h http.Handler, opts ...func(*httpOptions)) cmdutil.Server {
	var cfg platformConfig
	envdecode.MustDecode(&cfg)

	return newHTTP(l, cfg, h, opts...)
}

func newHTTP(l logrus.FieldLogger, cfg platformConfig, h http.Handler, opts ...func(*httpOptions)) cmdutil.Server {
	var o httpOptions
	for _, opt := range opts {
		opt(&o)
	}

	var srvs []cmdutil.Server
	for _, port := range []int{cfg.Port, cfg.AdditionalPort} {
		if port == 0 {
			continue
		}
		s := &http.Server{
			Handler: h,
			Addr:    fmt.Sprintf(":%d", port),
		}
		o.configureServer(s)
		srvs = append(srvs, cmdutil.NewHTTPServer(l, s))
	}

	return cmdutil.MultiServer(srvs...)
}

type httpOptions struct {
	serverHook func(*http.Server)
}

func (o *httpOptions) configureServer(s *http.Server) {
	if o.serverHook != nil {
		o.serverHook(s)
	}
}

// WithHTTPServerHook allows services to provide a function to
// adjust settings on any HTTP server after the defaults are
// applied but before the server is started.
func WithHTTPServerHook(fn func(*http.Server)) func(*httpOptions) {
	return func(o *httpOptions) {
		o.serverHook = fn
	}
}
