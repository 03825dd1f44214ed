// Package cmdutil runs the long lived parts of a grokstats process, such as
// HTTP listeners and metric flushers, as a group that stops together.
package cmdutil

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/oklog/run"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Server can be run synchronously and return an error.
//
// Servers are typically used with oklog/run.Group.
type Server interface {
	Run() error
	Stop(error)
}

// ServerFunc adapts a function to a Server with a no-op Stop.
type ServerFunc func() error

// Run calls fn and returns any errors.
func (fn ServerFunc) Run() error { return fn() }

// Stop does nothing.
func (fn ServerFunc) Stop(error) {}

// ServerFuncs implements the Server interface with provided functions.
type ServerFuncs struct {
	RunFunc  func() error
	StopFunc func(error)
}

// Run calls RunFunc and returns any errors.
func (sf ServerFuncs) Run() error {
	return sf.RunFunc()
}

// Stop calls StopFunc, if it's non-nil.
func (sf ServerFuncs) Stop(err error) {
	if sf.StopFunc != nil {
		sf.StopFunc(err)
	}
}

// NewContextServer returns a Server that runs fn with a context that is
// canceled when the Server is stopped.
func NewContextServer(fn func(context.Context) error) Server {
	ctx, cancel := context.WithCancel(context.Background())

	return ServerFuncs{
		RunFunc: func() error {
			return fn(ctx)
		},
		StopFunc: func(error) {
			cancel()
		},
	}
}

// MultiServer returns a Server which runs all of srvs until one of them
// returns or the MultiServer is stopped.
func MultiServer(srvs ...Server) Server {
	var g run.Group

	s := NewContextServer(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.Add(s.Run, s.Stop)

	for _, srv := range srvs {
		g.Add(srv.Run, srv.Stop)
	}

	return ServerFuncs{
		RunFunc:  g.Run,
		StopFunc: s.Stop,
	}
}

// ShutdownTimeout bounds how long a stopped HTTP server waits for in-flight
// requests.
const ShutdownTimeout = 5 * time.Second

// NewHTTPServer adapts srv to a Server. Run listens on srv.Addr; Stop shuts
// srv down gracefully, closing it if requests outlive ShutdownTimeout.
func NewHTTPServer(l logrus.FieldLogger, srv *http.Server) Server {
	return newHTTPServer(l, srv, nil)
}

// newHTTPServer is NewHTTPServer with a hook receiving the listener, which
// tests use to learn the address of a server bound to :0.
func newHTTPServer(l logrus.FieldLogger, srv *http.Server, listening func(net.Listener)) Server {
	return ServerFuncs{
		RunFunc: func() error {
			l.WithFields(logrus.Fields{
				"at":   "binding",
				"addr": srv.Addr,
			}).Info()

			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return errors.Wrap(err, "listening to tcp addr")
			}
			defer ln.Close()

			if listening != nil {
				listening(ln)
			}

			if err := srv.Serve(ln); err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFunc: func(error) { gracefulShutdown(l, srv) },
	}
}

func gracefulShutdown(l logrus.FieldLogger, s *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	l.WithField("at", "graceful-shutdown").Info()
	if err := s.Shutdown(ctx); err != nil {
		l.WithField("at", "graceful-shutdown").WithError(err).Warn()
		s.Close()
	}
}
