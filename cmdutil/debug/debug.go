// Package debug provides gops and pprof servers usable as cmdutil.Servers.
package debug

import (
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
)

// New inializes a debug server listening on the provided port.
//
// Connect to the debug server with gops:
//
//	gops stack localhost:PORT
func New(l logrus.FieldLogger, port int) *Server {
	return &Server{
		logger: l,
		addr:   fmt.Sprintf("127.0.0.1:%d", port),
		done:   make(chan struct{}),
	}
}

// Server wraps a gops server for easy use with oklog/group.
type Server struct {
	logger logrus.FieldLogger
	addr   string
	done   chan struct{}
}

// Run starts the debug server.
func (s *Server) Run() error {
	s.logger.WithFields(logrus.Fields{
		"at":      "binding",
		"service": "debug",
		"addr":    s.addr,
	}).Info()

	opts := agent.Options{
		Addr:            s.addr,
		ShutdownCleanup: false,
	}
	if err := agent.Listen(opts); err != nil {
		return err
	}

	<-s.done
	return nil
}

// Stop shuts down the debug server.
func (s *Server) Stop(_ error) {
	agent.Close()

	close(s.done)
}

// PProfServer serves net/http/pprof on localhost.
type PProfServer struct {
	logger logrus.FieldLogger
	addr   string
	srv    *http.Server
	done   chan struct{}
}

// NewPProfServer returns a pprof server for cfg and applies its profiling
// rates.
func NewPProfServer(l logrus.FieldLogger, cfg *PProfConfig) *PProfServer {
	runtime.MemProfileRate = cfg.MemProfileRate

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.PProfPort)
	return &PProfServer{
		logger: l,
		addr:   addr,
		srv:    &http.Server{Addr: addr, Handler: mux},
		done:   make(chan struct{}),
	}
}

// Run serves until Stop is called.
func (s *PProfServer) Run() error {
	defer close(s.done)

	s.logger.WithFields(logrus.Fields{
		"at":      "binding",
		"service": "pprof",
		"addr":    s.addr,
	}).Info()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	if err := s.srv.Serve(ln); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop closes the server.
func (s *PProfServer) Stop(_ error) {
	s.srv.Close()
}
