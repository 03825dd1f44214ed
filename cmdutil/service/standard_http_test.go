package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/heroku/grokstats/testing/testlog"
)

func TestHTTPServerHook(t *testing.T) {
	l, _ := testlog.New()

	var addrs []string
	s := newHTTP(l, platformConfig{Port: 0, AdditionalPort: 0}, http.NotFoundHandler(),
		WithHTTPServerHook(func(srv *http.Server) {
			addrs = append(addrs, srv.Addr)
		}))
	if len(addrs) != 0 {
		t.Fatalf("want no servers for unset ports, got %v", addrs)
	}
	s.Stop(nil)

	newHTTP(l, platformConfig{Port: 5000, AdditionalPort: 5001}, http.NotFoundHandler(),
		WithHTTPServerHook(func(srv *http.Server) {
			srv.ReadHeaderTimeout = time.Second
			addrs = append(addrs, srv.Addr)
		}))
	if len(addrs) != 2 || addrs[0] != ":5000" || addrs[1] != ":5001" {
		t.Fatalf("want servers on :5000 and :5001, got %v", addrs)
	}
}
