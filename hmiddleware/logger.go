package hmiddleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/sirupsen/logrus"

	"github.com/heroku/grokstats/page"
	"github.com/heroku/grokstats/requestid"
)

// PostRequestLogger is a middleware for the github.com/sirupsen/logrus to log requests.
// It logs things similar to heroku logs and adds remote_addr, user_agent and
// the project the page was bound to. The project is only known when the
// page config is attached upstream, see page.Middleware.
func PostRequestLogger(l logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww, ok := w.(middleware.WrapResponseWriter)
			if !ok {
				ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			}

			t0 := time.Now()
			defer func() {
				logRequest(l, r, ww.Status(), ww.BytesWritten(), time.Since(t0))
			}()
			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

func logRequest(l logrus.FieldLogger, r *http.Request, status int, bytes int, service time.Duration) {
	id, ok := requestid.FromContext(r.Context())
	if !ok {
		id = requestid.Get(r)
	}

	log := l.WithFields(logrus.Fields{
		"request_id":  id,
		"method":      r.Method,
		"host":        r.Host,
		"path":        r.URL.RequestURI(),
		"remote_addr": r.RemoteAddr,
		"user_agent":  r.UserAgent(),
		"at":          "finish",
	})

	if pc, ok := page.FromContext(r.Context()); ok {
		if p, ok := pc.Project(); ok {
			log = log.WithField("project", p.Name)
		}
	}

	if status > 0 {
		log = log.WithField("status", status)
	}

	if bytes > 0 {
		log = log.WithField("bytes", bytes)
	}

	if service > 0 {
		log = log.WithField("service", fmt.Sprintf("%dms", service/time.Millisecond))
	}

	log.Info()
}
