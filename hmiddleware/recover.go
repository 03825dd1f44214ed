package hmiddleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heroku/grokstats/requestid"
)

// Recover returns a middleware which recovers panics in next, logs them as
// errors with l and answers 500. http.ErrAbortHandler is re-panicked so
// net/http can abort the response.
func Recover(l logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer handleCrash(func(v interface{}) {
				if v == http.ErrAbortHandler {
					panic(v)
				}

				id, _ := requestid.FromContext(r.Context())
				werr := errors.Errorf("http handler panic: %v", v)
				l.WithError(werr).WithFields(logrus.Fields{
					"request_id": id,
					"path":       r.URL.RequestURI(),
				}).Error("http handler panic")

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			})
			next.ServeHTTP(w, r)
		})
	}
}

func handleCrash(handler func(interface{})) {
	if r := recover(); r != nil {
		handler(r)
	}
}
