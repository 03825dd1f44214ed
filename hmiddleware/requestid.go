package hmiddleware

import (
	"net/http"

	"github.com/heroku/grokstats/requestid"
)

// RequestID puts the request's id, or a generated one, in the request
// context and echoes it in the X-Request-Id response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := requestid.FromRequest(r)
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.WithID(r.Context(), id)))
	})
}
