// Package requestid reads, generates and carries request ids.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is the header generated ids are set on.
const Header = "X-Request-Id"

var requestIDKeys = []string{
	"Request-ID", "X-Request-ID",
}

// Get reads the Request-ID and X-Request-ID HTTP header from an `*http.Request`
// If no header is set, an empty string is returned
func Get(r *http.Request) string {
	for _, try := range requestIDKeys {
		if id := r.Header.Get(try); id != "" {
			return id
		}
	}
	return ""
}

// FromRequest returns the request's id, or a new random one when the
// request carries none. ok is false for generated ids.
func FromRequest(r *http.Request) (id string, ok bool) {
	if id := Get(r); id != "" {
		return id, true
	}
	return uuid.NewString(), false
}

type ctxKey int

const idKey ctxKey = 0

// WithID returns a copy of ctx carrying id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey, id)
}

// FromContext returns the id stored in ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(idKey).(string)
	return id, ok
}
