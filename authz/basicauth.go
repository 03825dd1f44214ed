package authz

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/heroku/grokstats/go-kit/metricsregistry"
)

// Credentials is a set of credentials with the added functionality of
// decoding.
type Credentials []Credential

// Decode implements the envdecode contract, allowing Credentials to be used in
// config structs. The format is user:pass;user2:pass2.
func (c *Credentials) Decode(repl string) error {
	s := strings.Split(repl, ";")
	result := make([]Credential, 0, len(s))
	for _, part := range s {
		cred, err := parseCredential(part)
		if err != nil {
			return err
		}
		result = append(result, cred)
	}

	*c = result
	return nil
}

// Credential is a valid username/password pair.
type Credential struct {
	Username string
	Password string
}

var errMalformedCredentials = errors.New("malformed credentials")

func parseCredential(credential string) (Credential, error) {
	parts := strings.SplitN(credential, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return Credential{}, errMalformedCredentials
	}
	return Credential{Username: parts[0], Password: parts[1]}, nil
}

// Checker stores a set of valid credentials.
type Checker struct {
	credentials []Credential
}

// NewChecker returns a checker accepting credentials.
func NewChecker(credentials []Credential) *Checker {
	return &Checker{credentials: credentials}
}

// Valid is true if username and password represent acceptable credentials.
func (c *Checker) Valid(username, password string) bool {
	var valid bool
	for _, cred := range c.credentials {
		userValid := subtle.ConstantTimeCompare([]byte(cred.Username), []byte(username)) == 1
		passwordValid := subtle.ConstantTimeCompare([]byte(cred.Password), []byte(password)) == 1
		if userValid && passwordValid {
			valid = true
		}
	}
	return valid
}

// Authenticate returns a middleware which attaches the basic auth user to
// the request context. Requests without credentials pass through
// anonymously; requests with invalid ones get a 401 and are counted as
// authz.basic-auth-failures in reg.
func (c *Checker) Authenticate(reg metricsregistry.Registry) func(http.Handler) http.Handler {
	failures := reg.GetOrRegisterCounter("authz.basic-auth-failures")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if !c.Valid(username, password) {
				failures.Add(1)
				w.Header().Set("WWW-Authenticate", `Basic realm="grokstats"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), User{Username: username})))
		})
	}
}
