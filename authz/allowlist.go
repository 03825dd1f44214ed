package authz

import (
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// AllowlistPlugin allows requests whose user is in the "users" parameter.
// Requests without a user are denied.
type AllowlistPlugin struct {
	mu    sync.RWMutex
	users map[string]bool
}

// Load implements Plugin. The "users" parameter is either a []string, a
// []any of strings or a comma separated string.
func (p *AllowlistPlugin) Load(params map[string]any) error {
	var names []string
	switch v := params["users"].(type) {
	case nil:
		return errors.New("allowlist: missing users parameter")
	case string:
		names = strings.Split(v, ",")
	case []string:
		names = v
	case []any:
		for _, n := range v {
			s, ok := n.(string)
			if !ok {
				return errors.Errorf("allowlist: user %v is not a string", n)
			}
			names = append(names, s)
		}
	default:
		return errors.Errorf("allowlist: unsupported users parameter %T", v)
	}

	users := make(map[string]bool, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			users[n] = true
		}
	}

	p.mu.Lock()
	p.users = users
	p.mu.Unlock()
	return nil
}

// Unload implements Plugin.
func (p *AllowlistPlugin) Unload() {
	p.mu.Lock()
	p.users = nil
	p.mu.Unlock()
}

// IsAllowed implements Plugin.
func (p *AllowlistPlugin) IsAllowed(r *http.Request, _ Entity) bool {
	u, ok := UserFromContext(r.Context())
	if !ok {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users[u.Username]
}
