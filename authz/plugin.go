// Package authz decides which projects and groups a request may see.
package authz

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownPlugin is returned by New for names it does not know.
var ErrUnknownPlugin = errors.New("authz: unknown plugin")

// Entity is something access is granted to.
type Entity interface {
	EntityName() string
}

// Project is a single project.
type Project struct {
	Name string
}

// EntityName implements Entity.
func (p Project) EntityName() string { return p.Name }

// Group is a named collection of projects.
type Group struct {
	Name string
}

// EntityName implements Entity.
func (g Group) EntityName() string { return g.Name }

// Plugin authorizes requests.
type Plugin interface {
	// Load configures the plugin. params may be nil.
	Load(params map[string]any) error
	// Unload releases what Load acquired.
	Unload()
	// IsAllowed reports whether r may access e.
	IsAllowed(r *http.Request, e Entity) bool
}

// New returns the plugin registered as name, not yet loaded.
func New(name string) (Plugin, error) {
	switch strings.ToLower(name) {
	case "true", "":
		return TruePlugin{}, nil
	case "false":
		return FalsePlugin{}, nil
	case "allowlist":
		return &AllowlistPlugin{}, nil
	}
	return nil, errors.Wrap(ErrUnknownPlugin, name)
}

// TruePlugin allows everything.
type TruePlugin struct{}

// Load implements Plugin.
func (TruePlugin) Load(map[string]any) error { return nil }

// Unload implements Plugin.
func (TruePlugin) Unload() {}

// IsAllowed implements Plugin.
func (TruePlugin) IsAllowed(*http.Request, Entity) bool { return true }

// FalsePlugin denies everything.
type FalsePlugin struct{}

// Load implements Plugin.
func (FalsePlugin) Load(map[string]any) error { return nil }

// Unload implements Plugin.
func (FalsePlugin) Unload() {}

// IsAllowed implements Plugin.
func (FalsePlugin) IsAllowed(*http.Request, Entity) bool { return false }
