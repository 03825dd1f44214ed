package page

import (
	"context"
	"net/http"
	"strings"
)

// Projects looks up projects by name.
type Projects interface {
	Lookup(name string) (Project, bool)
}

// Resolver builds a Config from an incoming request.
type Resolver struct {
	contextPath string
	projects    Projects
}

// NewResolver returns a Resolver for a service mounted at contextPath
// ("" or "/" for the root). projects may be nil, in which case no request
// is ever bound to a project.
func NewResolver(contextPath string, projects Projects) *Resolver {
	return &Resolver{
		contextPath: strings.TrimSuffix(contextPath, "/"),
		projects:    projects,
	}
}

// ContextPath returns the mount path, without a trailing slash.
func (rv *Resolver) ContextPath() string {
	return rv.contextPath
}

// Resolve computes the Config of r. Project binding uses the segment after a
// project scoped prefix, falling back to the "project" query parameter.
func (rv *Resolver) Resolve(r *http.Request) *Config {
	uri := r.URL.Path
	rel := strings.TrimPrefix(uri, rv.contextPath)

	pc := NewConfig(uri, rv.contextPath, PrefixFromPath(rel))

	if rv.projects == nil {
		return pc
	}

	name := r.URL.Query().Get("project")
	if pc.Prefix.ProjectScoped() {
		if seg := projectSegment(rel); seg != "" {
			name = seg
		}
	}
	if name == "" {
		return pc
	}
	if p, ok := rv.projects.Lookup(name); ok {
		pc.SetProject(p)
	}
	return pc
}

// projectSegment returns the second path segment of rel.
func projectSegment(rel string) string {
	parts := strings.SplitN(strings.TrimPrefix(rel, "/"), "/", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

type ctxKey int

const configKey ctxKey = 0

// WithConfig returns a copy of ctx carrying pc.
func WithConfig(ctx context.Context, pc *Config) context.Context {
	return context.WithValue(ctx, configKey, pc)
}

// FromContext returns the Config stored in ctx, if any.
func FromContext(ctx context.Context) (*Config, bool) {
	pc, ok := ctx.Value(configKey).(*Config)
	return pc, ok && pc != nil
}

// Get returns the Config of r, resolving and attaching one when r does not
// carry it yet. The returned request must be used downstream so handlers
// see the same Config.
func Get(r *http.Request, rv *Resolver) (*Config, *http.Request) {
	if pc, ok := FromContext(r.Context()); ok {
		return pc, r
	}
	pc := rv.Resolve(r)
	return pc, r.WithContext(WithConfig(r.Context(), pc))
}

// Middleware attaches a Config to every request.
func Middleware(rv *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, r = Get(r, rv)
			next.ServeHTTP(w, r)
		})
	}
}
