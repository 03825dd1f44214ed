// Package browse serves the pages grokstats measures: the project list,
// cross references, raw files and search.
package browse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi"
	"github.com/sirupsen/logrus"

	"github.com/heroku/grokstats/authz"
	"github.com/heroku/grokstats/catalog"
	"github.com/heroku/grokstats/page"
)

// Handler serves the browse and search pages of a catalog.
type Handler struct {
	catalog *catalog.Catalog
	authz   authz.Plugin
	logger  logrus.FieldLogger
}

// New returns a Handler for c. Access to projects is checked with az.
func New(c *catalog.Catalog, az authz.Plugin, l logrus.FieldLogger) *Handler {
	return &Handler{catalog: c, authz: az, logger: l}
}

// Routes returns the router to mount at the service's context path.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.index)
	r.Get("/xref/{project}", h.xref)
	r.Get("/xref/{project}/*", h.xref)
	r.Get("/raw/{project}/*", h.raw(false))
	r.Get("/download/{project}/*", h.raw(true))
	r.Get("/search", h.search)
	r.Get("/s", h.search)
	r.Get("/json", h.searchJSON)
	r.Get("/enoent", h.notFound)
	r.Get("/error", h.serverError)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path.Join(contextPath(r), page.NotFound.String()), http.StatusFound)
	})
	return r
}

// config returns the request's page config. Requests served without the
// page middleware get a detached one.
func config(r *http.Request) *page.Config {
	if pc, ok := page.FromContext(r.Context()); ok {
		return pc
	}
	return page.NewConfig(r.URL.Path, "", page.PrefixFromPath(r.URL.Path))
}

func contextPath(r *http.Request) string {
	if pc := config(r); pc.ContextPath != "" {
		return pc.ContextPath
	}
	return "/"
}

func (h *Handler) allowedProjects(r *http.Request) []page.Project {
	var ps []page.Project
	for _, p := range h.catalog.Projects() {
		if h.authz.IsAllowed(r, authz.Project{Name: p.Name}) {
			ps = append(ps, p)
		}
	}
	return ps
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, p := range h.allowedProjects(r) {
		fmt.Fprintln(w, p.Name)
	}
}

// project looks up the project named in the URL, binds the request to it
// and checks access. It writes the error response and returns false when
// the request cannot continue.
func (h *Handler) project(w http.ResponseWriter, r *http.Request) (page.Project, bool) {
	p, ok := h.catalog.Lookup(chi.URLParam(r, "project"))
	if !ok {
		http.Error(w, "no such project", http.StatusNotFound)
		return page.Project{}, false
	}
	if !h.authz.IsAllowed(r, authz.Project{Name: p.Name}) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return page.Project{}, false
	}
	config(r).SetProject(p)
	return p, true
}

func (h *Handler) xref(w http.ResponseWriter, r *http.Request) {
	p, ok := h.project(w, r)
	if !ok {
		return
	}

	dir := strings.Trim(chi.URLParam(r, "*"), "/")
	var entries []string
	for _, f := range h.catalog.Files(p.Name) {
		if f == dir {
			h.serveFile(w, r, p, f, false)
			return
		}
		if dir == "" || strings.HasPrefix(f, dir+"/") {
			entries = append(entries, f)
		}
	}
	if len(entries) == 0 && dir != "" {
		http.Error(w, "no such path", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, e := range entries {
		fmt.Fprintln(w, e)
	}
}

func (h *Handler) raw(download bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.project(w, r)
		if !ok {
			return
		}
		h.serveFile(w, r, p, strings.Trim(chi.URLParam(r, "*"), "/"), download)
	}
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, p page.Project, rel string, download bool) {
	name := filepath.Join(p.Path, filepath.FromSlash(path.Clean("/"+rel)))
	f, err := os.Open(name)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.WithError(err).WithField("project", p.Name).Error("opening file")
		}
		http.Error(w, "no such file", http.StatusNotFound)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.Error(w, "no such file", http.StatusNotFound)
		return
	}

	if download {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(rel)))
	}
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// runSearch searches the projects the request is allowed to see and stores
// the result on the page config.
func (h *Handler) runSearch(r *http.Request) *page.SearchResult {
	q := r.URL.Query()
	res := &page.SearchResult{Query: q.Get("q")}

	allowed := make(map[string]bool)
	for _, p := range h.allowedProjects(r) {
		allowed[p.Name] = true
	}

	var projects []string
	if want := q["project"]; len(want) > 0 {
		for _, name := range want {
			if allowed[name] {
				projects = append(projects, name)
			}
		}
	} else {
		for name := range allowed {
			projects = append(projects, name)
		}
	}

	if len(projects) > 0 {
		res.Hits = h.catalog.Search(res.Query, projects...)
	}
	if res.Hits == nil {
		res.Hits = []page.Hit{}
	}

	config(r).SetSearchResult(res)
	return res
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	res := h.runSearch(r)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if res.Empty() {
		fmt.Fprintf(w, "no matches for %q\n", res.Query)
		return
	}
	for _, hit := range res.Hits {
		fmt.Fprintf(w, "%s/%s\n", hit.Project, hit.Path)
	}
}

func (h *Handler) searchJSON(w http.ResponseWriter, r *http.Request) {
	res := h.runSearch(r)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		h.logger.WithError(err).Error("encoding search result")
	}
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "internal error", http.StatusInternalServerError)
}
