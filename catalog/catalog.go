// Package catalog keeps the set of projects a grokstats service serves and a
// file index used for search.
package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/heroku/grokstats/page"
)

// ErrNoProjects is returned when a catalog source defines no projects.
var ErrNoProjects = errors.New("catalog: no projects")

// indexConcurrency bounds how many projects are walked at once.
const indexConcurrency = 4

// Catalog is a set of projects by name. It is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	projects map[string]page.Project
	files    map[string][]string
}

// New returns a Catalog holding projects. Later duplicates of a name replace
// earlier ones.
func New(projects ...page.Project) *Catalog {
	c := &Catalog{
		projects: make(map[string]page.Project, len(projects)),
		files:    make(map[string][]string),
	}
	for _, p := range projects {
		c.projects[p.Name] = p
	}
	return c
}

type file struct {
	Projects []page.Project `yaml:"projects"`
}

// Load reads a catalog from a YAML file of the form
//
//	projects:
//	  - name: kernel
//	    path: /src/kernel
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading catalog")
	}
	return parse(b)
}

func parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(err, "decoding catalog")
	}
	if len(f.Projects) == 0 {
		return nil, ErrNoProjects
	}

	seen := make(map[string]bool, len(f.Projects))
	for i, p := range f.Projects {
		if p.Name == "" {
			return nil, errors.Errorf("catalog: project %d has no name", i)
		}
		if seen[p.Name] {
			return nil, errors.Errorf("catalog: duplicate project %q", p.Name)
		}
		seen[p.Name] = true
	}
	return New(f.Projects...), nil
}

// Discover builds a catalog with one project per top level directory of
// root. Hidden directories are skipped.
func Discover(ctx context.Context, root string) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, "reading source root")
	}

	var projects []page.Project
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		projects = append(projects, page.Project{
			Name: e.Name(),
			Path: filepath.Join(root, e.Name()),
		})
	}
	if len(projects) == 0 {
		return nil, ErrNoProjects
	}
	return New(projects...), nil
}

// Lookup returns the project called name.
func (c *Catalog) Lookup(name string) (page.Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.projects[name]
	return p, ok
}

// Names returns the sorted project names.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.projects))
	for n := range c.projects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Projects returns all projects sorted by name.
func (c *Catalog) Projects() []page.Project {
	names := c.Names()

	c.mu.RLock()
	defer c.mu.RUnlock()

	ps := make([]page.Project, 0, len(names))
	for _, n := range names {
		ps = append(ps, c.projects[n])
	}
	return ps
}

// Index walks every project's directory concurrently and replaces the file
// index with the slash separated paths found, relative to each project.
// The previous index is kept when any walk fails.
func (c *Catalog) Index(ctx context.Context) error {
	projects := c.Projects()
	found := make([][]string, len(projects))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(indexConcurrency)

	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			files, err := walk(ctx, p.Path)
			if err != nil {
				return errors.Wrapf(err, "indexing %s", p.Name)
			}
			found[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	files := make(map[string][]string, len(projects))
	for i, p := range projects {
		files[p.Name] = found[i]
	}

	c.mu.Lock()
	c.files = files
	c.mu.Unlock()
	return nil
}

func walk(ctx context.Context, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)
	return files, err
}

// Files returns the indexed files of project.
func (c *Catalog) Files(project string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.files[project]...)
}

// Search returns indexed files whose path contains query, case
// insensitively. When projects is empty every project is searched. Hits are
// ordered by project then path.
func (c *Catalog) Search(query string, projects ...string) []page.Hit {
	if query == "" {
		return nil
	}
	if len(projects) == 0 {
		projects = c.Names()
	} else {
		projects = append([]string(nil), projects...)
		sort.Strings(projects)
	}
	q := strings.ToLower(query)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var hits []page.Hit
	for _, name := range projects {
		for _, f := range c.files[name] {
			if strings.Contains(strings.ToLower(f), q) {
				hits = append(hits, page.Hit{Project: name, Path: f})
			}
		}
	}
	return hits
}
