package page

import "sync"

// SearchResultAttr is the attribute key search handlers store their
// *SearchResult under.
const SearchResultAttr = "page.search_result"

// Project is a source tree that pages can be bound to.
type Project struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

// Hit is a single search match.
type Hit struct {
	Project string `json:"project"`
	Path    string `json:"path"`
	Line    int    `json:"line,omitempty"`
}

// SearchResult summarizes a completed search. Hits may be nil or empty when
// nothing matched.
type SearchResult struct {
	Query string `json:"query"`
	Hits  []Hit  `json:"hits"`
}

// Empty reports whether the search produced no hits.
func (s *SearchResult) Empty() bool {
	return s == nil || len(s.Hits) == 0
}

// Config is the resolved context of one request.
type Config struct {
	RequestURI  string
	ContextPath string
	Prefix      Prefix

	mu      sync.Mutex
	project *Project
	attrs   map[string]interface{}
}

// NewConfig returns a Config for a request path below contextPath.
func NewConfig(requestURI, contextPath string, prefix Prefix) *Config {
	return &Config{
		RequestURI:  requestURI,
		ContextPath: contextPath,
		Prefix:      prefix,
	}
}

// Project returns the project the request is bound to, if any.
func (c *Config) Project() (Project, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.project == nil {
		return Project{}, false
	}
	return *c.project, true
}

// SetProject binds the request to p.
func (c *Config) SetProject(p Project) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.project = &p
}

// SetAttribute stores a request-scoped value.
func (c *Config) SetAttribute(key string, v interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attrs == nil {
		c.attrs = make(map[string]interface{})
	}
	c.attrs[key] = v
}

// Attribute returns a request-scoped value.
func (c *Config) Attribute(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.attrs[key]
	return v, ok
}

// SetSearchResult stores res under SearchResultAttr.
func (c *Config) SetSearchResult(res *SearchResult) {
	c.SetAttribute(SearchResultAttr, res)
}

// SearchResult returns the search result stored for this request. A nil
// *SearchResult counts as absent.
func (c *Config) SearchResult() (*SearchResult, bool) {
	v, ok := c.Attribute(SearchResultAttr)
	if !ok {
		return nil, false
	}
	res, ok := v.(*SearchResult)
	if !ok || res == nil {
		return nil, false
	}
	return res, true
}
