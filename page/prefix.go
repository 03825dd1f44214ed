package page

import "strings"

// Prefix is the kind of page a request path addresses, determined by the
// first path segment below the context path. The set is closed; paths that
// match none of the known prefixes resolve to Unknown.
type Prefix int

// Known prefixes.
const (
	Unknown Prefix = iota
	Xref
	More
	Diff
	History
	Download
	Raw
	RSS
	Search
	SearchResults
	OpenSearch
	NotFound
	Error
	JSON
)

var prefixPaths = [...]string{
	Unknown:       "",
	Xref:          "/xref",
	More:          "/more",
	Diff:          "/diff",
	History:       "/history",
	Download:      "/download",
	Raw:           "/raw",
	RSS:           "/rss",
	Search:        "/search",
	SearchResults: "/s",
	OpenSearch:    "/opensearch",
	NotFound:      "/enoent",
	Error:         "/error",
	JSON:          "/json",
}

var prefixBySegment = func() map[string]Prefix {
	m := make(map[string]Prefix, len(prefixPaths))
	for p, path := range prefixPaths {
		if path != "" {
			m[path] = Prefix(p)
		}
	}
	return m
}()

// String returns the path form of the prefix, e.g. "/xref". Unknown is "".
func (p Prefix) String() string {
	if p < 0 || int(p) >= len(prefixPaths) {
		return ""
	}
	return prefixPaths[p]
}

// Known reports whether p is one of the enumerated prefixes other than
// Unknown.
func (p Prefix) Known() bool {
	return p > Unknown && int(p) < len(prefixPaths)
}

// Name is the prefix without its leading "/", e.g. "xref".
func (p Prefix) Name() string {
	return strings.TrimPrefix(p.String(), "/")
}

// ProjectScoped reports whether the segment after the prefix names a
// project, as in /xref/<project>/path/to/file.
func (p Prefix) ProjectScoped() bool {
	switch p {
	case Xref, More, Diff, History, Download, Raw, RSS:
		return true
	}
	return false
}

// PrefixFromPath returns the prefix of a path relative to the context
// path. Only the first segment is considered: "/xref/foo" and "/xref" are
// Xref, "/xrefs" is Unknown.
func PrefixFromPath(path string) Prefix {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	seg := path
	if i := strings.IndexByte(path[1:], '/'); i >= 0 {
		seg = path[:i+1]
	}
	if p, ok := prefixBySegment[seg]; ok {
		return p
	}
	return Unknown
}
