package statistics

import (
	"strings"

	"github.com/heroku/grokstats/page"
)

// Category is the label a request's duration is recorded under.
type Category string

// RootCategory is the category of requests for the context path itself.
const RootCategory Category = "root"

// Classify returns the category of a finished request. ok is false when the
// request matched no known prefix and is not a root request; such requests
// are not recorded.
func Classify(requestURI, contextPath string, prefix page.Prefix) (cat Category, ok bool) {
	if isRoot(requestURI, contextPath) {
		return RootCategory, true
	}
	if !prefix.Known() {
		return "", false
	}
	return Category(prefix.Name()), true
}

func isRoot(requestURI, contextPath string) bool {
	path := requestURI
	if contextPath != "" {
		path = strings.ReplaceAll(requestURI, contextPath, "")
	}
	return path == "" || path == "/"
}
