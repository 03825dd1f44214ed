package statistics

import (
	"testing"

	"github.com/heroku/grokstats/page"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		uri         string
		contextPath string
		prefix      page.Prefix
		want        Category
		ok          bool
	}{
		{"empty path", "", "", page.Unknown, RootCategory, true},
		{"slash", "/", "", page.Unknown, RootCategory, true},
		{"context path only", "/app", "/app", page.Unknown, RootCategory, true},
		{"context path slash", "/app/", "/app", page.Unknown, RootCategory, true},
		{"root wins over prefix", "/app", "/app", page.Xref, RootCategory, true},
		{"root wins over search", "/source/", "/source", page.Search, RootCategory, true},
		{"xref", "/source/xref/foo", "/source", page.Xref, "xref", true},
		{"search results", "/source/s", "/source", page.SearchResults, "s", true},
		{"history at root mount", "/history/foo", "", page.History, "history", true},
		{"unknown", "/unknownthing", "", page.Unknown, "", false},
		{"unknown below context", "/source/unknownthing", "/source", page.Unknown, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Classify(tc.uri, tc.contextPath, tc.prefix)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Classify(%q, %q, %v) = %q, %v; want %q, %v",
					tc.uri, tc.contextPath, tc.prefix, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestClassifyEveryKnownPrefix(t *testing.T) {
	for p := page.Xref; p <= page.JSON; p++ {
		got, ok := Classify("/source"+p.String()+"/x", "/source", p)
		if !ok {
			t.Errorf("%s: want a category", p)
			continue
		}
		if want := Category(p.String()[1:]); got != want {
			t.Errorf("%s: got %q, want %q", p, got, want)
		}
	}
}
