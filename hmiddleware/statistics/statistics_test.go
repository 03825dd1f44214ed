package statistics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/heroku/grokstats/go-kit/metrics/testmetrics"
	"github.com/heroku/grokstats/go-kit/metricsregistry"
	"github.com/heroku/grokstats/page"
	"github.com/heroku/grokstats/testing/testlog"
)

type projectMap map[string]page.Project

func (m projectMap) Lookup(name string) (page.Project, bool) {
	p, ok := m[name]
	return p, ok
}

var testProjects = projectMap{
	"kernel": {Name: "kernel", Path: "/src/kernel"},
	"foo":    {Name: "foo", Path: "/src/foo"},
}

var noop = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	return w
}

func checkNoSupplementary(p *testmetrics.Provider) {
	p.CheckNoHistogram(EmptySearchTimer)
	p.CheckNoHistogram(SuccessfulSearchTimer)
	for name := range testProjects {
		p.CheckNoHistogram(ProjectTimerPrefix + name)
	}
}

func TestXrefWithoutProject(t *testing.T) {
	p := testmetrics.NewProvider(t)
	hand := New(p, WithContextPath("/source"))(noop)

	serve(hand, "http://example.org/source/xref/foo")

	p.CheckCounter(RequestsMetric, 1)
	p.CheckObservationCount(GenericTimer, 1)
	p.CheckObservationCount("xref", 1)
	checkNoSupplementary(p)
}

func TestRootRequests(t *testing.T) {
	for _, target := range []string{"/app", "/app/"} {
		t.Run(target, func(t *testing.T) {
			p := testmetrics.NewProvider(t)
			hand := New(p, WithContextPath("/app"))(noop)

			serve(hand, "http://example.org"+target)

			p.CheckCounter(RequestsMetric, 1)
			p.CheckObservationCount(GenericTimer, 1)
			p.CheckObservationCount(string(RootCategory), 1)
		})
	}
}

func TestRootWinsOverResolvedPrefix(t *testing.T) {
	p := testmetrics.NewProvider(t)
	rv := page.NewResolver("/app", nil)

	hand := New(p, WithResolver(rv))(noop)

	r := httptest.NewRequest("GET", "/app", nil)
	pc := page.NewConfig("/app", "/app", page.Xref)
	r = r.WithContext(page.WithConfig(r.Context(), pc))
	hand.ServeHTTP(httptest.NewRecorder(), r)

	p.CheckObservationCount(string(RootCategory), 1)
	p.CheckNoHistogram("xref")
}

func TestUnknownRouteRecordsNothing(t *testing.T) {
	p := testmetrics.NewProvider(t)
	rv := page.NewResolver("", testProjects)

	hand := New(p, WithResolver(rv))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pc, _ := page.FromContext(r.Context())
		pc.SetProject(testProjects["kernel"])
		pc.SetSearchResult(&page.SearchResult{Hits: []page.Hit{{Path: "a"}}})
	}))

	serve(hand, "http://example.org/unknownthing")

	p.CheckEmpty()
}

func TestUnknownRouteIsLogged(t *testing.T) {
	p := testmetrics.NewProvider(t)
	l, hook := testlog.New()

	hand := New(p, WithLogger(l))(noop)
	serve(hand, "http://example.org/unknownthing")

	hook.CheckContained(t, "skipping unknown route /unknownthing")
}

func TestProjectTimer(t *testing.T) {
	p := testmetrics.NewProvider(t)
	rv := page.NewResolver("/source", testProjects)
	hand := New(p, WithResolver(rv))(noop)

	serve(hand, "http://example.org/source/xref/kernel/init/main.c")

	p.CheckCounter(RequestsMetric, 1)
	p.CheckObservationCount("xref", 1)
	p.CheckObservationCount("viewing_of_kernel", 1)
	p.CheckNoHistogram("viewing_of_foo")
}

func TestProjectBoundByHandler(t *testing.T) {
	p := testmetrics.NewProvider(t)
	hand := New(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pc, ok := page.FromContext(r.Context())
		if !ok {
			t.Fatal("handler should see a page config")
		}
		pc.SetProject(page.Project{Name: "my project"})
	}))

	serve(hand, "http://example.org/more/x")

	p.CheckObservationCount("more", 1)
	p.CheckObservationCount("viewing_of_my project", 1)
}

func TestSearchOutcome(t *testing.T) {
	cases := []struct {
		name string
		res  *page.SearchResult
		want string
		not  string
	}{
		{"nil hits", &page.SearchResult{Query: "main"}, EmptySearchTimer, SuccessfulSearchTimer},
		{"zero hits", &page.SearchResult{Query: "main", Hits: []page.Hit{}}, EmptySearchTimer, SuccessfulSearchTimer},
		{"three hits", &page.SearchResult{Query: "main", Hits: make([]page.Hit, 3)}, SuccessfulSearchTimer, EmptySearchTimer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := testmetrics.NewProvider(t)
			hand := New(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				pc, _ := page.FromContext(r.Context())
				pc.SetSearchResult(tc.res)
			}))

			serve(hand, "http://example.org/search?q=main")

			p.CheckCounter(RequestsMetric, 1)
			p.CheckObservationCount("search", 1)
			p.CheckObservationCount(tc.want, 1)
			p.CheckNoHistogram(tc.not)
		})
	}
}

func TestNoSearchAttribute(t *testing.T) {
	p := testmetrics.NewProvider(t)
	hand := New(p)(noop)

	serve(hand, "http://example.org/search?q=main")

	p.CheckObservationCount("search", 1)
	p.CheckNoHistogram(EmptySearchTimer)
	p.CheckNoHistogram(SuccessfulSearchTimer)
}

func TestNilSearchResultIsAbsent(t *testing.T) {
	p := testmetrics.NewProvider(t)
	hand := New(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pc, _ := page.FromContext(r.Context())
		pc.SetSearchResult(nil)
	}))

	serve(hand, "http://example.org/search?q=main")

	p.CheckObservationCount("search", 1)
	p.CheckNoHistogram(EmptySearchTimer)
	p.CheckNoHistogram(SuccessfulSearchTimer)
}

func TestPanicRecordsNothing(t *testing.T) {
	p := testmetrics.NewProvider(t)
	hand := New(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	func() {
		defer func() {
			if v := recover(); v != "boom" {
				t.Fatalf("got panic %v, want boom", v)
			}
		}()
		serve(hand, "http://example.org/xref/foo")
	}()

	p.CheckEmpty()
}

func TestResponsePassesThrough(t *testing.T) {
	p := testmetrics.NewProvider(t)
	hand := New(p)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "body")
	}))

	w := serve(hand, "http://example.org/raw/foo")

	if w.Code != http.StatusTeapot || w.Body.String() != "body" || w.Header().Get("X-Test") != "yes" {
		t.Fatalf("got %d %q %v, want the handler's response", w.Code, w.Body.String(), w.Header())
	}
	p.CheckObservationCount("raw", 1)
}

func TestHandlerCalledOnce(t *testing.T) {
	p := testmetrics.NewProvider(t)

	var calls int
	hand := New(p)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls++
	}))
	serve(hand, "http://example.org/diff/foo")

	if calls != 1 {
		t.Fatalf("handler called %d times, want 1", calls)
	}
}

func TestDurationIsMeasured(t *testing.T) {
	p := testmetrics.NewProvider(t)
	hand := New(p)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		time.Sleep(20 * time.Millisecond)
	}))

	serve(hand, "http://example.org/history/foo")

	p.CheckObservationsMinMax(GenericTimer, 20, 60000)
	p.CheckObservationsMinMax("history", 20, 60000)
}

func TestMetricsPrefix(t *testing.T) {
	p := testmetrics.NewProvider(t)
	hand := New(p, WithMetricsPrefix("grok.server"))(noop)

	serve(hand, "http://example.org/xref/foo")

	p.CheckCounter("grok.server.requests", 1)
	p.CheckObservationCount("grok.server.*", 1)
	p.CheckObservationCount("grok.server.xref", 1)
}

func TestConcurrentRequests(t *testing.T) {
	p := testmetrics.NewProvider(t)
	rv := page.NewResolver("/source", testProjects)
	hand := New(p, WithResolver(rv))(noop)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := "/source/xref/kernel/a.c"
			if i%2 == 1 {
				target = "/source/search?q=x"
			}
			serve(hand, "http://example.org"+target)
		}(i)
	}
	wg.Wait()

	p.CheckCounter(RequestsMetric, n)
	p.CheckObservationCount(GenericTimer, n)
	p.CheckObservationCount("xref", n/2)
	p.CheckObservationCount("search", n/2)
	p.CheckObservationCount("viewing_of_kernel", n/2)
}

func TestEmitWithoutConfig(t *testing.T) {
	p := testmetrics.NewProvider(t)
	e := NewEmitter(metricsregistry.New(p))

	e.Emit("xref", 5*time.Millisecond, nil)

	p.CheckCounter(RequestsMetric, 1)
	p.CheckObservations(GenericTimer, []float64{5})
	p.CheckObservations("xref", []float64{5})
}

func ExampleNew() {
	p := testmetrics.NewProvider(&testing.T{})
	rv := page.NewResolver("/source", testProjects)

	hand := New(p, WithResolver(rv))(noop)

	for _, target := range []string{
		"/source/",
		"/source/xref/kernel/init/main.c",
		"/source/xref/foo/README",
		"/source/unknownthing",
	} {
		serve(hand, "http://example.org"+target)
	}

	p.PrintCounterValue("requests")
	p.PrintObservationCount("*")
	p.PrintObservationCount("root")
	p.PrintObservationCount("xref")
	p.PrintObservationCount("viewing_of_kernel")
	fmt.Println("done")

	// Output:
	// requests: 3
	// *: 3
	// root: 1
	// xref: 2
	// viewing_of_kernel: 1
	// done
}
