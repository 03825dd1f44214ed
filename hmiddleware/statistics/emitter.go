package statistics

import (
	"time"

	"github.com/heroku/grokstats/go-kit/metricsregistry"
	"github.com/heroku/grokstats/page"
)

// Metric names.
const (
	RequestsMetric        = "requests"
	GenericTimer          = "*"
	EmptySearchTimer      = "empty_search"
	SuccessfulSearchTimer = "successful_search"
	ProjectTimerPrefix    = "viewing_of_"
)

// Emitter records a classified request. It holds no per-request state and
// is safe for concurrent use as long as its Registry is.
type Emitter struct {
	reg metricsregistry.Registry
}

// NewEmitter returns an Emitter recording into reg. Metrics are created on
// first use.
func NewEmitter(reg metricsregistry.Registry) *Emitter {
	return &Emitter{reg: reg}
}

// Emit records dur for a request of category cat. pc may be nil when there
// is no project or search information.
func (e *Emitter) Emit(cat Category, dur time.Duration, pc *page.Config) {
	e.reg.GetOrRegisterCounter(RequestsMetric).Add(1)
	e.reg.GetOrRegisterTimer(GenericTimer).Record(dur)
	e.reg.GetOrRegisterTimer(string(cat)).Record(dur)

	if pc == nil {
		return
	}

	if p, ok := pc.Project(); ok {
		e.reg.GetOrRegisterTimer(ProjectTimerPrefix + p.Name).Record(dur)
	}

	if res, ok := pc.SearchResult(); ok {
		if res.Empty() {
			e.reg.GetOrRegisterTimer(EmptySearchTimer).Record(dur)
		} else {
			e.reg.GetOrRegisterTimer(SuccessfulSearchTimer).Record(dur)
		}
	}
}
