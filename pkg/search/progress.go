package search

import (
	"sync"
	"time"
)

// State is the lifecycle state of one source within a search run.
type State string

// Per-source states.
const (
	StatePending   State = "pending"
	StateSearching State = "searching"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Progress is a point-in-time snapshot of a running search.
type Progress struct {
	TotalSources     int              `json:"total_sources" yaml:"total_sources"`
	CompletedSources int              `json:"completed_sources" yaml:"completed_sources"`
	FailedSources    int              `json:"failed_sources" yaml:"failed_sources"`
	ResultsCount     int              `json:"results_count" yaml:"results_count"`
	PerSourceState   map[string]State `json:"per_source_state" yaml:"per_source_state"`
	Elapsed          time.Duration    `json:"elapsed" yaml:"elapsed"`
}

// Done reports whether every source has reached a terminal state.
func (p Progress) Done() bool {
	return p.CompletedSources+p.FailedSources == p.TotalSources
}

// ProgressFunc receives progress snapshots. It may be called concurrently
// from worker goroutines; snapshots are independent copies.
type ProgressFunc func(Progress)

// tracker guards shared progress state behind one lock and pushes snapshots
// to the caller's callback.
type tracker struct {
	mu       sync.Mutex
	start    time.Time
	states   map[string]State
	results  int
	callback ProgressFunc
}

func newTracker(sourceNames []string, callback ProgressFunc) *tracker {
	states := make(map[string]State, len(sourceNames))
	for _, name := range sourceNames {
		states[name] = StatePending
	}
	return &tracker{
		start:    time.Now(),
		states:   states,
		callback: callback,
	}
}

func (t *tracker) setState(source string, state State) {
	t.mu.Lock()
	t.states[source] = state
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snapshot)
}

func (t *tracker) addResults(source string, count int, state State) {
	t.mu.Lock()
	t.states[source] = state
	t.results += count
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(snapshot)
}

func (t *tracker) snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *tracker) snapshotLocked() Progress {
	p := Progress{
		TotalSources:   len(t.states),
		ResultsCount:   t.results,
		PerSourceState: make(map[string]State, len(t.states)),
		Elapsed:        time.Since(t.start),
	}
	for name, state := range t.states {
		p.PerSourceState[name] = state
		switch state {
		case StateCompleted:
			p.CompletedSources++
		case StateFailed:
			p.FailedSources++
		}
	}
	return p
}

// notify runs the callback outside the lock so a slow consumer cannot stall
// source workers.
func (t *tracker) notify(p Progress) {
	if t.callback != nil {
		t.callback(p)
	}
}
