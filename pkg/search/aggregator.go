// Package search implements the query orchestrator: it fans a query out to
// the selected source adapters on a bounded worker pool, fans normalized
// records back in, deduplicates them and reports per-source progress and
// errors. A failing source never aborts the overall call.
package search

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/citemap/citemap/pkg/dedup"
	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/logging"
	"github.com/citemap/citemap/pkg/merge"
	"github.com/citemap/citemap/pkg/sources"
)

// DefaultWorkers is the default worker pool size.
const DefaultWorkers = 4

// Aggregator orchestrates multi-source literature searches.
type Aggregator struct {
	registry *sources.Registry
	dedup    *dedup.Deduplicator
	workers  int
	timeout  time.Duration
	progress ProgressFunc
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithProgress installs a progress callback. It is invoked in a thread-safe
// manner at least twice per source: at dispatch and at its terminal state.
func WithProgress(fn ProgressFunc) AggregatorOption {
	return func(a *Aggregator) {
		a.progress = fn
	}
}

// WithOverallTimeout bounds the whole aggregation call. Sources still
// running at the deadline are recorded as failed.
func WithOverallTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		a.timeout = d
	}
}

// WithDeduplicator replaces the default deduplicator.
func WithDeduplicator(d *dedup.Deduplicator) AggregatorOption {
	return func(a *Aggregator) {
		a.dedup = d
	}
}

// NewAggregator creates an Aggregator over a source registry.
func NewAggregator(registry *sources.Registry, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		registry: registry,
		dedup:    dedup.New(merge.New()),
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// outcome carries one finished source task to the collector.
type outcome struct {
	id      sources.ID
	records []literature.Record
	meta    sources.Meta
	err     error
}

// Search fans the query out to the requested sources and returns the
// deduplicated result set. Request-level validation failures return an
// error; per-source failures are downgraded to Metadata.Errors.
func (a *Aggregator) Search(ctx context.Context, query string, sourceNames []string, opts ...sources.Option) (*Result, error) {
	if err := sources.ValidateQuery(query); err != nil {
		return nil, err
	}
	options := sources.NewOptions(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	searchID := uuid.NewString()
	ctx = logging.WithSearchID(ctx, searchID)
	log := logging.FromContext(ctx)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	result := &Result{
		Metadata: Metadata{
			SearchID: searchID,
			Query:    query,
		},
	}

	matched, unknown := a.registry.Filter(sourceNames)
	for _, name := range unknown {
		log.Warn().Str("source", name).Msg("ignoring unknown source")
		result.Metadata.Warnings = append(result.Metadata.Warnings, "unknown source: "+name)
	}

	if len(matched) == 0 {
		result.Metadata.Errors = append(result.Metadata.Errors, SourceError{
			Message: errors.ErrNoSources.Error(),
		})
		return result, nil
	}

	names := make([]string, len(matched))
	for i, id := range matched {
		names[i] = id.String()
	}
	result.Metadata.SourcesSearched = names

	log.Info().
		Strs("sources", names).
		Int("num_results", options.NumResults).
		Msg("starting search")

	start := time.Now()
	prog := newTracker(names, a.progress)
	outcomes := a.dispatch(ctx, matched, query, options, prog)

	var all []literature.Record
	result.Metadata.PerSource = make(map[string]sources.Meta, len(matched))

	// Fan-in: records are appended in completion order, so ordering across
	// sources is not deterministic between runs.
	for range matched {
		out := <-outcomes
		name := out.id.String()
		result.Metadata.PerSource[name] = out.meta

		if out.err != nil {
			log.Warn().Err(out.err).Str("source", name).Msg("source failed")
			result.Metadata.Errors = append(result.Metadata.Errors, SourceError{
				Source:  name,
				Message: out.err.Error(),
			})
			prog.setState(name, StateFailed)
			continue
		}

		all = append(all, out.records...)
		prog.addResults(name, len(out.records), StateCompleted)
	}

	unique, stats := a.dedup.Deduplicate(all)

	result.Records = unique
	result.Metadata.TotalResults = len(unique)
	result.Metadata.DuplicatesRemoved = stats.DuplicatesFound
	result.Metadata.Dedup = stats
	result.Metadata.SearchTime = time.Since(start)

	log.Info().
		Int("total_results", len(unique)).
		Int("duplicates_removed", stats.DuplicatesFound).
		Dur("search_time", result.Metadata.SearchTime).
		Msg("search completed")

	return result, nil
}

// dispatch starts the bounded worker pool and returns the fan-in channel.
// One outcome is delivered per matched source.
func (a *Aggregator) dispatch(ctx context.Context, matched []sources.ID, query string, options *sources.Options, prog *tracker) <-chan outcome {
	jobs := make(chan sources.ID)
	outcomes := make(chan outcome, len(matched))

	workers := min(a.workers, len(matched))
	for w := 0; w < workers; w++ {
		go func() {
			for id := range jobs {
				prog.setState(id.String(), StateSearching)

				src, ok := a.registry.Get(id)
				if !ok {
					// Unregistered between filter and dispatch.
					outcomes <- outcome{id: id, err: errors.NewSearchError(id.String(), query, errors.ErrNotFound)}
					continue
				}

				records, meta, err := sources.Execute(ctx, src, query, options)
				outcomes <- outcome{id: id, records: records, meta: meta, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range matched {
			jobs <- id
		}
	}()

	return outcomes
}
