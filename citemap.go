// Package citemap aggregates bibliographic records from multiple literature
// search backends (PubMed, arXiv, bioRxiv, Semantic Scholar, Web of Science)
// into one deduplicated, field-reconciled result set.
package citemap

import (
	"context"
	"fmt"

	"github.com/citemap/citemap/internal/keypool"
	"github.com/citemap/citemap/internal/sources/arxiv"
	"github.com/citemap/citemap/internal/sources/biorxiv"
	"github.com/citemap/citemap/internal/sources/pubmed"
	"github.com/citemap/citemap/internal/sources/semanticscholar"
	"github.com/citemap/citemap/internal/sources/wos"
	"github.com/citemap/citemap/pkg/search"
	"github.com/citemap/citemap/pkg/sources"
)

// Citemap runs multi-source literature searches over a registry of source
// adapters.
type Citemap interface {
	// Search fans the query out to the named sources and returns the
	// deduplicated result set. An empty sourceNames selects every
	// registered source.
	Search(ctx context.Context, query string, sourceNames []string, opts ...sources.Option) (*search.Result, error)

	// Sources returns the registered source IDs in registration order
	Sources() []sources.ID

	// Register adds or replaces a source adapter
	Register(src sources.Source)

	// Deregister removes a source adapter
	Deregister(id sources.ID)
}

// citemap is the internal implementation of the Citemap interface
type citemap struct {
	registry   *sources.Registry
	aggregator *search.Aggregator
	config     *configState
}

// New creates a new Citemap instance with the given options. Unless disabled,
// the built-in source adapters are registered, with credentials drawn from
// the environment or the options.
func New(opts ...Option) (Citemap, error) {
	c := &citemap{config: newConfig()}

	if err := c.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	c.registry = c.config.registry
	if c.registry == nil {
		c.registry = sources.NewRegistry()
	}

	if !c.config.noDefaultSources {
		c.registerDefaults()
	}
	for _, src := range c.config.extraSources {
		c.registry.Set(src)
	}

	aggOpts := []search.AggregatorOption{
		search.WithWorkers(c.config.workers),
	}
	if c.config.timeout > 0 {
		aggOpts = append(aggOpts, search.WithOverallTimeout(c.config.timeout))
	}
	if c.config.progress != nil {
		aggOpts = append(aggOpts, search.WithProgress(c.config.progress))
	}
	if c.config.dedup != nil {
		aggOpts = append(aggOpts, search.WithDeduplicator(c.config.dedup))
	}
	c.aggregator = search.NewAggregator(c.registry, aggOpts...)

	return c, nil
}

// registerDefaults wires the built-in adapters. Web of Science is registered
// only when keys are configured, since every call requires one.
func (c *citemap) registerDefaults() {
	var pubmedOpts []pubmed.Option
	if c.config.pubmedAPIKey != "" {
		pubmedOpts = append(pubmedOpts, pubmed.WithAPIKey(c.config.pubmedAPIKey))
	}
	c.registry.Set(pubmed.New(pubmedOpts...))

	c.registry.Set(arxiv.New())
	c.registry.Set(biorxiv.New())

	var s2Opts []semanticscholar.Option
	if c.config.semanticScholarAPIKey != "" {
		s2Opts = append(s2Opts, semanticscholar.WithAPIKey(c.config.semanticScholarAPIKey))
	}
	c.registry.Set(semanticscholar.New(s2Opts...))

	if len(c.config.wosAPIKeys) > 0 {
		pool := keypool.New("wos", c.config.wosAPIKeys)
		c.registry.Set(wos.New(pool))
	}
}

// Search fans the query out to the named sources and returns the
// deduplicated result set.
func (c *citemap) Search(ctx context.Context, query string, sourceNames []string, opts ...sources.Option) (*search.Result, error) {
	if c.config.numResults > 0 {
		opts = append([]sources.Option{sources.WithNumResults(c.config.numResults)}, opts...)
	}
	return c.aggregator.Search(ctx, query, sourceNames, opts...)
}

// Sources returns the registered source IDs in registration order.
func (c *citemap) Sources() []sources.ID {
	return c.registry.IDs()
}

// Register adds or replaces a source adapter.
func (c *citemap) Register(src sources.Source) {
	c.registry.Set(src)
}

// Deregister removes a source adapter.
func (c *citemap) Deregister(id sources.ID) {
	c.registry.Delete(id)
}
