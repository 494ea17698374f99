package citemap

import (
	"time"

	"github.com/citemap/citemap/internal/config"
	"github.com/citemap/citemap/pkg/dedup"
	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/search"
	"github.com/citemap/citemap/pkg/sources"
)

// configState holds the resolved client configuration.
type configState struct {
	workers               int
	timeout               time.Duration
	numResults            int
	progress              search.ProgressFunc
	registry              *sources.Registry
	extraSources          []sources.Source
	noDefaultSources      bool
	dedup                 *dedup.Deduplicator
	pubmedAPIKey          string
	semanticScholarAPIKey string
	wosAPIKeys            []string
}

// newConfig seeds the configuration from the environment.
func newConfig() *configState {
	loaded := config.Load()
	return &configState{
		workers:               loaded.Workers,
		timeout:               loaded.Timeout,
		numResults:            loaded.NumResults,
		pubmedAPIKey:          loaded.PubMedAPIKey,
		semanticScholarAPIKey: loaded.SemanticScholarAPIKey,
		wosAPIKeys:            loaded.WoSAPIKeys,
	}
}

// Option is a function that configures a Citemap instance
type Option func(*configState) error

// options applies the given options to the instance configuration.
func (c *citemap) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c.config); err != nil {
			return err
		}
	}
	return nil
}

// WithWorkers configures the orchestrator worker pool size
func WithWorkers(n int) Option {
	return func(c *configState) error {
		if n <= 0 {
			return errors.NewValidationError("workers", n, "must be positive")
		}
		c.workers = n
		return nil
	}
}

// WithTimeout bounds an entire search call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *configState) error {
		if d < 0 {
			return errors.NewValidationError("timeout", d, "cannot be negative")
		}
		c.timeout = d
		return nil
	}
}

// WithNumResults sets the default per-source result cap, overridable per
// search call.
func WithNumResults(n int) Option {
	return func(c *configState) error {
		if n < sources.MinResults || n > sources.MaxResults {
			return errors.NewValidationError("num_results", n, "out of range")
		}
		c.numResults = n
		return nil
	}
}

// WithProgress installs a progress callback invoked as sources advance.
func WithProgress(fn search.ProgressFunc) Option {
	return func(c *configState) error {
		c.progress = fn
		return nil
	}
}

// WithRegistry replaces the source registry. Default adapters are still
// registered into it unless WithoutDefaultSources is also given.
func WithRegistry(registry *sources.Registry) Option {
	return func(c *configState) error {
		c.registry = registry
		return nil
	}
}

// WithSource registers an additional source adapter.
func WithSource(src sources.Source) Option {
	return func(c *configState) error {
		c.extraSources = append(c.extraSources, src)
		return nil
	}
}

// WithoutDefaultSources skips registration of the built-in adapters.
func WithoutDefaultSources() Option {
	return func(c *configState) error {
		c.noDefaultSources = true
		return nil
	}
}

// WithDeduplicator replaces the default deduplicator.
func WithDeduplicator(d *dedup.Deduplicator) Option {
	return func(c *configState) error {
		c.dedup = d
		return nil
	}
}

// WithPubMedAPIKey sets the NCBI API key.
func WithPubMedAPIKey(key string) Option {
	return func(c *configState) error {
		c.pubmedAPIKey = key
		return nil
	}
}

// WithSemanticScholarAPIKey sets the Semantic Scholar Graph API key.
func WithSemanticScholarAPIKey(key string) Option {
	return func(c *configState) error {
		c.semanticScholarAPIKey = key
		return nil
	}
}

// WithWoSAPIKeys sets the rotating Web of Science key set.
func WithWoSAPIKeys(keys []string) Option {
	return func(c *configState) error {
		c.wosAPIKeys = keys
		return nil
	}
}
