// Package sources defines the contract between the search orchestrator and
// the per-backend literature adapters, along with a thread-safe registry of
// available adapters.
//
// An adapter exposes parameter validation, a raw fetch and a normalization
// step; Execute runs the three in order and classifies failures. The
// orchestrator depends only on this contract, never on a concrete backend.
package sources

import (
	"context"
	"slices"
	"sync"

	"github.com/citemap/citemap/pkg/literature"
)

// ID represents the identifier of a literature source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Known source names.
const (
	PubMedID          ID = "pubmed"
	ArXivID           ID = "arxiv"
	BioRxivID         ID = "biorxiv"
	SemanticScholarID ID = "semantic_scholar"
	WoSID             ID = "wos"
)

// IDs returns all defined source IDs.
func IDs() []ID {
	return []ID{
		PubMedID,
		ArXivID,
		BioRxivID,
		SemanticScholarID,
		WoSID,
	}
}

// IsValid returns true if the ID is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// RawHit is one undecoded result item as returned by a backend. Its concrete
// type is private to the adapter that produced it; hits only round-trip from
// FetchRaw into the same adapter's Normalize.
type RawHit any

// Source is a backend-specific literature search adapter.
type Source interface {
	// ID returns the source identifier
	ID() ID

	// ValidateParams checks the query and options before any network call
	ValidateParams(query string, opts *Options) error

	// FetchRaw retrieves raw hits for a query
	FetchRaw(ctx context.Context, query string, opts *Options) ([]RawHit, Meta, error)

	// Normalize converts raw hits into canonical records
	Normalize(hits []RawHit) ([]literature.Record, error)
}

// Registry is a thread-safe container for managing search sources.
type Registry struct {
	mu      sync.RWMutex
	sources map[ID]Source
	order   []ID
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[ID]Source),
	}
}

// Get returns a source by ID.
func (r *Registry) Get(id ID) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, found := r.sources[id]
	return src, found
}

// Set registers a source under its ID, replacing any previous registration.
func (r *Registry) Set(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := src.ID()
	if _, exists := r.sources[id]; !exists {
		r.order = append(r.order, id)
	}
	r.sources[id] = src
}

// Delete removes a source by ID.
func (r *Registry) Delete(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sources[id]; !exists {
		return
	}
	delete(r.sources, id)
	r.order = slices.DeleteFunc(r.order, func(o ID) bool { return o == id })
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// IDs returns registered source IDs in registration order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// List returns all registered sources in registration order.
func (r *Registry) List() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sources[id])
	}
	return out
}

// Filter resolves requested source names against the registry. It returns
// the matching IDs in request order and the names that are not registered.
// An empty request selects every registered source.
func (r *Registry) Filter(requested []string) (matched []ID, unknown []string) {
	if len(requested) == 0 {
		return r.IDs(), nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range requested {
		id := ID(name)
		if _, ok := r.sources[id]; ok {
			matched = append(matched, id)
		} else {
			unknown = append(unknown, name)
		}
	}
	return matched, unknown
}
