package citemap

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/search"
	"github.com/citemap/citemap/pkg/sources"
)

// memSource is a canned in-memory source adapter.
type memSource struct {
	id      sources.ID
	records []literature.Record
}

func (m *memSource) ID() sources.ID { return m.id }

func (m *memSource) ValidateParams(query string, opts *sources.Options) error { return nil }

func (m *memSource) FetchRaw(ctx context.Context, query string, opts *sources.Options) ([]sources.RawHit, sources.Meta, error) {
	hits := make([]sources.RawHit, len(m.records))
	for i := range m.records {
		hits[i] = m.records[i]
	}
	return hits, sources.Meta{Source: m.id, TotalAvailable: len(hits)}, nil
}

func (m *memSource) Normalize(hits []sources.RawHit) ([]literature.Record, error) {
	records := make([]literature.Record, 0, len(hits))
	for _, hit := range hits {
		records = append(records, hit.(literature.Record))
	}
	return records, nil
}

func record(source, title, doi string) literature.Record {
	rec := literature.Record{
		Title: title,
		Provenance: literature.Provenance{
			ContributingSources: []string{source},
		},
	}
	if doi != "" {
		rec.Identifiers = []literature.Identifier{
			{Type: identifiers.DOI, Value: doi, IsPrimary: true},
		}
	}
	return rec
}

func TestNewRegistersDefaultSources(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	ids := c.Sources()
	assert.Contains(t, ids, sources.PubMedID)
	assert.Contains(t, ids, sources.ArXivID)
	assert.Contains(t, ids, sources.BioRxivID)
	assert.Contains(t, ids, sources.SemanticScholarID)
	// WoS needs configured keys.
	assert.NotContains(t, ids, sources.WoSID)
}

func TestNewWithWoSKeys(t *testing.T) {
	c, err := New(WithWoSAPIKeys([]string{"k1", "k2"}))
	require.NoError(t, err)
	assert.Contains(t, c.Sources(), sources.WoSID)
}

func TestSearchAggregatesAndDeduplicates(t *testing.T) {
	shared := "10.1000/shared.1"
	c, err := New(
		WithoutDefaultSources(),
		WithSource(&memSource{id: sources.PubMedID, records: []literature.Record{
			record("pubmed", "A shared result across two backends", shared),
			record("pubmed", "A result only one backend knows", "10.1000/only.1"),
		}}),
		WithSource(&memSource{id: sources.ArXivID, records: []literature.Record{
			record("arxiv", "A shared result across two backends", shared),
		}}),
	)
	require.NoError(t, err)

	result, err := c.Search(context.Background(), "shared result", nil)
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.Metadata.DuplicatesRemoved)
	assert.ElementsMatch(t, []string{"pubmed", "arxiv"}, result.Metadata.SourcesSearched)
	assert.Empty(t, result.Metadata.Errors)
}

func TestSearchSelectsNamedSources(t *testing.T) {
	c, err := New(
		WithoutDefaultSources(),
		WithSource(&memSource{id: sources.PubMedID, records: []literature.Record{
			record("pubmed", "A pubmed only record", "10.1/p"),
		}}),
		WithSource(&memSource{id: sources.ArXivID, records: []literature.Record{
			record("arxiv", "An arxiv only record", "10.1/a"),
		}}),
	)
	require.NoError(t, err)

	result, err := c.Search(context.Background(), "anything", []string{"arxiv"})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "An arxiv only record", result.Records[0].Title)
	assert.Equal(t, []string{"arxiv"}, result.Metadata.SourcesSearched)
}

func TestSearchEmptyQuery(t *testing.T) {
	c, err := New(WithoutDefaultSources())
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "   ", nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestRegisterAndDeregister(t *testing.T) {
	c, err := New(WithoutDefaultSources())
	require.NoError(t, err)
	assert.Empty(t, c.Sources())

	c.Register(&memSource{id: sources.BioRxivID})
	assert.Equal(t, []sources.ID{sources.BioRxivID}, c.Sources())

	c.Deregister(sources.BioRxivID)
	assert.Empty(t, c.Sources())
}

func TestOptionValidation(t *testing.T) {
	_, err := New(WithWorkers(0))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(WithTimeout(-1))
	assert.True(t, errors.IsValidationError(err))

	_, err = New(WithNumResults(0))
	assert.True(t, errors.IsValidationError(err))
}

func TestProgressCallbackRuns(t *testing.T) {
	var mu sync.Mutex
	var snapshots []search.Progress
	c, err := New(
		WithoutDefaultSources(),
		WithSource(&memSource{id: sources.PubMedID, records: []literature.Record{
			record("pubmed", "A record to count progress for", "10.1/x"),
		}}),
		WithProgress(func(p search.Progress) {
			mu.Lock()
			defer mu.Unlock()
			snapshots = append(snapshots, p)
		}),
	)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "progress", nil)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, snapshots)
	final := snapshots[len(snapshots)-1]
	assert.True(t, final.Done())
	assert.Equal(t, 1, final.CompletedSources)
}
