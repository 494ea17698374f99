package sources

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/literature"
)

// fakeSource scripts each step of the adapter contract.
type fakeSource struct {
	id          ID
	validateErr error
	fetchErr    error
	fetchHits   []RawHit
	fetchMeta   Meta
	normErr     error
	records     []literature.Record
}

func (f *fakeSource) ID() ID { return f.id }

func (f *fakeSource) ValidateParams(query string, opts *Options) error {
	return f.validateErr
}

func (f *fakeSource) FetchRaw(ctx context.Context, query string, opts *Options) ([]RawHit, Meta, error) {
	if f.fetchErr != nil {
		return nil, Meta{}, f.fetchErr
	}
	return f.fetchHits, f.fetchMeta, nil
}

func (f *fakeSource) Normalize(hits []RawHit) ([]literature.Record, error) {
	if f.normErr != nil {
		return nil, f.normErr
	}
	return f.records, nil
}

func TestExecuteHappyPath(t *testing.T) {
	src := &fakeSource{
		id:        PubMedID,
		fetchHits: []RawHit{"hit1", "hit2"},
		fetchMeta: Meta{TotalAvailable: 240},
		records: []literature.Record{
			{Title: "First"},
			{Title: "Second"},
		},
	}

	records, meta, err := Execute(context.Background(), src, "cancer", NewOptions())

	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, PubMedID, meta.Source)
	assert.Equal(t, 2, meta.HitCount)
	assert.Equal(t, 240, meta.TotalAvailable)
	assert.GreaterOrEqual(t, meta.Duration, time.Duration(0))
}

func TestExecuteDropsTitlelessRecords(t *testing.T) {
	src := &fakeSource{
		id:        ArXivID,
		fetchHits: []RawHit{"a", "b", "c"},
		records: []literature.Record{
			{Title: "Kept"},
			{Title: ""},
			{Title: "Also kept"},
		},
	}

	records, _, err := Execute(context.Background(), src, "q", nil)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Kept", records[0].Title)
	assert.Equal(t, "Also kept", records[1].Title)
}

func TestExecuteRejectsEmptyQuery(t *testing.T) {
	src := &fakeSource{id: PubMedID}

	_, _, err := Execute(context.Background(), src, "  ", nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestExecuteRejectsBadOptions(t *testing.T) {
	src := &fakeSource{id: PubMedID}

	_, _, err := Execute(context.Background(), src, "q", NewOptions(WithNumResults(0)))
	assert.True(t, errors.IsValidationError(err))
}

func TestExecutePropagatesNetworkError(t *testing.T) {
	src := &fakeSource{
		id:       BioRxivID,
		fetchErr: errors.NewNetworkError("biorxiv", "https://api.biorxiv.org", stderrors.New("dial timeout")),
	}

	_, _, err := Execute(context.Background(), src, "q", nil)

	var netErr *errors.NetworkError
	assert.True(t, stderrors.As(err, &netErr))
}

func TestExecutePropagatesFormatError(t *testing.T) {
	src := &fakeSource{
		id:        SemanticScholarID,
		fetchHits: []RawHit{"x"},
		normErr:   errors.NewFormatError("semantic_scholar", "json", "bad payload", nil),
	}

	_, _, err := Execute(context.Background(), src, "q", nil)

	var fmtErr *errors.FormatError
	assert.True(t, stderrors.As(err, &fmtErr))
}

func TestExecuteWrapsUnclassifiedErrors(t *testing.T) {
	src := &fakeSource{
		id:       WoSID,
		fetchErr: stderrors.New("something odd"),
	}

	_, _, err := Execute(context.Background(), src, "quantum", nil)

	var searchErr *errors.SearchError
	require.True(t, stderrors.As(err, &searchErr))
	assert.Equal(t, "wos", searchErr.Source)
	assert.Equal(t, "quantum", searchErr.Query)
}

func TestExecuteDeadlineBecomesNetworkError(t *testing.T) {
	src := &fakeSource{
		id:       PubMedID,
		fetchErr: context.DeadlineExceeded,
	}

	_, _, err := Execute(context.Background(), src, "q", nil)

	var netErr *errors.NetworkError
	assert.True(t, stderrors.As(err, &netErr))
}
