package dedup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citemap/citemap/internal/similarity"
	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/merge"
)

func newDedup() *Deduplicator {
	return New(merge.New())
}

func recordWithDOI(source, title, doi string) literature.Record {
	return literature.Record{
		Title: title,
		Identifiers: []literature.Identifier{
			{Type: identifiers.DOI, Value: doi},
		},
		Provenance: literature.Provenance{ContributingSources: []string{source}},
	}
}

func withAuthors(rec literature.Record, names ...string) literature.Record {
	for i, name := range names {
		rec.Authors = append(rec.Authors, literature.Author{FullName: name, Order: i + 1})
	}
	return rec
}

func TestDeduplicateEmpty(t *testing.T) {
	unique, stats := newDedup().Deduplicate(nil)
	assert.Nil(t, unique)
	assert.Equal(t, 0, stats.TotalRecords)
}

func TestExactMatchSharedDOI(t *testing.T) {
	a := recordWithDOI("pubmed", "Study A", "10.1/abc")
	b := recordWithDOI("semantic_scholar", "Study A (revised)", "https://doi.org/10.1/ABC")

	unique, stats := newDedup().Deduplicate([]literature.Record{a, b})

	require.Len(t, unique, 1)
	assert.Equal(t, 1, stats.ExactMatches)
	assert.Equal(t, 1, stats.DuplicatesFound)
	assert.Equal(t, []string{"pubmed", "semantic_scholar"}, unique[0].Provenance.ContributingSources)
}

// Phase-1 soundness: records sharing a normalized identifier group together
// regardless of input order.
func TestExactMatchOrderIndependentGrouping(t *testing.T) {
	a := recordWithDOI("pubmed", "Study A", "10.1/abc")
	b := recordWithDOI("arxiv", "Study A preprint", "doi:10.1/abc")
	c := recordWithDOI("biorxiv", "Unrelated work", "10.9/zzz")

	for _, order := range [][]literature.Record{{a, b, c}, {c, b, a}, {b, c, a}} {
		unique, _ := newDedup().Deduplicate(order)
		require.Len(t, unique, 2)
	}
}

// Priority short-circuit: the DOI match wins before the PMID is consulted,
// even though the incoming record also shares a PMID with another survivor.
func TestExactMatchPriorityShortCircuit(t *testing.T) {
	b := recordWithDOI("pubmed", "Record B", "10.1/shared")

	c := literature.Record{
		Title: "Record C",
		Identifiers: []literature.Identifier{
			{Type: identifiers.PMID, Value: "777"},
		},
		Provenance: literature.Provenance{ContributingSources: []string{"wos"}},
	}

	a := literature.Record{
		Title: "Record A",
		Identifiers: []literature.Identifier{
			{Type: identifiers.PMID, Value: "777"},
			{Type: identifiers.DOI, Value: "10.1/shared"},
		},
		Provenance: literature.Provenance{ContributingSources: []string{"semantic_scholar"}},
	}

	unique, _ := newDedup().Deduplicate([]literature.Record{b, c, a})

	require.Len(t, unique, 2)
	// A folded into B via the DOI; C stays untouched.
	assert.Equal(t, []string{"pubmed", "semantic_scholar"}, unique[0].Provenance.ContributingSources)
	assert.Equal(t, []string{"wos"}, unique[1].Provenance.ContributingSources)
}

func TestFirstRegistrantOwnsIdentifierKeys(t *testing.T) {
	// Both b and c share an identifier with a but not with each other. Both
	// must fold into a's group.
	a := literature.Record{
		Title: "Record A",
		Identifiers: []literature.Identifier{
			{Type: identifiers.DOI, Value: "10.1/a"},
			{Type: identifiers.PMID, Value: "111"},
		},
		Provenance: literature.Provenance{ContributingSources: []string{"pubmed"}},
	}
	b := recordWithDOI("arxiv", "Record B", "10.1/a")
	c := literature.Record{
		Title: "Record C",
		Identifiers: []literature.Identifier{
			{Type: identifiers.PMID, Value: "111"},
		},
		Provenance: literature.Provenance{ContributingSources: []string{"wos"}},
	}

	unique, stats := newDedup().Deduplicate([]literature.Record{a, b, c})

	require.Len(t, unique, 1)
	assert.Equal(t, 2, stats.ExactMatches)
	assert.ElementsMatch(t, []string{"pubmed", "arxiv", "wos"}, unique[0].Provenance.ContributingSources)
}

// Title similarity exactly 0.84 stays below the threshold no matter how well
// the authors overlap.
func TestFuzzyBoundaryBelowTitleThreshold(t *testing.T) {
	// 21 shared characters of 25 on each side: ratio 2*21/50 = 0.84.
	prefix := "defghijklmnopqrstuvw0"
	titleA := prefix + "1111"
	titleB := prefix + "2222"
	require.InDelta(t, 0.84, similarity.Ratio(titleA, titleB), 0.0001)

	a := withAuthors(literature.Record{Title: titleA}, "John Doe", "Jane Smith")
	b := withAuthors(literature.Record{Title: titleB}, "John Doe", "Jane Smith")

	unique, stats := newDedup().Deduplicate([]literature.Record{a, b})

	require.Len(t, unique, 2)
	assert.Equal(t, 0, stats.FuzzyMatches)
}

// Title similarity 0.86 with author similarity just above 0.7 merges.
func TestFuzzyBoundaryAboveBothThresholds(t *testing.T) {
	// 43 shared characters of 50 on each side: ratio 2*43/100 = 0.86.
	prefix := strings.Repeat("defgh", 8) + "klm"
	titleA := prefix + "1111111"
	titleB := prefix + "2222222"
	require.InDelta(t, 0.86, similarity.Ratio(titleA, titleB), 0.0001)

	shared := []string{"Ann Ax", "Ben By", "Cal Cz", "Dee Dw", "Eve Ev"}
	a := withAuthors(literature.Record{Title: titleA}, append(shared, "Fay Fu", "Gil Go")...)
	b := withAuthors(literature.Record{Title: titleB}, append(shared, "Hal Hy", "Ivy Iz")...)

	// Five exact of seven authors: 5/7 = 0.714.
	require.InDelta(t, 0.714, similarity.AuthorOverlap(a.AuthorNames(), b.AuthorNames()), 0.001)

	unique, stats := newDedup().Deduplicate([]literature.Record{a, b})

	require.Len(t, unique, 1)
	assert.Equal(t, 1, stats.FuzzyMatches)
}

// Distinct works with near-identical titles but disjoint authors stay apart.
func TestFuzzyDistinctWorks(t *testing.T) {
	a := withAuthors(literature.Record{Title: "Deep Learning for X"}, "John Doe")
	b := withAuthors(literature.Record{Title: "Deep Learning for Y"}, "Someone Unrelated")

	unique, _ := newDedup().Deduplicate([]literature.Record{a, b})
	require.Len(t, unique, 2)
}

// Without authors on either side the title alone must clear 0.95.
func TestFuzzyTitleOnlyRule(t *testing.T) {
	a := literature.Record{Title: "Deep Learning for X"}
	b := literature.Record{Title: "Deep Learning for Y"}

	// Normalized similarity is about 0.93, short of the 0.95 title-only bar.
	unique, _ := newDedup().Deduplicate([]literature.Record{a, b})
	require.Len(t, unique, 2)

	c := literature.Record{Title: "Transformers for protein structure prediction"}
	d := literature.Record{Title: "Transformers for protein structure predictions"}

	unique, stats := newDedup().Deduplicate([]literature.Record{c, d})
	require.Len(t, unique, 1)
	assert.Equal(t, 1, stats.FuzzyMatches)
}

func TestFuzzyFirstMatchWins(t *testing.T) {
	shared := "transformers protein structure prediction benchmark"
	a := withAuthors(literature.Record{Title: shared}, "John Doe")
	b := withAuthors(literature.Record{Title: shared + "s"}, "John Doe")
	c := withAuthors(literature.Record{Title: shared + "z"}, "John Doe")

	unique, stats := newDedup().Deduplicate([]literature.Record{a, b, c})

	// b and c both fold into a, the first accepted entry.
	require.Len(t, unique, 1)
	assert.Equal(t, 2, stats.FuzzyMatches)
}

func TestStatsAddUp(t *testing.T) {
	a := recordWithDOI("pubmed", "Study A", "10.1/abc")
	b := recordWithDOI("arxiv", "Study A", "10.1/abc")
	c := withAuthors(literature.Record{Title: "An entirely different title"}, "X Y")

	unique, stats := newDedup().Deduplicate([]literature.Record{a, b, c})

	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 1, stats.ExactMatches)
	assert.Equal(t, stats.TotalRecords-len(unique), stats.DuplicatesFound)
	assert.Equal(t, len(unique), stats.UniqueRecords)
}
