package literature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citemap/citemap/pkg/identifiers"
)

func wellFormedRecord() Record {
	return Record{
		Title:           "Deep learning approaches for protein structure prediction",
		Abstract:        "We survey recent deep learning approaches to protein structure prediction and benchmark them on standard datasets.",
		PublicationYear: 2023,
		PublicationDate: "2023-01-15",
		CitationCount:   10,
		Authors: []Author{
			{FullName: "John Doe", Order: 1},
			{FullName: "Jane Smith", Order: 2},
		},
		Identifiers: []Identifier{
			{Type: identifiers.DOI, Value: "10.1000/test123", IsPrimary: true},
			{Type: identifiers.PMID, Value: "12345678"},
		},
		Venue:      Venue{Name: "Test Journal", Type: VenueJournal},
		Provenance: Provenance{ContributingSources: []string{"pubmed"}},
	}
}

func TestValidateWellFormedRecord(t *testing.T) {
	rec := wellFormedRecord()
	result := Validate(&rec)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Greater(t, result.QualityScore, 80.0)
}

func TestValidateMissingTitle(t *testing.T) {
	rec := wellFormedRecord()
	rec.Title = "   "

	result := Validate(&rec)

	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "title is required")
}

func TestValidatePublicationYearBounds(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		valid bool
	}{
		{"zero year skipped", 0, true},
		{"lower bound", 1900, true},
		{"next year allowed", time.Now().Year() + 1, true},
		{"too early", 1899, false},
		{"too late", time.Now().Year() + 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := wellFormedRecord()
			rec.PublicationYear = tt.year
			assert.Equal(t, tt.valid, Validate(&rec).Valid)
		})
	}
}

func TestValidateIdentifierFormats(t *testing.T) {
	tests := []struct {
		name  string
		id    Identifier
		valid bool
	}{
		{"good doi", Identifier{Type: identifiers.DOI, Value: "10.1234/abc"}, true},
		{"doi with prefix normalizes first", Identifier{Type: identifiers.DOI, Value: "https://doi.org/10.1234/abc"}, true},
		{"bad doi", Identifier{Type: identifiers.DOI, Value: "not-a-doi"}, false},
		{"bad pmid", Identifier{Type: identifiers.PMID, Value: "abc"}, false},
		{"good arxiv", Identifier{Type: identifiers.ArXiv, Value: "2301.00001v2"}, true},
		{"bad arxiv", Identifier{Type: identifiers.ArXiv, Value: "xyz"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := wellFormedRecord()
			rec.Identifiers = []Identifier{tt.id}
			assert.Equal(t, tt.valid, Validate(&rec).Valid)
		})
	}
}

func TestValidateNegativeCounts(t *testing.T) {
	rec := wellFormedRecord()
	rec.CitationCount = -1

	result := Validate(&rec)
	assert.False(t, result.Valid)
}

func TestValidateWarningsAreNonFatal(t *testing.T) {
	rec := wellFormedRecord()
	rec.Abstract = ""
	rec.Authors = nil
	rec.Venue = Venue{}

	result := Validate(&rec)

	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidateBadDateFormat(t *testing.T) {
	rec := wellFormedRecord()
	rec.PublicationDate = "Jan 15, 2023"

	result := Validate(&rec)
	assert.False(t, result.Valid)
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2023-01-15"))
	assert.True(t, ValidDate("2023-01"))
	assert.True(t, ValidDate("2023"))
	assert.False(t, ValidDate("15/01/2023"))
}

func TestValidateBatch(t *testing.T) {
	good := wellFormedRecord()
	bad := wellFormedRecord()
	bad.Title = ""

	results := ValidateBatch([]Record{good, bad})

	require.Len(t, results, 2)
	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
}

func TestQualityScoreReproducible(t *testing.T) {
	rec := wellFormedRecord()
	assert.Equal(t, QualityScore(&rec), QualityScore(&rec))
	assert.LessOrEqual(t, QualityScore(&rec), 100.0)
}

func TestQualityScorePartialCredit(t *testing.T) {
	full := wellFormedRecord()
	sparse := Record{Title: "Short"}

	assert.Greater(t, QualityScore(&full), QualityScore(&sparse))
	// A five character title earns five points, nothing else is present.
	assert.Equal(t, 5.0, QualityScore(&sparse))
}

func TestCompletenessScore(t *testing.T) {
	empty := Record{}
	assert.Equal(t, 0.0, CompletenessScore(&empty))

	rec := wellFormedRecord()
	score := CompletenessScore(&rec)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
	// 7 of 10 tracked fields present: title, abstract, date, authors,
	// identifiers, venue, citation count.
	assert.InDelta(t, 70.0, score, 0.01)
}
