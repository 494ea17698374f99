package literature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/citemap/citemap/pkg/identifiers"
)

func TestAddIdentifierDeduplicatesByKey(t *testing.T) {
	rec := Record{Title: "Test"}

	assert.True(t, rec.AddIdentifier(Identifier{Type: identifiers.DOI, Value: "10.1234/abc"}))
	// Same DOI in a different surface form must not be added twice.
	assert.False(t, rec.AddIdentifier(Identifier{Type: identifiers.DOI, Value: "https://doi.org/10.1234/ABC"}))
	assert.True(t, rec.AddIdentifier(Identifier{Type: identifiers.PMID, Value: "123"}))

	assert.Len(t, rec.Identifiers, 2)
}

func TestIdentifierValue(t *testing.T) {
	rec := Record{
		Identifiers: []Identifier{
			{Type: identifiers.PMID, Value: "123"},
			{Type: identifiers.DOI, Value: "10.1/x"},
		},
	}

	assert.Equal(t, "10.1/x", rec.IdentifierValue(identifiers.DOI))
	assert.Equal(t, "", rec.IdentifierValue(identifiers.ArXiv))
}

func TestRenumberAuthors(t *testing.T) {
	rec := Record{
		Authors: []Author{
			{FullName: "C", Order: 7},
			{FullName: "A", Order: 2},
			{FullName: "B", Order: 2},
		},
	}

	rec.RenumberAuthors()

	assert.Equal(t, []int{1, 2, 3}, []int{rec.Authors[0].Order, rec.Authors[1].Order, rec.Authors[2].Order})
	// Stable sort keeps equal-order authors in their original relative order.
	assert.Equal(t, "A", rec.Authors[0].FullName)
	assert.Equal(t, "B", rec.Authors[1].FullName)
	assert.Equal(t, "C", rec.Authors[2].FullName)
}

func TestAddSourceOrderedUnique(t *testing.T) {
	rec := Record{}
	rec.AddSource("pubmed")
	rec.AddSource("arxiv")
	rec.AddSource("pubmed")

	assert.Equal(t, []string{"pubmed", "arxiv"}, rec.Provenance.ContributingSources)
	assert.Equal(t, "pubmed", rec.PrimarySource())
}

func TestVenueTypeIsValid(t *testing.T) {
	assert.True(t, VenueJournal.IsValid())
	assert.True(t, VenuePreprintServer.IsValid())
	assert.False(t, VenueType("blog").IsValid())
}
