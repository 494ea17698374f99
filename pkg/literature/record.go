// Package literature defines the canonical bibliographic record produced by
// source normalization and consumed by deduplication and merging, along with
// structural validation and advisory quality scoring.
package literature

import (
	"sort"
	"time"

	"github.com/citemap/citemap/pkg/identifiers"
)

// Record is the canonical unit of aggregation. One Record is created per raw
// hit returned by a source adapter; duplicate Records are folded into a single
// survivor during reconciliation.
type Record struct {
	Title                    string `json:"title" yaml:"title"`
	Abstract                 string `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	PrimaryDOI               string `json:"primary_doi,omitempty" yaml:"primary_doi,omitempty"`
	Language                 string `json:"language,omitempty" yaml:"language,omitempty"`
	PublicationYear          int    `json:"publication_year,omitempty" yaml:"publication_year,omitempty"`
	PublicationDate          string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	UpdatedDate              string `json:"updated_date,omitempty" yaml:"updated_date,omitempty"`
	CitationCount            int    `json:"citation_count" yaml:"citation_count"`
	ReferenceCount           int    `json:"reference_count" yaml:"reference_count"`
	InfluentialCitationCount int    `json:"influential_citation_count" yaml:"influential_citation_count"`
	IsOpenAccess             bool   `json:"is_open_access" yaml:"is_open_access"`
	OpenAccessURL            string `json:"open_access_url,omitempty" yaml:"open_access_url,omitempty"`

	Authors          []Author          `json:"authors,omitempty" yaml:"authors,omitempty"`
	Venue            Venue             `json:"venue,omitempty" yaml:"venue,omitempty"`
	Publication      Publication       `json:"publication,omitempty" yaml:"publication,omitempty"`
	Identifiers      []Identifier      `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`
	Categories       []Category        `json:"categories,omitempty" yaml:"categories,omitempty"`
	PublicationTypes []PublicationType `json:"publication_types,omitempty" yaml:"publication_types,omitempty"`

	Provenance Provenance `json:"provenance" yaml:"provenance"`
}

// Author is one entry in a record's ordered author sequence. Order values are
// unique within a record and 1-based.
type Author struct {
	FullName        string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	LastName        string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	ForeName        string `json:"fore_name,omitempty" yaml:"fore_name,omitempty"`
	ORCID           string `json:"orcid,omitempty" yaml:"orcid,omitempty"`
	Affiliation     string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	IsCorresponding bool   `json:"is_corresponding,omitempty" yaml:"is_corresponding,omitempty"`
	Order           int    `json:"order" yaml:"order"`
}

// Venue describes where a work was published.
type Venue struct {
	Name            string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type            VenueType `json:"type,omitempty" yaml:"type,omitempty"`
	ISOAbbreviation string    `json:"iso_abbreviation,omitempty" yaml:"iso_abbreviation,omitempty"`
	ISSNPrint       string    `json:"issn_print,omitempty" yaml:"issn_print,omitempty"`
	ISSNElectronic  string    `json:"issn_electronic,omitempty" yaml:"issn_electronic,omitempty"`
	Publisher       string    `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	Country         string    `json:"country,omitempty" yaml:"country,omitempty"`
}

// Publication carries volume/issue/pagination details.
type Publication struct {
	Volume        string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue         string `json:"issue,omitempty" yaml:"issue,omitempty"`
	StartPage     string `json:"start_page,omitempty" yaml:"start_page,omitempty"`
	EndPage       string `json:"end_page,omitempty" yaml:"end_page,omitempty"`
	PageRange     string `json:"page_range,omitempty" yaml:"page_range,omitempty"`
	ArticleNumber string `json:"article_number,omitempty" yaml:"article_number,omitempty"`
}

// Identifier is one external identifier attached to a record. Records keep at
// most one identifier per (type, normalized value) pair.
type Identifier struct {
	Type      identifiers.Type `json:"type" yaml:"type"`
	Value     string           `json:"value" yaml:"value"`
	IsPrimary bool             `json:"is_primary,omitempty" yaml:"is_primary,omitempty"`
}

// Key returns the canonical equality key for the identifier.
func (i Identifier) Key() string {
	return identifiers.Key(i.Type, i.Value)
}

// Category is a subject classification assigned by a source.
type Category struct {
	Name            string  `json:"name" yaml:"name"`
	Type            string  `json:"type,omitempty" yaml:"type,omitempty"`
	IsMajorTopic    bool    `json:"is_major_topic,omitempty" yaml:"is_major_topic,omitempty"`
	ConfidenceScore float64 `json:"confidence_score,omitempty" yaml:"confidence_score,omitempty"`
}

// PublicationType is a source-assigned document type label.
type PublicationType struct {
	Name       string `json:"name" yaml:"name"`
	SourceType string `json:"source_type,omitempty" yaml:"source_type,omitempty"`
}

// Provenance records which sources contributed to a record and how many
// records were folded into it. Once merged, provenance only grows.
type Provenance struct {
	ContributingSources []string          `json:"contributing_sources" yaml:"contributing_sources"`
	MergeCount          int               `json:"merge_count" yaml:"merge_count"`
	RawPayloadBySource  map[string]string `json:"-" yaml:"-"`
	MergeTimestamp      time.Time         `json:"merge_timestamp,omitempty" yaml:"merge_timestamp,omitempty"`
}

// VenueType classifies a publication venue.
type VenueType string

// Known venue types.
const (
	VenueJournal        VenueType = "journal"
	VenueConference     VenueType = "conference"
	VenuePreprintServer VenueType = "preprint_server"
	VenueBook           VenueType = "book"
	VenueOther          VenueType = "other"
)

// IsValid returns true if the venue type is a known value.
func (v VenueType) IsValid() bool {
	switch v {
	case VenueJournal, VenueConference, VenuePreprintServer, VenueBook, VenueOther:
		return true
	}
	return false
}

// PrimarySource returns the first contributing source, or empty when
// provenance has not been established.
func (r *Record) PrimarySource() string {
	if len(r.Provenance.ContributingSources) == 0 {
		return ""
	}
	return r.Provenance.ContributingSources[0]
}

// IdentifierValue returns the raw value of the first identifier of the given
// type, or empty when the record carries none.
func (r *Record) IdentifierValue(t identifiers.Type) string {
	for _, id := range r.Identifiers {
		if id.Type == t {
			return id.Value
		}
	}
	return ""
}

// IdentifierKeys returns the canonical keys of all identifiers on the record.
func (r *Record) IdentifierKeys() []string {
	keys := make([]string, 0, len(r.Identifiers))
	for _, id := range r.Identifiers {
		keys = append(keys, id.Key())
	}
	return keys
}

// AddIdentifier appends an identifier unless an equal key is already present.
// Returns true if the identifier was added.
func (r *Record) AddIdentifier(id Identifier) bool {
	key := id.Key()
	for _, existing := range r.Identifiers {
		if existing.Key() == key {
			return false
		}
	}
	r.Identifiers = append(r.Identifiers, id)
	return true
}

// AuthorNames returns the non-empty full names of the record's authors in
// author order.
func (r *Record) AuthorNames() []string {
	names := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		if a.FullName != "" {
			names = append(names, a.FullName)
		}
	}
	return names
}

// RenumberAuthors restores the author-order invariant: order values unique
// and contiguous from 1, preserving the current relative order.
func (r *Record) RenumberAuthors() {
	sort.SliceStable(r.Authors, func(i, j int) bool {
		return r.Authors[i].Order < r.Authors[j].Order
	})
	for i := range r.Authors {
		r.Authors[i].Order = i + 1
	}
}

// AddSource appends a source to the provenance list unless already present.
func (r *Record) AddSource(source string) {
	for _, s := range r.Provenance.ContributingSources {
		if s == source {
			return
		}
	}
	r.Provenance.ContributingSources = append(r.Provenance.ContributingSources, source)
}
