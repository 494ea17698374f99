// Package dedup detects and collapses duplicate literature records in two
// phases: exact identifier grouping, then fuzzy title and author matching
// over the survivors. Both phases are deterministic given a fixed input
// order.
package dedup

import (
	"github.com/citemap/citemap/internal/similarity"
	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/logging"
	"github.com/citemap/citemap/pkg/merge"
)

// Fuzzy matching thresholds.
const (
	titleThreshold     = 0.85
	titleOnlyThreshold = 0.95
	authorThreshold    = 0.7
)

// Stats summarizes one deduplication pass.
type Stats struct {
	TotalRecords    int `json:"total_records" yaml:"total_records"`
	ExactMatches    int `json:"exact_matches" yaml:"exact_matches"`
	FuzzyMatches    int `json:"fuzzy_matches" yaml:"fuzzy_matches"`
	DuplicatesFound int `json:"duplicates_found" yaml:"duplicates_found"`
	UniqueRecords   int `json:"unique_records" yaml:"unique_records"`
}

// Deduplicator collapses duplicates within a batch of records.
type Deduplicator struct {
	merger *merge.Merger
}

// New creates a Deduplicator using the given merger for duplicate groups.
func New(merger *merge.Merger) *Deduplicator {
	if merger == nil {
		merger = merge.New()
	}
	return &Deduplicator{merger: merger}
}

// Deduplicate runs both phases over a batch and returns the unique records
// plus statistics. Input order determines group identity: the first record to
// register an identifier key owns it.
func (d *Deduplicator) Deduplicate(records []literature.Record) ([]literature.Record, Stats) {
	stats := Stats{TotalRecords: len(records)}
	if len(records) == 0 {
		return nil, stats
	}

	logging.Debug().Int("records", len(records)).Msg("starting deduplication")

	unique := d.exactPhase(records)
	stats.ExactMatches = stats.TotalRecords - len(unique)

	if len(unique) > 1 {
		before := len(unique)
		unique = d.fuzzyPhase(unique)
		stats.FuzzyMatches = before - len(unique)
	}

	stats.DuplicatesFound = stats.TotalRecords - len(unique)
	stats.UniqueRecords = len(unique)

	logging.Debug().
		Int("exact", stats.ExactMatches).
		Int("fuzzy", stats.FuzzyMatches).
		Int("unique", stats.UniqueRecords).
		Msg("deduplication completed")

	return unique, stats
}

// exactPhase groups records sharing a normalized identifier. Identifier types
// are checked in priority order and matching short-circuits: once a record
// matches a survivor on one type, lower-priority types are not consulted.
func (d *Deduplicator) exactPhase(records []literature.Record) []literature.Record {
	seen := make(map[string]int) // identifier key -> survivor index
	var survivors []literature.Record

	for i := range records {
		rec := records[i]

		survivorIdx, isDup := matchByIdentifier(rec, seen)
		if isDup {
			survivors[survivorIdx] = d.merger.Merge([]literature.Record{survivors[survivorIdx], rec})
			continue
		}

		idx := len(survivors)
		survivors = append(survivors, rec)
		// First registrant wins; keys already present are never overwritten.
		for _, key := range rec.IdentifierKeys() {
			if _, exists := seen[key]; !exists {
				seen[key] = idx
			}
		}
	}

	return survivors
}

func matchByIdentifier(rec literature.Record, seen map[string]int) (int, bool) {
	for _, t := range identifiers.Priority() {
		for _, id := range rec.Identifiers {
			if id.Type != t {
				continue
			}
			if idx, ok := seen[id.Key()]; ok {
				return idx, true
			}
		}
	}
	return 0, false
}

// fuzzyPhase compares each survivor against already-accepted entries. The
// first accepted match wins and the merged record replaces the existing
// entry in place.
func (d *Deduplicator) fuzzyPhase(records []literature.Record) []literature.Record {
	var unique []literature.Record

	for i := range records {
		rec := records[i]
		matched := false

		for j := range unique {
			if fuzzyMatch(&unique[j], &rec) {
				unique[j] = d.merger.Merge([]literature.Record{unique[j], rec})
				matched = true
				break
			}
		}

		if !matched {
			unique = append(unique, rec)
		}
	}

	return unique
}

// fuzzyMatch decides whether two records describe the same work based on
// normalized title similarity, backed by author-set similarity. When either
// side lacks author names the title alone must clear a stricter bar.
func fuzzyMatch(a, b *literature.Record) bool {
	titleA := similarity.NormalizeTitle(a.Title)
	titleB := similarity.NormalizeTitle(b.Title)
	if titleA == "" || titleB == "" {
		return false
	}

	titleSim := similarity.Ratio(titleA, titleB)
	if titleSim < titleThreshold {
		return false
	}

	authorsA := a.AuthorNames()
	authorsB := b.AuthorNames()
	if len(authorsA) == 0 || len(authorsB) == 0 {
		return titleSim > titleOnlyThreshold
	}

	return similarity.AuthorOverlap(authorsA, authorsB) >= authorThreshold
}
