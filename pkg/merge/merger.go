// Package merge collapses a group of duplicate literature records into a
// single survivor. A base record is chosen by a completeness score, then each
// field is reconciled across the whole group by a per-field strategy.
package merge

import (
	"strings"
	"time"

	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/logging"
)

// Source priority used when selecting the base record of a duplicate group.
// Unknown sources score zero.
var sourcePriority = map[string]int{
	"pubmed":           10,
	"semantic_scholar": 8,
	"wos":              7,
	"arxiv":            6,
	"biorxiv":          5,
}

// SourcePriority returns the merge priority of a source name.
func SourcePriority(source string) int {
	return sourcePriority[source]
}

// Merger reconciles duplicate groups into canonical records.
type Merger struct {
	now func() time.Time
}

// New creates a Merger.
func New() *Merger {
	return &Merger{now: time.Now}
}

// NewWithClock creates a Merger with an injected clock.
func NewWithClock(now func() time.Time) *Merger {
	return &Merger{now: now}
}

// Merge collapses a duplicate group into one survivor record. A group of one
// is returned unchanged.
func (m *Merger) Merge(group []literature.Record) literature.Record {
	if len(group) == 0 {
		return literature.Record{}
	}
	if len(group) == 1 {
		return group[0]
	}

	logging.Debug().Int("group_size", len(group)).Msg("merging duplicate group")

	merged := group[m.selectPrimary(group)]

	merged.Title = longestString(group, func(r *literature.Record) string { return r.Title })
	merged.Abstract = longestString(group, func(r *literature.Record) string { return r.Abstract })
	merged.PublicationDate = earliestDate(group)
	merged.PublicationYear = earliestYear(group)
	merged.CitationCount = maxInt(group, func(r *literature.Record) int { return r.CitationCount })
	merged.ReferenceCount = maxInt(group, func(r *literature.Record) int { return r.ReferenceCount })
	merged.IsOpenAccess = anyTrue(group, func(r *literature.Record) bool { return r.IsOpenAccess })

	merged.PrimaryDOI = firstString(group, func(r *literature.Record) string { return r.PrimaryDOI })
	merged.Language = firstString(group, func(r *literature.Record) string { return r.Language })
	merged.UpdatedDate = firstString(group, func(r *literature.Record) string { return r.UpdatedDate })
	merged.OpenAccessURL = firstString(group, func(r *literature.Record) string { return r.OpenAccessURL })
	merged.InfluentialCitationCount = firstInt(group, func(r *literature.Record) int { return r.InfluentialCitationCount })

	merged.Venue = mergeVenue(group)
	merged.Publication = mergePublication(group)
	merged.Authors = bestAuthorList(group)
	merged.Identifiers = unionIdentifiers(group)
	merged.Categories = unionCategories(group)
	merged.PublicationTypes = unionPublicationTypes(group)
	merged.Provenance = m.mergeProvenance(group)

	return merged
}

// selectPrimary returns the index of the group member that forms the merge
// base: highest completeness score, ties broken by earliest group index.
func (m *Merger) selectPrimary(group []literature.Record) int {
	best := 0
	bestScore := primaryScore(&group[0])
	for i := 1; i < len(group); i++ {
		if score := primaryScore(&group[i]); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func primaryScore(r *literature.Record) int {
	score := SourcePriority(r.PrimarySource()) * 10

	if r.Title != "" {
		score += 5
	}
	if r.Abstract != "" {
		score += 8
	}
	if r.PublicationDate != "" {
		score += 3
	}

	score += min(len(r.Authors), 5) * 2
	score += min(len(r.Identifiers), 3) * 3

	if r.CitationCount > 0 {
		score += 2
	}
	return score
}

// Field strategies. All iterate in group order so ties resolve to the
// earliest member.

func longestString(group []literature.Record, get func(*literature.Record) string) string {
	best := ""
	for i := range group {
		if v := get(&group[i]); len(v) > len(best) {
			best = v
		}
	}
	return best
}

func firstString(group []literature.Record, get func(*literature.Record) string) string {
	for i := range group {
		if v := get(&group[i]); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstInt(group []literature.Record, get func(*literature.Record) int) int {
	for i := range group {
		if v := get(&group[i]); v != 0 {
			return v
		}
	}
	return 0
}

func maxInt(group []literature.Record, get func(*literature.Record) int) int {
	best := 0
	for i := range group {
		if v := get(&group[i]); v > best {
			best = v
		}
	}
	return best
}

func anyTrue(group []literature.Record, get func(*literature.Record) bool) bool {
	for i := range group {
		if get(&group[i]) {
			return true
		}
	}
	return false
}

// earliestDate returns the earliest parsable publication date, falling back
// to the first non-empty value when none parse.
func earliestDate(group []literature.Record) string {
	best := ""
	var bestTime time.Time
	for i := range group {
		v := group[i].PublicationDate
		if v == "" {
			continue
		}
		t, ok := literature.ParseDate(v)
		if !ok {
			continue
		}
		if best == "" || t.Before(bestTime) {
			best = v
			bestTime = t
		}
	}
	if best != "" {
		return best
	}
	return firstString(group, func(r *literature.Record) string { return r.PublicationDate })
}

func earliestYear(group []literature.Record) int {
	best := 0
	for i := range group {
		if y := group[i].PublicationYear; y != 0 && (best == 0 || y < best) {
			best = y
		}
	}
	return best
}

func mergeVenue(group []literature.Record) literature.Venue {
	return literature.Venue{
		Name:            firstString(group, func(r *literature.Record) string { return r.Venue.Name }),
		Type:            literature.VenueType(firstString(group, func(r *literature.Record) string { return string(r.Venue.Type) })),
		ISOAbbreviation: firstString(group, func(r *literature.Record) string { return r.Venue.ISOAbbreviation }),
		ISSNPrint:       firstString(group, func(r *literature.Record) string { return r.Venue.ISSNPrint }),
		ISSNElectronic:  firstString(group, func(r *literature.Record) string { return r.Venue.ISSNElectronic }),
		Publisher:       firstString(group, func(r *literature.Record) string { return r.Venue.Publisher }),
		Country:         firstString(group, func(r *literature.Record) string { return r.Venue.Country }),
	}
}

func mergePublication(group []literature.Record) literature.Publication {
	return literature.Publication{
		Volume:        firstString(group, func(r *literature.Record) string { return r.Publication.Volume }),
		Issue:         firstString(group, func(r *literature.Record) string { return r.Publication.Issue }),
		StartPage:     firstString(group, func(r *literature.Record) string { return r.Publication.StartPage }),
		EndPage:       firstString(group, func(r *literature.Record) string { return r.Publication.EndPage }),
		PageRange:     firstString(group, func(r *literature.Record) string { return r.Publication.PageRange }),
		ArticleNumber: firstString(group, func(r *literature.Record) string { return r.Publication.ArticleNumber }),
	}
}

// bestAuthorList picks one member's whole author list. Lists are never
// interleaved member by member.
func bestAuthorList(group []literature.Record) []literature.Author {
	var best []literature.Author
	bestScore := -1
	for i := range group {
		if score := authorListScore(group[i].Authors); score > bestScore {
			best = group[i].Authors
			bestScore = score
		}
	}
	return best
}

func authorListScore(authors []literature.Author) int {
	score := len(authors) * 10
	for _, a := range authors {
		if a.FullName != "" {
			score += 2
		}
		if a.Affiliation != "" {
			score += 1
		}
	}
	return score
}

// unionIdentifiers unions identifiers across the group, de-duplicated by
// canonical key. The first occurrence of a key wins, preserving its IsPrimary
// flag.
func unionIdentifiers(group []literature.Record) []literature.Identifier {
	seen := make(map[string]bool)
	var out []literature.Identifier
	for i := range group {
		for _, id := range group[i].Identifiers {
			key := id.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, id)
		}
	}
	return out
}

func unionCategories(group []literature.Record) []literature.Category {
	seen := make(map[string]bool)
	var out []literature.Category
	for i := range group {
		for _, c := range group[i].Categories {
			name := strings.ToLower(strings.TrimSpace(c.Name))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, c)
		}
	}
	return out
}

func unionPublicationTypes(group []literature.Record) []literature.PublicationType {
	seen := make(map[string]bool)
	var out []literature.PublicationType
	for i := range group {
		for _, pt := range group[i].PublicationTypes {
			name := strings.ToLower(strings.TrimSpace(pt.Name))
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, pt)
		}
	}
	return out
}

// mergeProvenance unions contributing sources in group order and accumulates
// the folded record count, so nesting merges keeps the count accurate.
func (m *Merger) mergeProvenance(group []literature.Record) literature.Provenance {
	prov := literature.Provenance{
		MergeTimestamp: m.now(),
	}

	seen := make(map[string]bool)
	for i := range group {
		for _, s := range group[i].Provenance.ContributingSources {
			if !seen[s] {
				seen[s] = true
				prov.ContributingSources = append(prov.ContributingSources, s)
			}
		}
		prov.MergeCount += max(group[i].Provenance.MergeCount, 1)

		for source, payload := range group[i].Provenance.RawPayloadBySource {
			if prov.RawPayloadBySource == nil {
				prov.RawPayloadBySource = make(map[string]string)
			}
			if _, ok := prov.RawPayloadBySource[source]; !ok {
				prov.RawPayloadBySource[source] = payload
			}
		}
	}

	return prov
}
