// Package identifiers provides canonicalization of bibliographic identifier
// strings. Every comparison of identifiers anywhere in the system goes through
// Key, so two records referring to the same work compare equal regardless of
// how their source formatted the identifier.
package identifiers

import (
	"regexp"
	"strings"
)

// Type identifies an identifier scheme.
type Type string

// Known identifier schemes.
const (
	DOI             Type = "doi"
	PMID            Type = "pmid"
	ArXiv           Type = "arxiv_id"
	SemanticScholar Type = "semantic_scholar_id"
	WoS             Type = "wos_uid"
	PII             Type = "pii"
	PMC             Type = "pmc_id"
	Corpus          Type = "corpus_id"
)

// String returns the type as a string.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the type is a known identifier scheme.
func (t Type) IsValid() bool {
	switch t {
	case DOI, PMID, ArXiv, SemanticScholar, WoS, PII, PMC, Corpus:
		return true
	}
	return false
}

// Priority returns identifier types in matching priority order for exact
// deduplication. Higher-confidence schemes come first.
func Priority() []Type {
	return []Type{DOI, PMID, ArXiv, SemanticScholar, WoS}
}

var (
	doiPrefixRe    = regexp.MustCompile(`(?i)^(doi:|https?://doi\.org/|https?://dx\.doi\.org/)`)
	nonDigitRe     = regexp.MustCompile(`\D`)
	arxivPrefixRe  = regexp.MustCompile(`(?i)^arxiv:`)
	arxivVersionRe = regexp.MustCompile(`v\d+$`)

	doiFormatRe   = regexp.MustCompile(`^10\.\d{4,}/\S+$`)
	pmidFormatRe  = regexp.MustCompile(`^\d+$`)
	arxivFormatRe = regexp.MustCompile(`^(\d{4}\.\d{4,5}|[a-z-]+(\.[A-Z]{2})?/\d{7})(v\d+)?$`)
)

// Normalize canonicalizes a raw identifier value for the given scheme.
// The function is idempotent: Normalize(t, Normalize(t, v)) == Normalize(t, v).
func Normalize(t Type, raw string) string {
	value := strings.TrimSpace(raw)

	switch t {
	case DOI:
		value = doiPrefixRe.ReplaceAllString(value, "")
		value = strings.TrimRight(value, "/")
		return strings.ToLower(value)
	case PMID:
		return nonDigitRe.ReplaceAllString(value, "")
	case ArXiv:
		value = arxivPrefixRe.ReplaceAllString(value, "")
		return arxivVersionRe.ReplaceAllString(value, "")
	default:
		return strings.ToLower(value)
	}
}

// Key returns the canonical equality key "{type}:{normalized}" used wherever
// duplicate identifiers are compared.
func Key(t Type, raw string) string {
	return string(t) + ":" + Normalize(t, raw)
}

// MatchesFormat reports whether a normalized identifier value conforms to the
// expected format for its scheme. Types without a known format always match.
func MatchesFormat(t Type, value string) bool {
	switch t {
	case DOI:
		return doiFormatRe.MatchString(value)
	case PMID:
		return pmidFormatRe.MatchString(value)
	case ArXiv:
		return arxivFormatRe.MatchString(value)
	default:
		return true
	}
}
