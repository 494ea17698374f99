// Package similarity implements the fuzzy string comparison used by
// duplicate detection: a Ratcliff/Obershelp sequence ratio plus the title and
// author-name normalization that feeds it.
package similarity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/citemap/citemap/pkg/logging"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stopwords removed from titles before comparison.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

var (
	nonWordRe    = regexp.MustCompile(`\W+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile(`[^\w\s]`)

	foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Ratio computes the Ratcliff/Obershelp similarity of two strings in [0, 1]:
// twice the number of matching characters over the total length, where
// matches are found by recursively splitting around the longest common
// substring.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	matched := matchingChars(ra, rb)
	return 2 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingChars counts characters in matching blocks, recursing on the
// unmatched regions either side of the longest common substring.
func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:ai], b[:bi]) +
		matchingChars(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// lengths[j] holds the match length ending at the current a index and b
	// index j. A single row is enough when iterated right to left.
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := len(b); j >= 1; j-- {
			if a[i-1] == b[j-1] {
				lengths[j] = lengths[j-1] + 1
				if lengths[j] > size {
					size = lengths[j]
					ai = i - size
					bi = j - size
				}
			} else {
				lengths[j] = 0
			}
		}
	}
	return ai, bi, size
}

// NormalizeTitle canonicalizes a title for fuzzy comparison: fold diacritics,
// lowercase, replace non-word characters with spaces, collapse whitespace and
// drop stopwords.
func NormalizeTitle(title string) string {
	s := Fold(strings.ToLower(title))
	s = nonWordRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")

	words := strings.Split(s, " ")
	kept := words[:0]
	for _, w := range words {
		if w != "" && !stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// NormalizeName canonicalizes an author name: fold diacritics, strip
// punctuation, collapse whitespace, lowercase.
func NormalizeName(name string) string {
	s := Fold(strings.ToLower(name))
	s = punctRe.ReplaceAllString(s, "")
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Fold removes diacritic marks so accented and unaccented spellings of the
// same name compare equal.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		logging.Warn().Err(err).Msg("diacritic folding failed, using input unchanged")
		return s
	}
	return folded
}

// TitleRatio compares two titles after normalization.
func TitleRatio(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" && nb == "" {
		return 0
	}
	return Ratio(na, nb)
}

// nameMatchThreshold is the per-name similarity required for a fuzzy author
// pair to count.
const nameMatchThreshold = 0.8

// AuthorOverlap computes the author-set similarity of two name lists: exact
// set intersection first, then greedy first-match fuzzy pairing of the
// remainder, divided by the larger list size.
func AuthorOverlap(namesA, namesB []string) float64 {
	if len(namesA) == 0 || len(namesB) == 0 {
		return 0
	}

	setA := normalizeNames(namesA)
	setB := normalizeNames(namesB)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	matchedB := make([]bool, len(setB))
	matched := 0

	// Exact matches.
	remainingA := make([]string, 0, len(setA))
	for _, a := range setA {
		found := false
		for j, b := range setB {
			if !matchedB[j] && a == b {
				matchedB[j] = true
				found = true
				matched++
				break
			}
		}
		if !found {
			remainingA = append(remainingA, a)
		}
	}

	// Greedy fuzzy pairing, first match wins, no backtracking.
	for _, a := range remainingA {
		for j, b := range setB {
			if !matchedB[j] && Ratio(a, b) > nameMatchThreshold {
				matchedB[j] = true
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(max(len(setA), len(setB)))
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if normalized := NormalizeName(n); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
