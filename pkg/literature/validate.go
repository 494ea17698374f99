package literature

import (
	"fmt"
	"strings"
	"time"

	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/logging"
)

// Validation holds the outcome of structural and quality checks on a record.
// Errors mark the record invalid; warnings are advisory diagnostics.
type Validation struct {
	Valid             bool     `json:"valid" yaml:"valid"`
	Errors            []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings          []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	QualityScore      float64  `json:"quality_score" yaml:"quality_score"`
	CompletenessScore float64  `json:"completeness_score" yaml:"completeness_score"`
}

func (v *Validation) addError(format string, args ...any) {
	v.Valid = false
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

func (v *Validation) addWarning(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}

// Field length bounds used by validation.
const (
	titleMinLen    = 10
	titleMaxLen    = 500
	abstractMinLen = 50
	abstractMaxLen = 5000
)

var dateFormats = []string{"2006-01-02", "2006-01", "2006"}

// Validate runs structural validation over a record and computes its advisory
// quality and completeness scores.
func Validate(rec *Record) Validation {
	v := Validation{Valid: true}

	validateCore(rec, &v)
	validateAuthors(rec, &v)
	validateIdentifiers(rec, &v)
	validateVenue(rec, &v)

	v.QualityScore = QualityScore(rec)
	v.CompletenessScore = CompletenessScore(rec)

	return v
}

// ValidateBatch validates a list of records in order.
func ValidateBatch(recs []Record) []Validation {
	results := make([]Validation, 0, len(recs))
	for i := range recs {
		result := Validate(&recs[i])
		if !result.Valid {
			logging.Warn().
				Int("index", i).
				Strs("errors", result.Errors).
				Msg("record failed validation")
		}
		results = append(results, result)
	}
	return results
}

func validateCore(rec *Record, v *Validation) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		v.addError("title is required")
	} else if len(title) < titleMinLen {
		v.addWarning("title is too short (minimum %d characters)", titleMinLen)
	} else if len(title) > titleMaxLen {
		v.addWarning("title is too long (maximum %d characters)", titleMaxLen)
	}

	abstract := strings.TrimSpace(rec.Abstract)
	if abstract == "" {
		v.addWarning("abstract is missing")
	} else if len(abstract) < abstractMinLen {
		v.addWarning("abstract is too short (minimum %d characters)", abstractMinLen)
	} else if len(abstract) > abstractMaxLen {
		v.addWarning("abstract is too long (maximum %d characters)", abstractMaxLen)
	}

	if rec.PublicationYear != 0 {
		if rec.PublicationYear < 1900 || rec.PublicationYear > time.Now().Year()+1 {
			v.addError("invalid publication year: %d", rec.PublicationYear)
		}
	}

	if rec.PublicationDate != "" && !ValidDate(rec.PublicationDate) {
		v.addError("invalid publication date format: %s", rec.PublicationDate)
	}

	if rec.CitationCount < 0 {
		v.addError("citation count must be non-negative")
	}
	if rec.ReferenceCount < 0 {
		v.addError("reference count must be non-negative")
	}
	if rec.InfluentialCitationCount < 0 {
		v.addError("influential citation count must be non-negative")
	}
}

func validateAuthors(rec *Record, v *Validation) {
	if len(rec.Authors) == 0 {
		v.addWarning("no authors specified")
		return
	}

	for i, author := range rec.Authors {
		name := strings.TrimSpace(author.FullName)
		if name == "" {
			v.addWarning("author %d missing full name", i+1)
		} else if len(name) < 2 {
			v.addWarning("author %d name too short", i+1)
		}
	}
}

func validateIdentifiers(rec *Record, v *Validation) {
	if len(rec.Identifiers) == 0 {
		v.addWarning("no identifiers specified")
		return
	}

	seenTypes := make(map[identifiers.Type]bool)
	for _, id := range rec.Identifiers {
		if id.Type == "" {
			v.addError("identifier missing type")
			continue
		}
		if strings.TrimSpace(id.Value) == "" {
			v.addError("identifier missing value")
			continue
		}

		if !id.Type.IsValid() {
			v.addWarning("unknown identifier type: %s", id.Type)
		}
		if seenTypes[id.Type] {
			v.addWarning("duplicate identifier type: %s", id.Type)
		}
		seenTypes[id.Type] = true

		normalized := identifiers.Normalize(id.Type, id.Value)
		if !identifiers.MatchesFormat(id.Type, normalized) {
			v.addError("invalid %s format: %s", id.Type, id.Value)
		}
	}
}

func validateVenue(rec *Record, v *Validation) {
	if rec.Venue == (Venue{}) {
		v.addWarning("no venue information")
		return
	}

	name := strings.TrimSpace(rec.Venue.Name)
	if name == "" {
		v.addWarning("venue name is missing")
	} else if len(name) < 3 {
		v.addWarning("venue name is too short")
	}

	if rec.Venue.Type != "" && !rec.Venue.Type.IsValid() {
		v.addWarning("unknown venue type: %s", rec.Venue.Type)
	}
}

// ValidDate reports whether a date string parses as one of the accepted
// formats YYYY-MM-DD, YYYY-MM or YYYY.
func ValidDate(date string) bool {
	for _, format := range dateFormats {
		if _, err := time.Parse(format, date); err == nil {
			return true
		}
	}
	return false
}

// ParseDate parses a date string in the accepted formats, earliest-component
// defaults for missing parts.
func ParseDate(date string) (time.Time, bool) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
