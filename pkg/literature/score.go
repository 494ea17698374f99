package literature

// Advisory scoring weights. Quality rewards substantive content, completeness
// measures plain field presence. Both are 0-100 and reproducible from these
// constants; they feed diagnostics and merge tie-breaks only.
const (
	qualityTitleMax       = 20.0
	qualityAbstractMax    = 25.0
	qualityAuthorsMax     = 15.0
	qualityPerAuthor      = 3.0
	qualityIdentifiersMax = 20.0
	qualityPerIdentifier  = 5.0
	qualityPublication    = 10.0
	qualityVenue          = 10.0

	qualityTitleFullLen    = 20
	qualityAbstractFullLen = 100
)

// QualityScore computes the 0-100 quality score of a record.
func QualityScore(rec *Record) float64 {
	score := 0.0

	if n := len(rec.Title); n > 0 {
		if n >= qualityTitleFullLen {
			score += qualityTitleMax
		} else {
			score += float64(n)
		}
	}

	if n := len(rec.Abstract); n > 0 {
		if n >= qualityAbstractFullLen {
			score += qualityAbstractMax
		} else {
			score += min(qualityAbstractMax, float64(n)/4)
		}
	}

	if n := len(rec.Authors); n > 0 {
		score += min(qualityAuthorsMax, float64(n)*qualityPerAuthor)
	}

	if n := len(rec.Identifiers); n > 0 {
		score += min(qualityIdentifiersMax, float64(n)*qualityPerIdentifier)
	}

	if rec.PublicationDate != "" || rec.PublicationYear != 0 {
		score += qualityPublication
	}

	if rec.Venue.Name != "" {
		score += qualityVenue
	}

	return min(score, 100)
}

// CompletenessScore computes the 0-100 share of core and optional fields
// present on a record.
func CompletenessScore(rec *Record) float64 {
	present := 0
	total := 0

	count := func(ok bool) {
		total++
		if ok {
			present++
		}
	}

	// Core fields.
	count(rec.Title != "")
	count(rec.Abstract != "")
	count(rec.PublicationDate != "")
	count(len(rec.Authors) > 0)
	count(len(rec.Identifiers) > 0)
	count(rec.Venue.Name != "")

	// Optional fields.
	count(rec.CitationCount > 0)
	count(rec.ReferenceCount > 0)
	count(rec.IsOpenAccess)
	count(len(rec.PublicationTypes) > 0)

	if total == 0 {
		return 0
	}
	return float64(present) / float64(total) * 100
}
