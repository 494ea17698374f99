package sources

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/citemap/citemap/pkg/errors"
)

// Limits on the number of results requested per source.
const (
	MinResults     = 1
	MaxResults     = 10000
	DefaultResults = 50
)

// Options configures one source search.
type Options struct {
	// NumResults is the maximum number of hits to request, in
	// [MinResults, MaxResults].
	NumResults int

	// Year filters by publication year. Accepted formats: "YYYY",
	// "YYYY-", "-YYYY", "YYYY-YYYY".
	Year string

	// Sort names a backend sort order, passed through to the adapter.
	Sort string

	// Field restricts the query to a backend-specific search field.
	Field string

	// Timeout bounds the fetch of a single source. Zero means no
	// per-source deadline beyond the caller's context.
	Timeout time.Duration
}

// Option is a function that configures search options.
type Option func(*Options)

// WithNumResults sets the maximum number of results per source.
func WithNumResults(n int) Option {
	return func(opts *Options) {
		opts.NumResults = n
	}
}

// WithYear sets the publication year filter.
func WithYear(year string) Option {
	return func(opts *Options) {
		opts.Year = year
	}
}

// WithSort sets the backend sort order.
func WithSort(sort string) Option {
	return func(opts *Options) {
		opts.Sort = sort
	}
}

// WithField restricts the query to a backend search field.
func WithField(field string) Option {
	return func(opts *Options) {
		opts.Field = field
	}
}

// WithTimeout bounds the fetch of a single source.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// NewOptions creates Options with defaults applied.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		NumResults: DefaultResults,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Validate checks the options for request-level errors.
func (opts *Options) Validate() error {
	if opts == nil {
		return nil
	}

	if opts.NumResults < MinResults || opts.NumResults > MaxResults {
		return errors.NewValidationError("num_results", opts.NumResults,
			fmt.Sprintf("must be between %d and %d", MinResults, MaxResults))
	}

	if opts.Year != "" && !ValidYear(opts.Year) {
		return errors.NewValidationError("year", opts.Year,
			"must be YYYY, YYYY-, -YYYY or YYYY-YYYY")
	}

	if opts.Timeout < 0 {
		return errors.NewValidationError("timeout", opts.Timeout, "cannot be negative")
	}

	return nil
}

// ValidateQuery checks a raw query string before dispatch.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.NewValidationError("query", query, "must not be empty")
	}
	return nil
}

// ValidYear reports whether a year filter is well formed: a four digit year
// in a plausible range, an open-ended range in either direction, or a closed
// range with start not after end.
func ValidYear(year string) bool {
	year = strings.TrimSpace(year)
	if year == "" {
		return false
	}

	currentYear := time.Now().Year()
	inRange := func(s string) (int, bool) {
		if len(s) != 4 {
			return 0, false
		}
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return y, y >= 1000 && y <= currentYear+5
	}

	switch {
	case strings.HasPrefix(year, "-"):
		_, ok := inRange(year[1:])
		return ok
	case strings.HasSuffix(year, "-"):
		_, ok := inRange(year[:len(year)-1])
		return ok
	case strings.Contains(year, "-"):
		start, end, found := strings.Cut(year, "-")
		if !found {
			return false
		}
		s, okS := inRange(start)
		e, okE := inRange(end)
		return okS && okE && s <= e
	default:
		_, ok := inRange(year)
		return ok
	}
}

// YearBounds parses a validated year filter into inclusive start and end
// years. Zero means unbounded on that side.
func YearBounds(year string) (start, end int) {
	year = strings.TrimSpace(year)
	switch {
	case year == "":
		return 0, 0
	case strings.HasPrefix(year, "-"):
		end, _ = strconv.Atoi(year[1:])
		return 0, end
	case strings.HasSuffix(year, "-"):
		start, _ = strconv.Atoi(year[:len(year)-1])
		return start, 0
	case strings.Contains(year, "-"):
		s, e, _ := strings.Cut(year, "-")
		start, _ = strconv.Atoi(s)
		end, _ = strconv.Atoi(e)
		return start, end
	default:
		start, _ = strconv.Atoi(year)
		return start, start
	}
}
