package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/citemap/citemap/pkg/errors"
)

func TestNewOptionsDefaults(t *testing.T) {
	opts := NewOptions()
	assert.Equal(t, DefaultResults, opts.NumResults)
	assert.Empty(t, opts.Year)
	assert.NoError(t, opts.Validate())
}

func TestOptionSetters(t *testing.T) {
	opts := NewOptions(
		WithNumResults(100),
		WithYear("2020-2023"),
		WithSort("relevance"),
		WithField("title"),
		WithTimeout(10*time.Second),
	)

	assert.Equal(t, 100, opts.NumResults)
	assert.Equal(t, "2020-2023", opts.Year)
	assert.Equal(t, "relevance", opts.Sort)
	assert.Equal(t, "title", opts.Field)
	assert.Equal(t, 10*time.Second, opts.Timeout)
	assert.NoError(t, opts.Validate())
}

func TestValidateNumResultsBounds(t *testing.T) {
	tests := []struct {
		n     int
		valid bool
	}{
		{1, true},
		{10000, true},
		{0, false},
		{10001, false},
		{-5, false},
	}

	for _, tt := range tests {
		opts := NewOptions(WithNumResults(tt.n))
		err := opts.Validate()
		if tt.valid {
			assert.NoError(t, err, "n=%d", tt.n)
		} else {
			assert.True(t, errors.IsValidationError(err), "n=%d", tt.n)
		}
	}
}

func TestValidYear(t *testing.T) {
	tests := []struct {
		year  string
		valid bool
	}{
		{"2020", true},
		{"2020-", true},
		{"-2020", true},
		{"2020-2023", true},
		{"2023-2020", false},
		{"20", false},
		{"abcd", false},
		{"2020-20", false},
		{"", false},
		{"0500", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidYear(tt.year), "year %q", tt.year)
	}
}

func TestYearBounds(t *testing.T) {
	tests := []struct {
		year       string
		start, end int
	}{
		{"2020", 2020, 2020},
		{"2020-", 2020, 0},
		{"-2020", 0, 2020},
		{"2018-2021", 2018, 2021},
		{"", 0, 0},
	}

	for _, tt := range tests {
		start, end := YearBounds(tt.year)
		assert.Equal(t, tt.start, start, "year %q", tt.year)
		assert.Equal(t, tt.end, end, "year %q", tt.year)
	}
}

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery("machine learning"))
	assert.True(t, errors.IsValidationError(ValidateQuery("")))
	assert.True(t, errors.IsValidationError(ValidateQuery("   ")))
}
