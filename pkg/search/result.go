package search

import (
	"time"

	"github.com/citemap/citemap/pkg/dedup"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/sources"
)

// SourceError records one per-source failure downgraded to metadata.
type SourceError struct {
	Source  string `json:"source" yaml:"source"`
	Message string `json:"message" yaml:"message"`
}

// Metadata summarizes one aggregation call.
type Metadata struct {
	SearchID          string                  `json:"search_id" yaml:"search_id"`
	Query             string                  `json:"query" yaml:"query"`
	TotalResults      int                     `json:"total_results" yaml:"total_results"`
	SourcesSearched   []string                `json:"sources_searched" yaml:"sources_searched"`
	SearchTime        time.Duration           `json:"search_time" yaml:"search_time"`
	DuplicatesRemoved int                     `json:"duplicates_removed" yaml:"duplicates_removed"`
	Dedup             dedup.Stats             `json:"dedup" yaml:"dedup"`
	PerSource         map[string]sources.Meta `json:"per_source,omitempty" yaml:"per_source,omitempty"`
	Errors            []SourceError           `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings          []string                `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Result is the outcome of one aggregation call: the canonical record list
// plus metadata. The record list may be empty while Errors explain why.
type Result struct {
	Records  []literature.Record `json:"records" yaml:"records"`
	Metadata Metadata            `json:"metadata" yaml:"metadata"`
}
