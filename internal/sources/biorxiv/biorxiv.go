// Package biorxiv adapts the bioRxiv/medRxiv details API to the
// sources.Source contract. The API has no keyword search: a query is either a
// 10.1101 DOI or it selects a date interval, paged in blocks of 100.
package biorxiv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/citemap/citemap/internal/transport"
	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/sources"
)

// DefaultBaseURL is the bioRxiv API root.
const DefaultBaseURL = "https://api.biorxiv.org"

// The details endpoint returns at most 100 items per page.
const pageSize = 100

// doiPrefix is the DOI prefix bioRxiv assigns to its preprints.
const doiPrefix = "10.1101/"

// Adapter implements sources.Source against the bioRxiv details API.
type Adapter struct {
	client  *transport.Client
	baseURL string
	server  string
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithBaseURL overrides the API root, for tests.
func WithBaseURL(baseURL string) Option {
	return func(a *Adapter) {
		a.baseURL = baseURL
	}
}

// WithServer selects the preprint server, "biorxiv" or "medrxiv".
func WithServer(server string) Option {
	return func(a *Adapter) {
		a.server = server
	}
}

// WithClient overrides the HTTP client.
func WithClient(client *transport.Client) Option {
	return func(a *Adapter) {
		a.client = client
	}
}

// New creates a bioRxiv adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		baseURL: DefaultBaseURL,
		server:  "biorxiv",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = transport.New(transport.WithRateLimit(2, 1))
	}
	return a
}

// ID implements sources.Source.
func (a *Adapter) ID() sources.ID {
	return sources.BioRxivID
}

// ValidateParams implements sources.Source. The details API ignores sort and
// field parameters, so anything the generic validation accepts passes.
func (a *Adapter) ValidateParams(query string, opts *sources.Options) error {
	return nil
}

// detailsResponse is the JSON envelope of a details call.
type detailsResponse struct {
	Messages []struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Total   any    `json:"total"`
	} `json:"messages"`
	Collection []collectionItem `json:"collection"`
}

type collectionItem struct {
	DOI          string `json:"doi"`
	Title        string `json:"title"`
	Authors      string `json:"authors"`
	Corresponding string `json:"author_corresponding"`
	Institution  string `json:"author_corresponding_institution"`
	Date         string `json:"date"`
	Version      string `json:"version"`
	Category     string `json:"category"`
	Abstract     string `json:"abstract"`
	Server       string `json:"server"`
	Published    string `json:"published"`
}

// FetchRaw implements sources.Source. DOI queries resolve a single preprint;
// anything else walks the date interval derived from the year filter.
func (a *Adapter) FetchRaw(ctx context.Context, query string, opts *sources.Options) ([]sources.RawHit, sources.Meta, error) {
	meta := sources.Meta{Source: a.ID(), Query: query}

	if strings.HasPrefix(query, doiPrefix) {
		items, total, err := a.page(ctx, fmt.Sprintf("%s/details/%s/%s/na/json", a.baseURL, a.server, query))
		if err != nil {
			return nil, meta, err
		}
		meta.TotalAvailable = total
		return toHits(items), meta, nil
	}

	interval := intervalFor(opts.Year)
	var items []collectionItem
	total := 0
	for cursor := 0; len(items) < opts.NumResults; cursor += pageSize {
		page, pageTotal, err := a.page(ctx,
			fmt.Sprintf("%s/details/%s/%s/%d/json", a.baseURL, a.server, interval, cursor))
		if err != nil {
			return nil, meta, err
		}
		total = pageTotal
		items = append(items, page...)
		if len(page) < pageSize || cursor+pageSize >= total {
			break
		}
	}
	if len(items) > opts.NumResults {
		items = items[:opts.NumResults]
	}

	meta.TotalAvailable = total
	return toHits(items), meta, nil
}

func (a *Adapter) page(ctx context.Context, endpoint string) ([]collectionItem, int, error) {
	resp, err := a.client.Get(ctx, endpoint)
	if err != nil {
		return nil, 0, errors.WrapNetwork(a.ID().String(), endpoint, err)
	}

	var details detailsResponse
	if err := transport.DecodeJSON(resp, a.ID().String(), &details); err != nil {
		return nil, 0, err
	}

	if len(details.Messages) > 0 {
		msg := details.Messages[0]
		if msg.Status == "error" {
			return nil, 0, errors.NewSearchError(a.ID().String(), "", errors.New(msg.Message))
		}
		if total, ok := asInt(msg.Total); ok && total > 0 {
			return details.Collection, total, nil
		}
	}
	return details.Collection, len(details.Collection), nil
}

// asInt tolerates the API reporting totals as either numbers or strings.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		var total int
		if _, err := fmt.Sscanf(n, "%d", &total); err == nil {
			return total, true
		}
	}
	return 0, false
}

// intervalFor converts a year filter into the YYYY-MM-DD/YYYY-MM-DD interval
// the details endpoint expects. Open bounds cover the server's full history.
func intervalFor(year string) string {
	start, end := sources.YearBounds(year)
	if start == 0 {
		start = 2013
	}
	if end == 0 {
		end = time.Now().Year()
	}
	return fmt.Sprintf("%d-01-01/%d-12-31", start, end)
}

func toHits(items []collectionItem) []sources.RawHit {
	hits := make([]sources.RawHit, 0, len(items))
	for i := range items {
		hits = append(hits, items[i])
	}
	return hits
}

// Normalize implements sources.Source.
func (a *Adapter) Normalize(hits []sources.RawHit) ([]literature.Record, error) {
	records := make([]literature.Record, 0, len(hits))
	for _, hit := range hits {
		item, ok := hit.(collectionItem)
		if !ok {
			return nil, errors.NewFormatError(a.ID().String(), "json",
				fmt.Sprintf("unexpected hit type %T", hit), nil)
		}
		records = append(records, a.toRecord(item))
	}
	return records, nil
}

func (a *Adapter) toRecord(item collectionItem) literature.Record {
	server := item.Server
	if server == "" {
		server = a.server
	}

	rec := literature.Record{
		Title:        strings.TrimSpace(item.Title),
		Abstract:     strings.TrimSpace(item.Abstract),
		IsOpenAccess: true,
		Venue: literature.Venue{
			Name: server,
			Type: literature.VenuePreprintServer,
		},
		PublicationTypes: []literature.PublicationType{
			{Name: "Preprint", SourceType: a.ID().String()},
		},
		Provenance: literature.Provenance{
			ContributingSources: []string{a.ID().String()},
		},
	}

	if doi := strings.TrimSpace(item.DOI); doi != "" {
		rec.PrimaryDOI = doi
		rec.OpenAccessURL = "https://doi.org/" + doi
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.DOI,
			Value:     doi,
			IsPrimary: true,
		})
	}

	if t, ok := literature.ParseDate(item.Date); ok {
		rec.PublicationDate = item.Date
		rec.PublicationYear = t.Year()
	}

	order := 0
	for _, name := range strings.Split(item.Authors, ";") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		order++
		author := literature.Author{FullName: name, Order: order}
		if name == strings.TrimSpace(item.Corresponding) {
			author.IsCorresponding = true
			author.Affiliation = item.Institution
		}
		rec.Authors = append(rec.Authors, author)
	}

	if category := strings.TrimSpace(item.Category); category != "" {
		rec.Categories = append(rec.Categories, literature.Category{
			Name: category,
			Type: a.ID().String(),
		})
	}

	return rec
}
