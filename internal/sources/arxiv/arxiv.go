// Package arxiv adapts the arXiv Atom API to the sources.Source contract.
// Responses are Atom feeds carrying arXiv-namespaced extensions; parsing is
// delegated to gofeed.
package arxiv

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/citemap/citemap/internal/transport"
	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/sources"
)

// DefaultQueryURL is the arXiv API query endpoint.
const DefaultQueryURL = "http://export.arxiv.org/api/query"

// The API caps a single page at 2000 entries and asks clients to stay under
// one request every three seconds.
const (
	maxPageSize    = 2000
	requestsPerSec = 1.0 / 3.0
)

var validSorts = []string{"relevance", "lastUpdatedDate", "submittedDate"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Adapter implements sources.Source against the arXiv Atom API.
type Adapter struct {
	client   *transport.Client
	queryURL string
	parser   *gofeed.Parser
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithEndpoint overrides the query endpoint, for tests.
func WithEndpoint(queryURL string) Option {
	return func(a *Adapter) {
		a.queryURL = queryURL
	}
}

// WithClient overrides the HTTP client.
func WithClient(client *transport.Client) Option {
	return func(a *Adapter) {
		a.client = client
	}
}

// New creates an arXiv adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		queryURL: DefaultQueryURL,
		parser:   gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = transport.New(transport.WithRateLimit(requestsPerSec, 1))
	}
	return a
}

// ID implements sources.Source.
func (a *Adapter) ID() sources.ID {
	return sources.ArXivID
}

// ValidateParams implements sources.Source.
func (a *Adapter) ValidateParams(query string, opts *sources.Options) error {
	if opts.Sort != "" && !slices.Contains(validSorts, opts.Sort) {
		return errors.NewValidationError("sort", opts.Sort,
			"must be one of "+strings.Join(validSorts, ", "))
	}
	return nil
}

// FetchRaw implements sources.Source.
func (a *Adapter) FetchRaw(ctx context.Context, query string, opts *sources.Options) ([]sources.RawHit, sources.Meta, error) {
	meta := sources.Meta{Source: a.ID(), Query: query}

	params := url.Values{}
	params.Set("search_query", buildQuery(query, opts.Year))
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(min(opts.NumResults, maxPageSize)))
	if opts.Sort != "" {
		params.Set("sortBy", opts.Sort)
		params.Set("sortOrder", "descending")
	}

	endpoint := a.queryURL + "?" + params.Encode()
	resp, err := a.client.Get(ctx, endpoint)
	if err != nil {
		return nil, meta, errors.WrapNetwork(a.ID().String(), a.queryURL, err)
	}

	body, err := transport.ReadBody(resp, a.ID().String())
	if err != nil {
		return nil, meta, err
	}

	feed, err := a.parser.ParseString(string(body))
	if err != nil {
		return nil, meta, errors.WrapFormat(a.ID().String(), "atom", err)
	}

	meta.TotalAvailable = totalResults(feed)

	hits := make([]sources.RawHit, 0, len(feed.Items))
	for _, item := range feed.Items {
		hits = append(hits, item)
	}
	return hits, meta, nil
}

// buildQuery appends a submittedDate range clause for year filters. Open
// bounds fall back to the earliest plausible year and the current year.
func buildQuery(query, year string) string {
	if year == "" {
		return query
	}
	start, end := sources.YearBounds(year)
	if start == 0 {
		start = 1000
	}
	if end == 0 {
		end = time.Now().Year()
	}
	clause := fmt.Sprintf("submittedDate:[%d01010000 TO %d12312359]", start, end)
	if query == "" {
		return clause
	}
	return query + " AND " + clause
}

// Normalize implements sources.Source, mapping Atom entries into canonical
// records.
func (a *Adapter) Normalize(hits []sources.RawHit) ([]literature.Record, error) {
	records := make([]literature.Record, 0, len(hits))
	for _, hit := range hits {
		item, ok := hit.(*gofeed.Item)
		if !ok {
			return nil, errors.NewFormatError(a.ID().String(), "atom",
				fmt.Sprintf("unexpected hit type %T", hit), nil)
		}
		records = append(records, a.toRecord(item))
	}
	return records, nil
}

func (a *Adapter) toRecord(item *gofeed.Item) literature.Record {
	rec := literature.Record{
		Title:        collapseWhitespace(item.Title),
		Abstract:     collapseWhitespace(item.Description),
		IsOpenAccess: true,
		Provenance: literature.Provenance{
			ContributingSources: []string{a.ID().String()},
		},
	}

	for i, person := range item.Authors {
		if person == nil || strings.TrimSpace(person.Name) == "" {
			continue
		}
		rec.Authors = append(rec.Authors, literature.Author{
			FullName: strings.TrimSpace(person.Name),
			Order:    i + 1,
		})
	}
	rec.RenumberAuthors()

	if item.PublishedParsed != nil {
		rec.PublicationDate = item.PublishedParsed.Format("2006-01-02")
		rec.PublicationYear = item.PublishedParsed.Year()
	}
	if item.UpdatedParsed != nil {
		rec.UpdatedDate = item.UpdatedParsed.Format("2006-01-02")
	}

	doi := extensionValue(item, "doi")
	if doi != "" {
		rec.PrimaryDOI = doi
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.DOI,
			Value:     doi,
			IsPrimary: true,
		})
	}
	if arxivID := shortID(item.GUID); arxivID != "" {
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.ArXiv,
			Value:     arxivID,
			IsPrimary: doi == "",
		})
	}

	if journalRef := extensionValue(item, "journal_ref"); journalRef != "" {
		rec.Venue = literature.Venue{
			Name: collapseWhitespace(journalRef),
			Type: literature.VenueJournal,
		}
	} else {
		rec.Venue = literature.Venue{
			Name: "arXiv",
			Type: literature.VenuePreprintServer,
		}
	}

	for _, link := range item.Links {
		if strings.Contains(link, "/pdf/") {
			rec.OpenAccessURL = link
			break
		}
	}
	if rec.OpenAccessURL == "" {
		rec.OpenAccessURL = item.Link
	}

	for _, category := range item.Categories {
		if category == "" {
			continue
		}
		rec.Categories = append(rec.Categories, literature.Category{
			Name: category,
			Type: "arxiv",
		})
	}

	return rec
}

// shortID extracts the bare arXiv identifier from an entry id URL like
// http://arxiv.org/abs/2301.01234v2.
func shortID(entryID string) string {
	if entryID == "" {
		return ""
	}
	if idx := strings.Index(entryID, "/abs/"); idx >= 0 {
		return entryID[idx+len("/abs/"):]
	}
	return entryID
}

// extensionValue reads an arXiv-namespaced extension element off an entry.
func extensionValue(item *gofeed.Item, name string) string {
	exts, ok := item.Extensions["arxiv"][name]
	if !ok || len(exts) == 0 {
		return ""
	}
	return strings.TrimSpace(exts[0].Value)
}

// totalResults reads the opensearch total hit count off the feed.
func totalResults(feed *gofeed.Feed) int {
	exts, ok := feed.Extensions["opensearch"]["totalResults"]
	if !ok || len(exts) == 0 {
		return 0
	}
	total, err := strconv.Atoi(strings.TrimSpace(exts[0].Value))
	if err != nil {
		return 0
	}
	return total
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
