// Package semanticscholar adapts the Semantic Scholar Graph bulk search API
// to the sources.Source contract. Bulk search pages with continuation tokens
// and returns up to 1000 papers per page.
package semanticscholar

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/citemap/citemap/internal/transport"
	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/sources"
)

// DefaultBulkURL is the Graph API bulk search endpoint.
const DefaultBulkURL = "https://api.semanticscholar.org/graph/v1/paper/search/bulk"

// requestFields is the field projection requested for every paper.
const requestFields = "paperId,corpusId,externalIds,url,title,abstract,venue," +
	"publicationVenue,year,referenceCount,citationCount,influentialCitationCount," +
	"isOpenAccess,openAccessPdf,fieldsOfStudy,publicationTypes,publicationDate," +
	"journal,authors"

// Boolean operators are spelled differently in the bulk query grammar.
var queryGrammar = strings.NewReplacer(
	" AND ", " + ",
	" OR ", " | ",
	" NOT ", " - ",
)

// Adapter implements sources.Source against the Graph bulk search API.
type Adapter struct {
	client  *transport.Client
	bulkURL string
	apiKey  string
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithAPIKey sets the Graph API key, sent as the x-api-key header.
func WithAPIKey(key string) Option {
	return func(a *Adapter) {
		a.apiKey = key
	}
}

// WithEndpoint overrides the bulk search endpoint, for tests.
func WithEndpoint(bulkURL string) Option {
	return func(a *Adapter) {
		a.bulkURL = bulkURL
	}
}

// WithClient overrides the HTTP client.
func WithClient(client *transport.Client) Option {
	return func(a *Adapter) {
		a.client = client
	}
}

// New creates a Semantic Scholar adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		bulkURL: DefaultBulkURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		clientOpts := []transport.ClientOption{transport.WithRateLimit(1, 1)}
		if a.apiKey != "" {
			clientOpts = append(clientOpts, transport.WithHeader("x-api-key", a.apiKey))
		}
		a.client = transport.New(clientOpts...)
	}
	return a
}

// ID implements sources.Source.
func (a *Adapter) ID() sources.ID {
	return sources.SemanticScholarID
}

// ValidateParams implements sources.Source. Sort orders are free-form
// "field:direction" pairs validated by the backend, so only the direction is
// checked here.
func (a *Adapter) ValidateParams(query string, opts *sources.Options) error {
	if opts.Sort == "" {
		return nil
	}
	if field, dir, found := strings.Cut(opts.Sort, ":"); found {
		if field == "" || (dir != "asc" && dir != "desc") {
			return errors.NewValidationError("sort", opts.Sort, "must be field:asc or field:desc")
		}
	}
	return nil
}

// bulkResponse is the JSON envelope of a bulk search page.
type bulkResponse struct {
	Total int     `json:"total"`
	Token string  `json:"token"`
	Data  []paper `json:"data"`
}

type paper struct {
	PaperID     string            `json:"paperId"`
	CorpusID    int64             `json:"corpusId"`
	ExternalIDs map[string]any    `json:"externalIds"`
	URL         string            `json:"url"`
	Title       string            `json:"title"`
	Abstract    string            `json:"abstract"`
	Venue       string            `json:"venue"`
	PubVenue    *publicationVenue `json:"publicationVenue"`
	Year        int               `json:"year"`
	RefCount    int               `json:"referenceCount"`
	CiteCount   int               `json:"citationCount"`
	InflCount   int               `json:"influentialCitationCount"`
	OpenAccess  bool              `json:"isOpenAccess"`
	OpenPDF     *openAccessPDF    `json:"openAccessPdf"`
	Fields      []string          `json:"fieldsOfStudy"`
	PubTypes    []string          `json:"publicationTypes"`
	PubDate     string            `json:"publicationDate"`
	Journal     *journal          `json:"journal"`
	Authors     []paperAuthor     `json:"authors"`
}

type publicationVenue struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type openAccessPDF struct {
	URL string `json:"url"`
}

type journal struct {
	Name   string `json:"name"`
	Volume string `json:"volume"`
	Pages  string `json:"pages"`
}

type paperAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// FetchRaw implements sources.Source, following continuation tokens until the
// requested result count is reached.
func (a *Adapter) FetchRaw(ctx context.Context, query string, opts *sources.Options) ([]sources.RawHit, sources.Meta, error) {
	meta := sources.Meta{Source: a.ID(), Query: query}

	var hits []sources.RawHit
	token := ""
	for {
		page, err := a.fetchPage(ctx, query, opts, token)
		if err != nil {
			return nil, meta, err
		}
		meta.TotalAvailable = page.Total

		for i := range page.Data {
			hits = append(hits, page.Data[i])
			if len(hits) == opts.NumResults {
				return hits, meta, nil
			}
		}

		token = page.Token
		if token == "" || len(page.Data) == 0 {
			return hits, meta, nil
		}
	}
}

func (a *Adapter) fetchPage(ctx context.Context, query string, opts *sources.Options, token string) (*bulkResponse, error) {
	params := url.Values{}
	params.Set("query", "("+queryGrammar.Replace(query)+")")
	params.Set("fields", requestFields)
	if opts.Year != "" {
		params.Set("year", opts.Year)
	}
	if opts.Field != "" {
		params.Set("fieldsOfStudy", opts.Field)
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	if token != "" {
		params.Set("token", token)
	}

	endpoint := a.bulkURL + "?" + params.Encode()
	resp, err := a.client.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapNetwork(a.ID().String(), a.bulkURL, err)
	}

	var page bulkResponse
	if err := transport.DecodeJSON(resp, a.ID().String(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Normalize implements sources.Source.
func (a *Adapter) Normalize(hits []sources.RawHit) ([]literature.Record, error) {
	records := make([]literature.Record, 0, len(hits))
	for _, hit := range hits {
		p, ok := hit.(paper)
		if !ok {
			return nil, errors.NewFormatError(a.ID().String(), "json",
				fmt.Sprintf("unexpected hit type %T", hit), nil)
		}
		records = append(records, a.toRecord(p))
	}
	return records, nil
}

func (a *Adapter) toRecord(p paper) literature.Record {
	rec := literature.Record{
		Title:                    strings.TrimSpace(p.Title),
		Abstract:                 strings.TrimSpace(p.Abstract),
		PublicationYear:          p.Year,
		PublicationDate:          p.PubDate,
		CitationCount:            p.CiteCount,
		ReferenceCount:           p.RefCount,
		InfluentialCitationCount: p.InflCount,
		IsOpenAccess:             p.OpenAccess,
		Provenance: literature.Provenance{
			ContributingSources: []string{a.ID().String()},
		},
	}

	if p.OpenPDF != nil {
		rec.OpenAccessURL = p.OpenPDF.URL
	}

	rec.Venue = a.toVenue(p)

	if p.Journal != nil {
		rec.Publication.Volume = p.Journal.Volume
		if pages := p.Journal.Pages; pages != "" {
			rec.Publication.PageRange = pages
			if start, end, found := strings.Cut(pages, "-"); found {
				rec.Publication.StartPage = strings.TrimSpace(start)
				rec.Publication.EndPage = strings.TrimSpace(end)
			}
		}
	}

	for i, au := range p.Authors {
		name := strings.TrimSpace(au.Name)
		if name == "" {
			continue
		}
		rec.Authors = append(rec.Authors, literature.Author{
			FullName: name,
			Order:    i + 1,
		})
	}
	rec.RenumberAuthors()

	doi := externalID(p.ExternalIDs, "DOI")
	if doi != "" {
		rec.PrimaryDOI = doi
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.DOI,
			Value:     doi,
			IsPrimary: true,
		})
	}
	if pmid := externalID(p.ExternalIDs, "PubMed"); pmid != "" {
		rec.AddIdentifier(literature.Identifier{
			Type:  identifiers.PMID,
			Value: pmid,
		})
	}
	if arxivID := externalID(p.ExternalIDs, "ArXiv"); arxivID != "" {
		rec.AddIdentifier(literature.Identifier{
			Type:  identifiers.ArXiv,
			Value: arxivID,
		})
	}
	if p.PaperID != "" {
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.SemanticScholar,
			Value:     p.PaperID,
			IsPrimary: doi == "",
		})
	}
	if p.CorpusID != 0 {
		rec.AddIdentifier(literature.Identifier{
			Type:  identifiers.Corpus,
			Value: strconv.FormatInt(p.CorpusID, 10),
		})
	}

	for _, field := range p.Fields {
		if field == "" {
			continue
		}
		rec.Categories = append(rec.Categories, literature.Category{
			Name: field,
			Type: "fieldsOfStudy",
		})
	}

	for _, pt := range p.PubTypes {
		if pt == "" {
			continue
		}
		rec.PublicationTypes = append(rec.PublicationTypes, literature.PublicationType{
			Name:       pt,
			SourceType: a.ID().String(),
		})
	}

	return rec
}

func (a *Adapter) toVenue(p paper) literature.Venue {
	venue := literature.Venue{}
	if p.PubVenue != nil && p.PubVenue.Name != "" {
		venue.Name = p.PubVenue.Name
		switch p.PubVenue.Type {
		case "journal":
			venue.Type = literature.VenueJournal
		case "conference":
			venue.Type = literature.VenueConference
		default:
			venue.Type = literature.VenueOther
		}
		return venue
	}
	if p.Journal != nil && p.Journal.Name != "" {
		venue.Name = p.Journal.Name
		venue.Type = literature.VenueJournal
		return venue
	}
	if p.Venue != "" {
		venue.Name = p.Venue
		venue.Type = literature.VenueOther
	}
	return venue
}

// externalID tolerates the API reporting identifiers as strings or numbers.
func externalID(ids map[string]any, key string) string {
	switch v := ids[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}
