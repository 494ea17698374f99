// Package pubmed adapts the NCBI E-utilities API (ESearch + EFetch) to the
// sources.Source contract. A search is a two step round trip: ESearch resolves
// the query to a PMID list (JSON), EFetch hydrates the PMIDs into full article
// metadata (XML).
package pubmed

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/citemap/citemap/internal/transport"
	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/logging"
	"github.com/citemap/citemap/pkg/sources"
)

// NCBI E-utilities endpoints.
const (
	DefaultSearchURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	DefaultFetchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// NCBI allows 3 requests per second without an API key and 10 with one.
const (
	anonymousRate = 3
	keyedRate     = 10
)

var validSorts = []string{"relevance", "pub_date", "Author", "JournalName"}

// Adapter implements sources.Source against the NCBI E-utilities API.
type Adapter struct {
	client    *transport.Client
	searchURL string
	fetchURL  string
	apiKey    string
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithAPIKey sets the NCBI API key, raising the allowed request rate.
func WithAPIKey(key string) Option {
	return func(a *Adapter) {
		a.apiKey = key
	}
}

// WithEndpoints overrides the E-utilities endpoints, for tests.
func WithEndpoints(searchURL, fetchURL string) Option {
	return func(a *Adapter) {
		a.searchURL = searchURL
		a.fetchURL = fetchURL
	}
}

// WithClient overrides the HTTP client.
func WithClient(client *transport.Client) Option {
	return func(a *Adapter) {
		a.client = client
	}
}

// New creates a PubMed adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		searchURL: DefaultSearchURL,
		fetchURL:  DefaultFetchURL,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		perSecond := float64(anonymousRate)
		if a.apiKey != "" {
			perSecond = keyedRate
		}
		a.client = transport.New(transport.WithRateLimit(perSecond, 1))
	}
	return a
}

// ID implements sources.Source.
func (a *Adapter) ID() sources.ID {
	return sources.PubMedID
}

// ValidateParams implements sources.Source. PubMed accepts a restricted set
// of sort orders.
func (a *Adapter) ValidateParams(query string, opts *sources.Options) error {
	if opts.Sort != "" && !slices.Contains(validSorts, opts.Sort) {
		return errors.NewValidationError("sort", opts.Sort,
			"must be one of "+strings.Join(validSorts, ", "))
	}
	return nil
}

// esearchResponse is the JSON envelope of an ESearch call.
type esearchResponse struct {
	Result struct {
		Count    string   `json:"count"`
		WebEnv   string   `json:"webenv"`
		QueryKey string   `json:"querykey"`
		IDList   []string `json:"idlist"`
	} `json:"esearchresult"`
}

// FetchRaw implements sources.Source. It resolves the query to PMIDs via
// ESearch and hydrates them via EFetch.
func (a *Adapter) FetchRaw(ctx context.Context, query string, opts *sources.Options) ([]sources.RawHit, sources.Meta, error) {
	meta := sources.Meta{Source: a.ID(), Query: query}

	es, err := a.esearch(ctx, query, opts)
	if err != nil {
		return nil, meta, err
	}
	if total, err := strconv.Atoi(es.Result.Count); err == nil {
		meta.TotalAvailable = total
	}
	if len(es.Result.IDList) == 0 {
		return nil, meta, nil
	}

	articles, err := a.efetch(ctx, es)
	if err != nil {
		return nil, meta, err
	}

	hits := make([]sources.RawHit, 0, len(articles))
	for i := range articles {
		hits = append(hits, articles[i])
	}
	return hits, meta, nil
}

func (a *Adapter) esearch(ctx context.Context, query string, opts *sources.Options) (*esearchResponse, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retstart", "0")
	params.Set("retmax", strconv.Itoa(opts.NumResults))
	params.Set("retmode", "json")
	params.Set("usehistory", "y")
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	if opts.Field != "" {
		params.Set("field", opts.Field)
	}
	if opts.Year != "" {
		start, end := sources.YearBounds(opts.Year)
		if start == 0 {
			start = 1000
		}
		if end == 0 {
			end = time.Now().Year()
		}
		params.Set("datetype", "edat")
		params.Set("mindate", strconv.Itoa(start))
		params.Set("maxdate", strconv.Itoa(end))
	}
	if a.apiKey != "" {
		params.Set("api_key", a.apiKey)
	}

	endpoint := a.searchURL + "?" + params.Encode()
	resp, err := a.client.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapNetwork(a.ID().String(), a.searchURL, err)
	}

	var es esearchResponse
	if err := transport.DecodeJSON(resp, a.ID().String(), &es); err != nil {
		return nil, err
	}
	return &es, nil
}

func (a *Adapter) efetch(ctx context.Context, es *esearchResponse) ([]pubmedArticle, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("retmode", "xml")
	// The history server avoids resending long PMID lists.
	if es.Result.WebEnv != "" && es.Result.QueryKey != "" {
		params.Set("WebEnv", es.Result.WebEnv)
		params.Set("query_key", es.Result.QueryKey)
		params.Set("retstart", "0")
		params.Set("retmax", strconv.Itoa(len(es.Result.IDList)))
	} else {
		params.Set("id", strings.Join(es.Result.IDList, ","))
	}
	if a.apiKey != "" {
		params.Set("api_key", a.apiKey)
	}

	endpoint := a.fetchURL + "?" + params.Encode()
	resp, err := a.client.Get(ctx, endpoint)
	if err != nil {
		return nil, errors.WrapNetwork(a.ID().String(), a.fetchURL, err)
	}

	var set articleSet
	if err := transport.DecodeXML(resp, a.ID().String(), &set); err != nil {
		return nil, err
	}
	return set.Articles, nil
}

// Normalize implements sources.Source, mapping EFetch article XML into
// canonical records.
func (a *Adapter) Normalize(hits []sources.RawHit) ([]literature.Record, error) {
	records := make([]literature.Record, 0, len(hits))
	for _, hit := range hits {
		article, ok := hit.(pubmedArticle)
		if !ok {
			return nil, errors.NewFormatError(a.ID().String(), "xml",
				fmt.Sprintf("unexpected hit type %T", hit), nil)
		}
		records = append(records, a.toRecord(article))
	}
	return records, nil
}

func (a *Adapter) toRecord(article pubmedArticle) literature.Record {
	med := article.MedlineCitation

	rec := literature.Record{
		Title:    strings.TrimSpace(med.Article.Title),
		Abstract: strings.TrimSpace(strings.Join(med.Article.Abstract.Text, "\n")),
		Venue: literature.Venue{
			Name:            med.Article.Journal.Title,
			Type:            literature.VenueJournal,
			ISOAbbreviation: med.Article.Journal.ISOAbbreviation,
		},
		Publication: literature.Publication{
			Volume: med.Article.Journal.JournalIssue.Volume,
			Issue:  med.Article.Journal.JournalIssue.Issue,
		},
		Provenance: literature.Provenance{
			ContributingSources: []string{a.ID().String()},
		},
	}

	if len(med.Article.Language) > 0 {
		rec.Language = med.Article.Language[0]
	}

	for _, issn := range med.Article.Journal.ISSN {
		switch issn.Type {
		case "Print":
			rec.Venue.ISSNPrint = issn.Value
		case "Electronic":
			rec.Venue.ISSNElectronic = issn.Value
		}
	}

	if pages := med.Article.Pagination.MedlinePgn; pages != "" {
		rec.Publication.PageRange = pages
		if start, end, found := strings.Cut(pages, "-"); found {
			rec.Publication.StartPage = start
			rec.Publication.EndPage = end
		} else {
			rec.Publication.StartPage = pages
		}
	}

	for i, au := range med.Article.AuthorList.Authors {
		name := strings.TrimSpace(au.ForeName + " " + au.LastName)
		if name == "" {
			continue
		}
		author := literature.Author{
			FullName: name,
			LastName: au.LastName,
			ForeName: au.ForeName,
			Order:    i + 1,
		}
		if len(au.Affiliations) > 0 {
			author.Affiliation = au.Affiliations[0].Affiliation
		}
		for _, id := range au.Identifiers {
			if id.Source == "ORCID" {
				author.ORCID = id.Value
			}
		}
		rec.Authors = append(rec.Authors, author)
	}
	rec.RenumberAuthors()

	doi := a.findDOI(article)
	if doi != "" {
		rec.PrimaryDOI = doi
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.DOI,
			Value:     doi,
			IsPrimary: true,
		})
	}
	if pmid := strings.TrimSpace(med.PMID); pmid != "" {
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.PMID,
			Value:     pmid,
			IsPrimary: doi == "",
		})
	}

	if date := bestHistoryDate(article.PubmedData.History.Dates); date != "" {
		rec.PublicationDate = date
		if t, ok := literature.ParseDate(date); ok {
			rec.PublicationYear = t.Year()
		}
	}

	for _, heading := range med.MeshHeadings.Headings {
		if heading.Descriptor.Name == "" {
			continue
		}
		rec.Categories = append(rec.Categories, literature.Category{
			Name:         heading.Descriptor.Name,
			Type:         "mesh",
			IsMajorTopic: heading.Descriptor.MajorTopic == "Y",
		})
	}

	for _, pt := range med.Article.PublicationTypes.Types {
		if pt.Name == "" {
			continue
		}
		rec.PublicationTypes = append(rec.PublicationTypes, literature.PublicationType{
			Name:       pt.Name,
			SourceType: a.ID().String(),
		})
	}

	return rec
}

// findDOI prefers the PubmedData ArticleId list and falls back to a validated
// ELocationID.
func (a *Adapter) findDOI(article pubmedArticle) string {
	for _, id := range article.PubmedData.ArticleIDs.IDs {
		if id.Type == "doi" && strings.TrimSpace(id.Value) != "" {
			return strings.TrimSpace(id.Value)
		}
	}
	for _, loc := range article.MedlineCitation.Article.ELocationIDs {
		if loc.Type == "doi" && loc.Valid != "N" && strings.TrimSpace(loc.Value) != "" {
			return strings.TrimSpace(loc.Value)
		}
	}
	return ""
}

var monthAbbrevs = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// bestHistoryDate picks the publication date from the article history,
// preferring the "pubmed" status entry over "entrez".
func bestHistoryDate(dates []pubMedPubDate) string {
	var chosen *pubMedPubDate
	for i := range dates {
		if dates[i].Status == "pubmed" {
			chosen = &dates[i]
			break
		}
		if dates[i].Status == "entrez" && chosen == nil {
			chosen = &dates[i]
		}
	}
	if chosen == nil || chosen.Year == "" {
		return ""
	}

	date := chosen.Year
	month := chosen.Month
	if idx := slices.Index(monthAbbrevs, month); idx >= 0 {
		month = strconv.Itoa(idx + 1)
	}
	if month != "" {
		if len(month) == 1 {
			month = "0" + month
		}
		date += "-" + month
		if day := chosen.Day; day != "" {
			if len(day) == 1 {
				day = "0" + day
			}
			date += "-" + day
		}
	}
	if _, ok := literature.ParseDate(date); !ok {
		logging.Debug().Str("date", date).Msg("discarding unparsable history date")
		return chosen.Year
	}
	return date
}
