// Package wos adapts the Web of Science Starter API to the sources.Source
// contract. WoS enforces strict per-key daily quotas, so the adapter draws its
// credentials from a rotating key pool and retires keys the backend reports as
// spent.
package wos

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/citemap/citemap/internal/keypool"
	"github.com/citemap/citemap/internal/transport"
	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/identifiers"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/logging"
	"github.com/citemap/citemap/pkg/sources"
)

// DefaultDocumentsURL is the Starter API documents endpoint.
const DefaultDocumentsURL = "https://api.clarivate.com/apis/wos-starter/v1/documents"

// The Starter API caps a page at 50 documents.
const pageSize = 50

// DefaultSort orders by relevance, descending.
const DefaultSort = "RS+D"

// Sort fields are "<field>+<A|D>" pairs over load date, publication year,
// relevance and times cited.
var sortRe = regexp.MustCompile(`^(LD|PY|RS|TC)\+[AD](,(LD|PY|RS|TC)\+[AD])*$`)

var monthAbbrevs = map[string]string{
	"JAN": "01", "FEB": "02", "MAR": "03", "APR": "04",
	"MAY": "05", "JUN": "06", "JUL": "07", "AUG": "08",
	"SEP": "09", "OCT": "10", "NOV": "11", "DEC": "12",
}

// Adapter implements sources.Source against the WoS Starter API.
type Adapter struct {
	client       *transport.Client
	keys         *keypool.Pool
	documentsURL string
	database     string
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithEndpoint overrides the documents endpoint, for tests.
func WithEndpoint(documentsURL string) Option {
	return func(a *Adapter) {
		a.documentsURL = documentsURL
	}
}

// WithDatabase selects the WoS database collection, default WOK.
func WithDatabase(db string) Option {
	return func(a *Adapter) {
		a.database = db
	}
}

// WithClient overrides the HTTP client.
func WithClient(client *transport.Client) Option {
	return func(a *Adapter) {
		a.client = client
	}
}

// New creates a WoS adapter drawing credentials from the given key pool.
func New(keys *keypool.Pool, opts ...Option) *Adapter {
	a := &Adapter{
		keys:         keys,
		documentsURL: DefaultDocumentsURL,
		database:     "WOK",
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.client == nil {
		a.client = transport.New(transport.WithRateLimit(1, 1))
	}
	return a
}

// ID implements sources.Source.
func (a *Adapter) ID() sources.ID {
	return sources.WoSID
}

// ValidateParams implements sources.Source.
func (a *Adapter) ValidateParams(query string, opts *sources.Options) error {
	if opts.Sort != "" && !sortRe.MatchString(opts.Sort) {
		return errors.NewValidationError("sort", opts.Sort,
			"must be comma-separated <LD|PY|RS|TC>+<A|D> pairs")
	}
	return nil
}

// documentsResponse is the JSON envelope of a documents call.
type documentsResponse struct {
	Metadata struct {
		Total int `json:"total"`
	} `json:"metadata"`
	Hits []document `json:"hits"`
}

type document struct {
	UID         string `json:"uid"`
	Title       string `json:"title"`
	Abstract    string `json:"abstract"`
	Types       []string `json:"types"`
	Identifiers struct {
		DOI   string `json:"doi"`
		PMID  string `json:"pmid"`
		ISSN  string `json:"issn"`
		EISSN string `json:"eissn"`
	} `json:"identifiers"`
	Names struct {
		Authors []struct {
			DisplayName string `json:"displayName"`
		} `json:"authors"`
	} `json:"names"`
	Source struct {
		SourceTitle  string `json:"sourceTitle"`
		PublishYear  int    `json:"publishYear"`
		PublishMonth string `json:"publishMonth"`
		Volume       string `json:"volume"`
		Issue        string `json:"issue"`
		Pages        struct {
			Range string `json:"range"`
		} `json:"pages"`
	} `json:"source"`
}

// FetchRaw implements sources.Source, paging through documents until the
// requested count or the backend total is reached.
func (a *Adapter) FetchRaw(ctx context.Context, query string, opts *sources.Options) ([]sources.RawHit, sources.Meta, error) {
	meta := sources.Meta{Source: a.ID(), Query: query}

	q := "TS=(" + query + ")"
	if opts.Year != "" {
		q += " AND PY=(" + yearClause(opts.Year) + ")"
	}
	sort := opts.Sort
	if sort == "" {
		sort = DefaultSort
	}

	var hits []sources.RawHit
	for page := 1; len(hits) < opts.NumResults; page++ {
		limit := min(opts.NumResults-len(hits), pageSize)
		docs, total, err := a.fetchPage(ctx, q, sort, limit, page)
		if err != nil {
			return nil, meta, err
		}
		meta.TotalAvailable = total

		for i := range docs {
			hits = append(hits, docs[i])
		}
		if len(docs) < limit || len(hits) >= total {
			break
		}
	}
	return hits, meta, nil
}

func (a *Adapter) fetchPage(ctx context.Context, q, sort string, limit, page int) ([]document, int, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	params.Set("sortField", sort)
	params.Set("db", a.database)
	endpoint := a.documentsURL + "?" + params.Encode()

	// Keys the backend rejects with 429 are retired from the pool; the pool
	// errors out once every key is spent.
	for {
		key, err := a.keys.Next(ctx)
		if err != nil {
			return nil, 0, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, 0, err
		}
		req.Header.Set("X-ApiKey", key)

		resp, err := a.client.Do(ctx, req)
		if err != nil {
			return nil, 0, errors.WrapNetwork(a.ID().String(), a.documentsURL, err)
		}

		var docs documentsResponse
		if err := transport.DecodeJSON(resp, a.ID().String(), &docs); err != nil {
			if errors.IsRateLimited(err) {
				logging.Warn().Str("source", a.ID().String()).Msg("API key quota spent, rotating")
				a.keys.Exhaust(key)
				continue
			}
			return nil, 0, err
		}
		return docs.Hits, docs.Metadata.Total, nil
	}
}

// yearClause renders a year filter as a WoS PY range.
func yearClause(year string) string {
	start, end := sources.YearBounds(year)
	switch {
	case start == end:
		return strconv.Itoa(start)
	case start == 0:
		return "-" + strconv.Itoa(end)
	case end == 0:
		return strconv.Itoa(start) + "-"
	default:
		return fmt.Sprintf("%d-%d", start, end)
	}
}

// Normalize implements sources.Source. Documents without identifiers carry
// nothing to reconcile on and are skipped.
func (a *Adapter) Normalize(hits []sources.RawHit) ([]literature.Record, error) {
	records := make([]literature.Record, 0, len(hits))
	for _, hit := range hits {
		doc, ok := hit.(document)
		if !ok {
			return nil, errors.NewFormatError(a.ID().String(), "json",
				fmt.Sprintf("unexpected hit type %T", hit), nil)
		}
		if doc.Identifiers == (document{}.Identifiers) && doc.UID == "" {
			continue
		}
		records = append(records, a.toRecord(doc))
	}
	return records, nil
}

func (a *Adapter) toRecord(doc document) literature.Record {
	rec := literature.Record{
		Title:    strings.TrimSpace(doc.Title),
		Abstract: strings.TrimSpace(doc.Abstract),
		Venue: literature.Venue{
			Name:           doc.Source.SourceTitle,
			Type:           literature.VenueJournal,
			ISSNPrint:      doc.Identifiers.ISSN,
			ISSNElectronic: doc.Identifiers.EISSN,
		},
		Publication: literature.Publication{
			Volume: doc.Source.Volume,
			Issue:  doc.Source.Issue,
		},
		Provenance: literature.Provenance{
			ContributingSources: []string{a.ID().String()},
		},
	}

	if pages := doc.Source.Pages.Range; pages != "" {
		rec.Publication.PageRange = pages
		if start, end, found := strings.Cut(pages, "-"); found {
			rec.Publication.StartPage = start
			rec.Publication.EndPage = end
		}
	}

	for i, au := range doc.Names.Authors {
		name := strings.TrimSpace(au.DisplayName)
		if name == "" {
			continue
		}
		rec.Authors = append(rec.Authors, literature.Author{
			FullName: name,
			Order:    i + 1,
		})
	}
	rec.RenumberAuthors()

	doi := strings.TrimSpace(doc.Identifiers.DOI)
	if doi != "" {
		rec.PrimaryDOI = doi
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.DOI,
			Value:     doi,
			IsPrimary: true,
		})
	}
	if pmid := strings.TrimSpace(doc.Identifiers.PMID); pmid != "" {
		rec.AddIdentifier(literature.Identifier{
			Type:  identifiers.PMID,
			Value: pmid,
		})
	}
	if doc.UID != "" {
		rec.AddIdentifier(literature.Identifier{
			Type:      identifiers.WoS,
			Value:     doc.UID,
			IsPrimary: doi == "",
		})
	}

	if doc.Source.PublishYear != 0 {
		rec.PublicationYear = doc.Source.PublishYear
		rec.PublicationDate = strconv.Itoa(doc.Source.PublishYear)
		if month := monthNumber(doc.Source.PublishMonth); month != "" {
			rec.PublicationDate += "-" + month
		}
	}

	for _, dt := range doc.Types {
		if dt == "" {
			continue
		}
		rec.PublicationTypes = append(rec.PublicationTypes, literature.PublicationType{
			Name:       dt,
			SourceType: a.ID().String(),
		})
	}

	return rec
}

// monthNumber converts WoS month spellings (NOV, NOV-DEC) to a two digit
// month, keeping the start of a range.
func monthNumber(month string) string {
	if month == "" {
		return ""
	}
	if start, _, found := strings.Cut(month, "-"); found {
		month = start
	}
	return monthAbbrevs[strings.ToUpper(month)]
}
