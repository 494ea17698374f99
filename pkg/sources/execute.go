package sources

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/citemap/citemap/pkg/errors"
	"github.com/citemap/citemap/pkg/literature"
	"github.com/citemap/citemap/pkg/logging"
)

// Meta describes one source fetch: how many hits came back, how long the
// round trip took and any backend-reported totals.
type Meta struct {
	Source         ID            `json:"source" yaml:"source"`
	Query          string        `json:"query" yaml:"query"`
	HitCount       int           `json:"hit_count" yaml:"hit_count"`
	TotalAvailable int           `json:"total_available,omitempty" yaml:"total_available,omitempty"`
	Duration       time.Duration `json:"duration" yaml:"duration"`
	RetrievedAt    time.Time     `json:"retrieved_at" yaml:"retrieved_at"`
}

// Execute runs the adapter template: validate parameters, fetch raw hits,
// normalize them into records. The full round trip is timed into Meta.
// Records without a title are dropped with a logged warning. Failures
// surface as one of the taxonomy kinds: *errors.ValidationError,
// *errors.NetworkError, *errors.FormatError or *errors.SearchError.
func Execute(ctx context.Context, src Source, query string, opts *Options) ([]literature.Record, Meta, error) {
	if opts == nil {
		opts = NewOptions()
	}

	meta := Meta{
		Source:      src.ID(),
		Query:       query,
		RetrievedAt: time.Now(),
	}

	if err := ValidateQuery(query); err != nil {
		return nil, meta, err
	}
	if err := opts.Validate(); err != nil {
		return nil, meta, err
	}
	if err := src.ValidateParams(query, opts); err != nil {
		return nil, meta, classify(src.ID(), query, err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	log := logging.FromContext(ctx)
	start := time.Now()

	hits, fetchMeta, err := src.FetchRaw(ctx, query, opts)
	if err != nil {
		meta.Duration = time.Since(start)
		return nil, meta, classify(src.ID(), query, err)
	}
	meta.HitCount = len(hits)
	meta.TotalAvailable = fetchMeta.TotalAvailable

	records, err := src.Normalize(hits)
	meta.Duration = time.Since(start)
	if err != nil {
		return nil, meta, classify(src.ID(), query, err)
	}

	kept := records[:0]
	for i := range records {
		if records[i].Title == "" {
			log.Warn().
				Str("source", src.ID().String()).
				Msg("dropping record without title")
			continue
		}
		kept = append(kept, records[i])
	}

	log.Debug().
		Str("source", src.ID().String()).
		Int("hits", meta.HitCount).
		Int("records", len(kept)).
		Dur("duration", meta.Duration).
		Msg("source fetch completed")

	return kept, meta, nil
}

// classify ensures every adapter failure carries a taxonomy kind; anything
// unrecognized becomes a SearchError.
func classify(source ID, query string, err error) error {
	var (
		validationErr *errors.ValidationError
		networkErr    *errors.NetworkError
		formatErr     *errors.FormatError
		apiErr        *errors.APIError
		searchErr     *errors.SearchError
	)
	switch {
	case stderrors.As(err, &validationErr),
		stderrors.As(err, &networkErr),
		stderrors.As(err, &formatErr),
		stderrors.As(err, &apiErr),
		stderrors.As(err, &searchErr):
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewNetworkError(source.String(), "", err)
	default:
		return errors.NewSearchError(source.String(), query, err)
	}
}
