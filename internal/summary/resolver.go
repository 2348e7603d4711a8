package summary

import (
	"context"
	"fmt"

	"github.com/david/contract-finder/internal/models"
	"github.com/david/contract-finder/internal/value"
)

// AcquisitionError is the single failure surfaced when a summary cannot be
// produced, whatever the downstream cause (fetch failure, generation failure,
// unusable source). It is not retried automatically and never cached.
type AcquisitionError struct {
	OpportunityID string
	Err           error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("failed to generate summary for %s: %v", e.OpportunityID, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// Generator is the remote summary-generation collaborator.
type Generator interface {
	GenerateFromLinks(ctx context.Context, links []string) (value.Value, error)
	GenerateFromText(ctx context.Context, text string) (value.Value, error)
}

// DescriptionFetcher retrieves the single description resource of an
// opportunity that carries no document links.
type DescriptionFetcher interface {
	FetchDescriptionText(ctx context.Context, source string) (string, error)
}

// Resolver chooses an acquisition strategy per opportunity and produces a
// normalized summary document, populating the cache on first success.
type Resolver struct {
	gen     Generator
	fetcher DescriptionFetcher
	cache   *Cache
}

func NewResolver(gen Generator, fetcher DescriptionFetcher, cache *Cache) *Resolver {
	return &Resolver{gen: gen, fetcher: fetcher, cache: cache}
}

// Resolve produces the summary document for opp.
//
// Strategy selection is by source shape: opportunities with resource links go
// through the document-corpus strategy (the full link list in one call);
// everything else goes through the inline-description strategy (fetch the
// description resource, analyze its text). The five meta fields are stamped
// on top of the model output, then the result is offered to the cache with
// first-write-wins semantics. When another resolution already won, the local
// value is still returned; callers needing the authoritative copy re-read
// the cache.
func (r *Resolver) Resolve(ctx context.Context, opp *models.Opportunity) (Document, error) {
	var raw value.Value
	var err error

	if len(opp.ResourceLinks) > 0 {
		raw, err = r.gen.GenerateFromLinks(ctx, opp.ResourceLinks)
	} else {
		raw, err = r.resolveInline(ctx, opp)
	}
	if err != nil {
		return Document{}, &AcquisitionError{OpportunityID: opp.ID, Err: err}
	}
	if raw.Kind() != value.KindMap || raw.Len() == 0 {
		return Document{}, &AcquisitionError{OpportunityID: opp.ID, Err: fmt.Errorf("empty analysis result")}
	}

	merged := mergeMeta(raw, opp)

	if _, err := r.cache.PutIfAbsent(ctx, opp.ID, merged); err != nil {
		return Document{}, &AcquisitionError{OpportunityID: opp.ID, Err: err}
	}

	return merged, nil
}

func (r *Resolver) resolveInline(ctx context.Context, opp *models.Opportunity) (value.Value, error) {
	if opp.DescriptionSource == "" {
		return value.Value{}, fmt.Errorf("opportunity has no usable document source")
	}
	text, err := r.fetcher.FetchDescriptionText(ctx, opp.DescriptionSource)
	if err != nil {
		return value.Value{}, err
	}
	return r.gen.GenerateFromText(ctx, text)
}
