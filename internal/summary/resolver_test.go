package summary

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/david/contract-finder/internal/models"
	"github.com/david/contract-finder/internal/store"
	"github.com/david/contract-finder/internal/value"
)

type fakeGenerator struct {
	linkCalls [][]string
	textCalls []string
	result    value.Value
	err       error
}

func (f *fakeGenerator) GenerateFromLinks(ctx context.Context, links []string) (value.Value, error) {
	f.linkCalls = append(f.linkCalls, links)
	return f.result, f.err
}

func (f *fakeGenerator) GenerateFromText(ctx context.Context, text string) (value.Value, error) {
	f.textCalls = append(f.textCalls, text)
	return f.result, f.err
}

type fakeFetcher struct {
	sources []string
	text    string
	err     error
}

func (f *fakeFetcher) FetchDescriptionText(ctx context.Context, source string) (string, error) {
	f.sources = append(f.sources, source)
	return f.text, f.err
}

func analysisResult() value.Value {
	v := value.NewMap()
	v.Set("deliverables", value.List(value.Str("report")))
	v.Set("agency", value.Str("model guess"))
	return v
}

func TestResolveUsesLinkStrategyWhenLinksPresent(t *testing.T) {
	gen := &fakeGenerator{result: analysisResult()}
	fetcher := &fakeFetcher{text: "unused"}
	cache, _ := NewCache(store.NewMemory())
	r := NewResolver(gen, fetcher, cache)

	opp := &models.Opportunity{
		ID:                "op-1",
		Title:             "Widgets",
		Agency:            "GSA",
		ResourceLinks:     []string{"https://sam.gov/a", "https://sam.gov/b"},
		DescriptionSource: "https://api.sam.gov/desc",
	}

	doc, err := r.Resolve(context.Background(), opp)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if len(gen.linkCalls) != 1 || len(gen.textCalls) != 0 || len(fetcher.sources) != 0 {
		t.Fatalf("expected exactly one link call and no inline path, got links=%d texts=%d fetches=%d",
			len(gen.linkCalls), len(gen.textCalls), len(fetcher.sources))
	}
	if len(gen.linkCalls[0]) != 2 {
		t.Fatalf("expected full link list in one call, got %v", gen.linkCalls[0])
	}

	if got, _ := doc.Get(MetaID); got.String() != "op-1" {
		t.Fatalf("expected stamped id, got %q", got.String())
	}
}

func TestResolveFallsBackToInlineDescription(t *testing.T) {
	gen := &fakeGenerator{result: analysisResult()}
	fetcher := &fakeFetcher{text: "description body"}
	cache, _ := NewCache(store.NewMemory())
	r := NewResolver(gen, fetcher, cache)

	opp := &models.Opportunity{
		ID:                "op-2",
		Title:             "Gadgets",
		DescriptionSource: "https://api.sam.gov/desc/op-2",
	}

	if _, err := r.Resolve(context.Background(), opp); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if len(gen.linkCalls) != 0 {
		t.Fatal("link strategy must not run without resource links")
	}
	if len(fetcher.sources) != 1 || fetcher.sources[0] != opp.DescriptionSource {
		t.Fatalf("expected one description fetch, got %v", fetcher.sources)
	}
	if len(gen.textCalls) != 1 || gen.textCalls[0] != "description body" {
		t.Fatalf("expected fetched text forwarded, got %v", gen.textCalls)
	}
}

func TestResolveMetaStampsOverModelOutput(t *testing.T) {
	gen := &fakeGenerator{result: analysisResult()}
	cache, _ := NewCache(store.NewMemory())
	r := NewResolver(gen, &fakeFetcher{}, cache)

	opp := &models.Opportunity{
		ID:            "op-3",
		Title:         "Widgets",
		Agency:        "Department of Energy",
		Link:          "https://sam.gov/opp/op-3",
		ClosingDate:   "2026-10-01",
		ResourceLinks: []string{"https://sam.gov/a"},
	}

	doc, err := r.Resolve(context.Background(), opp)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	agency, _ := doc.Get(MetaAgency)
	if agency.String() != "Department of Energy" {
		t.Fatalf("record agency must override model output, got %q", agency.String())
	}
	link, _ := doc.Get(MetaLink)
	if link.String() != opp.Link {
		t.Fatalf("unexpected link: %q", link.String())
	}
	closing, _ := doc.Get(MetaClosingDate)
	if closing.String() != "2026-10-01" {
		t.Fatalf("unexpected closing date: %q", closing.String())
	}

	// Missing meta on the record becomes null, never an empty string.
	bare := &models.Opportunity{ID: "op-4", Title: "Bare", ResourceLinks: []string{"x"}}
	gen.result = analysisResult()
	doc, err = r.Resolve(context.Background(), bare)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if v, _ := doc.Get(MetaLink); v.Kind() != value.KindNull {
		t.Fatalf("expected null link, got kind %v", v.Kind())
	}
	if v, _ := doc.Get(MetaAgency); v.String() != "N/A" {
		t.Fatalf("expected N/A agency fallback, got %q", v.String())
	}
}

func TestResolveEmptyResultIsAcquisitionErrorAndNotCached(t *testing.T) {
	gen := &fakeGenerator{result: value.NewMap()}
	cache, _ := NewCache(store.NewMemory())
	r := NewResolver(gen, &fakeFetcher{}, cache)

	opp := &models.Opportunity{ID: "op-5", ResourceLinks: []string{"x"}}
	_, err := r.Resolve(context.Background(), opp)

	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Fatalf("expected AcquisitionError, got %v", err)
	}
	if acqErr.OpportunityID != "op-5" {
		t.Fatalf("unexpected opportunity id: %q", acqErr.OpportunityID)
	}

	if _, hit, _ := cache.Get(context.Background(), "op-5"); hit {
		t.Fatal("failed resolution must not populate the cache")
	}
}

func TestResolveGenerationFailureWrapsCause(t *testing.T) {
	cause := fmt.Errorf("backend unavailable")
	gen := &fakeGenerator{err: cause}
	cache, _ := NewCache(store.NewMemory())
	r := NewResolver(gen, &fakeFetcher{}, cache)

	opp := &models.Opportunity{ID: "op-6", ResourceLinks: []string{"x"}}
	_, err := r.Resolve(context.Background(), opp)
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestResolveWithoutLinksOrDescriptionFails(t *testing.T) {
	gen := &fakeGenerator{result: analysisResult()}
	fetcher := &fakeFetcher{}
	cache, _ := NewCache(store.NewMemory())
	r := NewResolver(gen, fetcher, cache)

	opp := &models.Opportunity{ID: "op-7"}
	if _, err := r.Resolve(context.Background(), opp); err == nil {
		t.Fatal("expected error for opportunity with no usable source")
	}
	if len(fetcher.sources)+len(gen.linkCalls)+len(gen.textCalls) != 0 {
		t.Fatal("no collaborator should be called without a source")
	}
}

func TestResolveLostRaceReturnsLocalValue(t *testing.T) {
	ctx := context.Background()
	durable := store.NewMemory()
	cache, _ := NewCache(durable)

	prior := value.NewMap()
	prior.Set("scope", value.Str("prior"))
	if won, _ := cache.PutIfAbsent(ctx, "op-8", prior); !won {
		t.Fatal("seed put should win")
	}

	// A second resolver with its own mirror races against the seeded entry.
	late, _ := NewCache(durable)
	gen := &fakeGenerator{result: analysisResult()}
	r := NewResolver(gen, &fakeFetcher{}, late)

	opp := &models.Opportunity{ID: "op-8", Title: "Late", ResourceLinks: []string{"x"}}
	doc, err := r.Resolve(ctx, opp)
	if err != nil {
		t.Fatalf("lost race must not fail the resolve: %v", err)
	}
	if title, _ := doc.Get(MetaTitle); title.String() != "Late" {
		t.Fatal("caller should receive its locally merged document")
	}

	// The durable winner is untouched.
	fresh, _ := NewCache(durable)
	got, hit, _ := fresh.Get(ctx, "op-8")
	if !hit || !value.Equal(got, prior) {
		t.Fatal("durable entry must remain the first write")
	}
}
