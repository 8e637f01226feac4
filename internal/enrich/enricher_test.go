package enrich

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
)

type scriptedCompleter struct {
	// answers are consumed in call order.
	answers []string
	fail    bool
	calls   int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ ports.CompletionRequest) (string, error) {
	s.calls++
	if s.fail {
		return "", fmt.Errorf("backend down")
	}
	if len(s.answers) == 0 {
		return "", fmt.Errorf("script exhausted")
	}
	next := s.answers[0]
	s.answers = s.answers[1:]
	return next, nil
}

type fakeSearcher struct {
	hits    []domain.RelatedHit
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int) ([]domain.RelatedHit, error) {
	f.queries = append(f.queries, query)
	return f.hits, nil
}

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func scoredItem(id, title string) domain.ContentItem {
	score := 8.0
	return domain.ContentItem{
		ID:       id,
		Source:   domain.SourceHackerNews,
		Title:    title,
		URL:      "https://example.com/" + id,
		Score:    &score,
		Summary:  "summary of " + title,
		Metadata: domain.Metadata{},
	}
}

func fast() Option { return WithRetryIntervals(time.Millisecond, time.Millisecond) }

func TestEnrichSearchStrategy(t *testing.T) {
	t.Parallel()

	client := &scriptedCompleter{answers: []string{
		`{"queries": ["raft consensus protocol"]}`,
		`{"whats_new": "A new release shipped.", "why_it_matters": "It changes replication.", "key_details": "It requires Go 1.24.", "background": "Raft is a consensus protocol.", "community_discussion": "Commenters are enthusiastic."}`,
	}}
	searcher := &fakeSearcher{hits: []domain.RelatedHit{
		{Title: "Raft explained", URL: "https://example.org/raft", Source: "hackernews", Score: 120},
	}}

	items := []domain.ContentItem{scoredItem("a", "Consensus Library 2.0")}
	e := New(client, searcher, StrategySearch, 5, 1024, testLogger(), fast())

	results := e.Enrich(context.Background(), items)
	if results[0].Err != nil {
		t.Fatalf("enrich failed: %v", results[0].Err)
	}

	if len(searcher.queries) != 1 || searcher.queries[0] != "raft consensus protocol" {
		t.Errorf("expected concept query to reach searcher, got %v", searcher.queries)
	}

	background := items[0].Metadata.Str("background")
	for _, want := range []string{"A new release shipped.", "It changes replication.", "Raft is a consensus protocol."} {
		if !strings.Contains(background, want) {
			t.Errorf("background missing %q:\n%s", want, background)
		}
	}
	if items[0].Metadata.Str("community_discussion") != "Commenters are enthusiastic." {
		t.Errorf("community synopsis not stored: %q", items[0].Metadata.Str("community_discussion"))
	}
}

func TestEnrichSearchOmitsEmptyBackground(t *testing.T) {
	t.Parallel()

	client := &scriptedCompleter{answers: []string{
		`{"queries": []}`,
		`{"whats_new": "", "why_it_matters": "", "key_details": "", "background": "", "community_discussion": ""}`,
	}}

	items := []domain.ContentItem{scoredItem("a", "Self-explanatory News")}
	e := New(client, &fakeSearcher{}, StrategySearch, 5, 1024, testLogger(), fast())

	e.Enrich(context.Background(), items)
	if items[0].Metadata.Has("background") {
		t.Error("self-explanatory item must not gain a background key")
	}
	if items[0].Metadata.Has("community_discussion") {
		t.Error("empty community synopsis must be omitted")
	}
}

func TestEnrichRelatedStrategy(t *testing.T) {
	t.Parallel()

	client := &scriptedCompleter{answers: []string{
		`{"background": "This continues a long-running effort.", "related_context": "Earlier attempts failed at scale."}`,
	}}
	searcher := &fakeSearcher{hits: []domain.RelatedHit{
		{Title: "Own story", URL: "https://example.com/a/", Source: "reddit", Score: 10},
		{Title: "Earlier attempt", URL: "https://example.org/old", Source: "hackernews", Score: 90},
	}}

	items := []domain.ContentItem{scoredItem("a", "Big Migration")}
	e := New(client, searcher, StrategyRelated, 5, 1024, testLogger(), fast())

	results := e.Enrich(context.Background(), items)
	if results[0].Err != nil {
		t.Fatalf("enrich failed: %v", results[0].Err)
	}

	if items[0].Metadata.Str("background") != "This continues a long-running effort." {
		t.Errorf("background not stored: %q", items[0].Metadata.Str("background"))
	}

	stories := items[0].Metadata.Items("related_stories")
	if len(stories) != 1 {
		t.Fatalf("own-URL hit must be excluded, got %v", stories)
	}
	if !strings.Contains(stories[0], "Earlier attempt") || !strings.Contains(stories[0], "hackernews") {
		t.Errorf("citation missing title or source: %q", stories[0])
	}
}

func TestEnrichFailureIsolation(t *testing.T) {
	t.Parallel()

	client := &scriptedCompleter{fail: true}
	items := []domain.ContentItem{scoredItem("a", "Doomed"), scoredItem("b", "Also Doomed")}
	e := New(client, &fakeSearcher{}, StrategyRelated, 5, 1024, testLogger(), fast())

	results := e.Enrich(context.Background(), items)
	if len(results) != 2 {
		t.Fatalf("expected both items processed, got %d", len(results))
	}
	for i, r := range results {
		if r.Err == nil {
			t.Errorf("result %d should carry the failure", i)
		}
	}
	for _, item := range items {
		if item.Metadata.Has("background") {
			t.Error("failed enrichment must not add metadata")
		}
	}
}
