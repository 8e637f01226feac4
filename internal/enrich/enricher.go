// Package enrich runs the second model pass over retained items,
// attaching background and context text to their metadata.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ContentRadar/internal/domain"
	"ContentRadar/internal/infrastructure/llm"
	"ContentRadar/internal/ports"
)

const (
	// StrategySearch grounds the background text in web-search snippets
	// for concepts the model flags as needing explanation.
	StrategySearch = "search"
	// StrategyRelated grounds it in related-story hits from the search
	// collaborator and cites them in metadata.
	StrategyRelated = "related"

	maxConceptQueries = 3
	resultsPerQuery   = 3
	enrichTemperature = 0.4
	retryAttempts     = 3
	retryInitial      = 2 * time.Second
	retryMax          = 10 * time.Second
)

// ItemResult reports the outcome of enriching one item. On failure the
// item simply carries no enrichment keys; it is never dropped.
type ItemResult struct {
	ID  string
	Err error
}

// Enricher attaches background knowledge to already-scored items.
type Enricher struct {
	client     ports.Completer
	searcher   ports.Searcher
	log        *slog.Logger
	strategy   string
	maxRelated int
	maxTokens  int

	retryInitial time.Duration
	retryMax     time.Duration
}

// Option adjusts enricher behavior.
type Option func(*Enricher)

// WithRetryIntervals overrides backoff timing; tests shrink it.
func WithRetryIntervals(initial, max time.Duration) Option {
	return func(e *Enricher) {
		e.retryInitial = initial
		e.retryMax = max
	}
}

// New builds an enricher using the given strategy.
func New(client ports.Completer, searcher ports.Searcher, strategy string, maxRelated, maxTokens int, log *slog.Logger, opts ...Option) *Enricher {
	e := &Enricher{
		client:       client,
		searcher:     searcher,
		log:          log,
		strategy:     strategy,
		maxRelated:   maxRelated,
		maxTokens:    maxTokens,
		retryInitial: retryInitial,
		retryMax:     retryMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich processes items in place. Per-item failures are logged and
// isolated; only context cancellation stops the loop.
func (e *Enricher) Enrich(ctx context.Context, items []domain.ContentItem) []ItemResult {
	results := make([]ItemResult, 0, len(items))

	for i := range items {
		if ctx.Err() != nil {
			return results
		}

		item := &items[i]
		if item.Metadata == nil {
			item.Metadata = domain.Metadata{}
		}
		var err error
		switch e.strategy {
		case StrategyRelated:
			err = e.retried(ctx, func() error { return e.enrichRelated(ctx, item) })
		default:
			err = e.retried(ctx, func() error { return e.enrichSearch(ctx, item) })
		}

		if err != nil {
			e.log.Warn("enrichment failed, item proceeds without background",
				"item", item.ID, "error", err)
		}
		results = append(results, ItemResult{ID: item.ID, Err: err})
	}

	return results
}

func (e *Enricher) retried(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.retryInitial
	bo.MaxInterval = e.retryMax
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, retryAttempts-1), ctx))
}

// enrichSearch asks the model which concepts need explanation, grounds
// them via web search, and requests structured background text.
func (e *Enricher) enrichSearch(ctx context.Context, item *domain.ContentItem) error {
	queries, err := e.extractConcepts(ctx, item)
	if err != nil {
		return fmt.Errorf("extract concepts: %w", err)
	}

	webContext := e.collectSnippets(ctx, queries)

	response, err := e.client.Complete(ctx, ports.CompletionRequest{
		System:      enrichmentSystemPrompt,
		User:        buildEnrichmentPrompt(item, webContext),
		Temperature: enrichTemperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return fmt.Errorf("complete enrichment: %w", err)
	}

	var parsed struct {
		WhatsNew     string `json:"whats_new"`
		WhyItMatters string `json:"why_it_matters"`
		KeyDetails   string `json:"key_details"`
		Background   string `json:"background"`
		Community    string `json:"community_discussion"`
	}
	if err := llm.DecodeResponse(response, &parsed); err != nil {
		return err
	}

	// The narrative fields combine into one background entry; a model
	// that found nothing to explain yields no key at all.
	narrative := joinSentences(parsed.WhatsNew, parsed.WhyItMatters, parsed.KeyDetails, parsed.Background)
	if narrative != "" {
		item.Metadata["background"] = domain.Text(narrative)
	}
	if s := strings.TrimSpace(parsed.Community); s != "" {
		item.Metadata["community_discussion"] = domain.Text(s)
	}

	return nil
}

// extractConcepts returns up to three search queries for concepts the
// item assumes the reader knows. An empty list is a valid answer.
func (e *Enricher) extractConcepts(ctx context.Context, item *domain.ContentItem) ([]string, error) {
	response, err := e.client.Complete(ctx, ports.CompletionRequest{
		System:      conceptSystemPrompt,
		User:        buildConceptPrompt(item),
		Temperature: enrichTemperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Queries []string `json:"queries"`
	}
	if err := llm.DecodeResponse(response, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Queries) > maxConceptQueries {
		parsed.Queries = parsed.Queries[:maxConceptQueries]
	}
	return parsed.Queries, nil
}

// collectSnippets runs the bounded searches; the searcher degrades to
// empty results on failure, so this never errors.
func (e *Enricher) collectSnippets(ctx context.Context, queries []string) string {
	var lines []string
	for _, query := range queries {
		hits, err := e.searcher.Search(ctx, query, resultsPerQuery)
		if err != nil {
			e.log.Warn("search failed", "query", query, "error", err)
			continue
		}
		for _, hit := range hits {
			lines = append(lines, fmt.Sprintf("- %s (%s) %s", hit.Title, hit.Source, hit.URL))
		}
	}
	return strings.Join(lines, "\n")
}

// enrichRelated grounds the background text in related stories and
// stores the top hits verbatim for citation.
func (e *Enricher) enrichRelated(ctx context.Context, item *domain.ContentItem) error {
	hits, err := e.searcher.Search(ctx, item.Title, e.maxRelated+1)
	if err != nil {
		hits = nil
	}
	hits = excludeOwnURL(hits, item.URL)
	if len(hits) > e.maxRelated {
		hits = hits[:e.maxRelated]
	}

	response, err := e.client.Complete(ctx, ports.CompletionRequest{
		System:      relatedSystemPrompt,
		User:        buildRelatedPrompt(item, hits),
		Temperature: enrichTemperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil {
		return fmt.Errorf("complete related enrichment: %w", err)
	}

	var parsed struct {
		Background     string `json:"background"`
		RelatedContext string `json:"related_context"`
	}
	if err := llm.DecodeResponse(response, &parsed); err != nil {
		return err
	}

	if s := strings.TrimSpace(parsed.Background); s != "" {
		item.Metadata["background"] = domain.Text(s)
	}
	if s := strings.TrimSpace(parsed.RelatedContext); s != "" {
		item.Metadata["related_context"] = domain.Text(s)
	}
	if len(hits) > 0 {
		cites := make([]string, 0, len(hits))
		for _, hit := range hits {
			cites = append(cites, fmt.Sprintf("[%s](%s) (%s)", hit.Title, hit.URL, hit.Source))
		}
		item.Metadata["related_stories"] = domain.List(cites...)
	}

	return nil
}

func excludeOwnURL(hits []domain.RelatedHit, own string) []domain.RelatedHit {
	own = strings.TrimSuffix(own, "/")
	kept := hits[:0]
	for _, hit := range hits {
		if strings.TrimSuffix(hit.URL, "/") == own {
			continue
		}
		kept = append(kept, hit)
	}
	return kept
}

func joinSentences(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, " ")
}
