// Package analyze assigns each content item an importance score via the
// model backend and filters the batch by threshold.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ContentRadar/internal/domain"
	"ContentRadar/internal/infrastructure/llm"
	"ContentRadar/internal/ports"
)

const (
	failedReason = "Analysis failed"

	defaultBatchSize = 10
	retryAttempts    = 3
	retryInitial     = 2 * time.Second
	retryMax         = 10 * time.Second
)

// ItemResult reports the outcome of scoring one item. A non-nil Err
// means every retry failed and the item was degraded to the safe
// default instead of being dropped.
type ItemResult struct {
	ID  string
	Err error
}

// Analyzer scores content items through a model backend.
type Analyzer struct {
	client    ports.Completer
	log       *slog.Logger
	batchSize int

	temperature float64
	maxTokens   int

	retryInitial time.Duration
	retryMax     time.Duration
}

// Option adjusts analyzer behavior.
type Option func(*Analyzer)

// WithBatchSize overrides the progress-reporting batch size.
func WithBatchSize(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

// WithRetryIntervals overrides backoff timing; tests shrink it.
func WithRetryIntervals(initial, max time.Duration) Option {
	return func(a *Analyzer) {
		a.retryInitial = initial
		a.retryMax = max
	}
}

// New builds an analyzer over the given model backend.
func New(client ports.Completer, temperature float64, maxTokens int, log *slog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:       client,
		log:          log,
		batchSize:    defaultBatchSize,
		temperature:  temperature,
		maxTokens:    maxTokens,
		retryInitial: retryInitial,
		retryMax:     retryMax,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores every item in place and returns one result per item.
// A failing item never aborts the batch: after exhausting retries it is
// kept with score 0, a fixed reason and its title as summary, so a
// transient failure degrades to "treated as unimportant". Only context
// cancellation stops the loop early.
func (a *Analyzer) Analyze(ctx context.Context, items []domain.ContentItem) []ItemResult {
	results := make([]ItemResult, 0, len(items))

	for start := 0; start < len(items); start += a.batchSize {
		end := min(start+a.batchSize, len(items))

		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				return results
			}

			item := &items[i]
			err := a.scoreItem(ctx, item)
			if err != nil {
				a.log.Warn("scoring failed, keeping item with default score",
					"item", item.ID, "error", err)
				item.SetScore(0.0, failedReason, item.Title, nil)
			}
			results = append(results, ItemResult{ID: item.ID, Err: err})
		}

		a.log.Info("analyzed batch", "done", end, "total", len(items))
	}

	return results
}

// scoreItem runs the scoring prompt for one item with retries.
func (a *Analyzer) scoreItem(ctx context.Context, item *domain.ContentItem) error {
	prompt := buildScoringPrompt(item)

	op := func() error {
		response, err := a.client.Complete(ctx, ports.CompletionRequest{
			System:      scoringSystemPrompt,
			User:        prompt,
			Temperature: a.temperature,
			MaxTokens:   a.maxTokens,
		})
		if err != nil {
			return fmt.Errorf("complete: %w", err)
		}

		var parsed struct {
			Score   float64  `json:"score"`
			Reason  string   `json:"reason"`
			Summary string   `json:"summary"`
			Tags    []string `json:"tags"`
		}
		if err := llm.DecodeResponse(response, &parsed); err != nil {
			return err
		}

		if parsed.Score < 0 {
			parsed.Score = 0
		}
		if parsed.Score > 10 {
			parsed.Score = 10
		}
		if parsed.Summary == "" {
			parsed.Summary = item.Title
		}

		item.SetScore(parsed.Score, parsed.Reason, parsed.Summary, parsed.Tags)
		return nil
	}

	return backoff.Retry(op, a.newBackOff(ctx))
}

func (a *Analyzer) newBackOff(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.retryInitial
	bo.MaxInterval = a.retryMax
	return backoff.WithContext(backoff.WithMaxRetries(bo, retryAttempts-1), ctx)
}

// FilterImportant returns the items whose score is present and at or
// above threshold, sorted by score descending. Ties keep their original
// relative order. Unscored items are always excluded.
func FilterImportant(items []domain.ContentItem, threshold float64) []domain.ContentItem {
	kept := make([]domain.ContentItem, 0, len(items))
	for _, item := range items {
		if item.Score != nil && *item.Score >= threshold {
			kept = append(kept, item)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return *kept[i].Score > *kept[j].Score
	})

	return kept
}
