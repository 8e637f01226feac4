package ports

import (
	"context"
	"time"

	"ContentRadar/internal/domain"
)

// Source pulls fresh content items from one platform. Implementations
// bound results by the since cutoff and never return items older than it.
type Source interface {
	Name() string
	Fetch(ctx context.Context, since time.Time) ([]domain.ContentItem, error)
}

// CompletionRequest carries one prompt to a model backend.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer is the single capability required from a model backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Searcher finds related stories for a query. Implementations degrade to
// an empty result set on failure instead of returning an error.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]domain.RelatedHit, error)
}

// SeenStore remembers item IDs across runs for prior-run deduplication.
type SeenStore interface {
	Seen(ctx context.Context, ids []string) (map[string]bool, error)
	MarkSeen(ctx context.Context, ids []string) error
}

// DigestStore persists one rendered digest under a date key and returns
// the location it was written to.
type DigestStore interface {
	SaveDigest(date, markdown string) (string, error)
}
