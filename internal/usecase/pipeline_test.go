package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ContentRadar/internal/analyze"
	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
	"ContentRadar/internal/source"
)

type stubSource struct {
	name  string
	items []domain.ContentItem
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ time.Time) ([]domain.ContentItem, error) {
	return s.items, nil
}

// scriptedCompleter answers scoring prompts by matching a known
// substring of the item prompt.
type scriptedCompleter struct {
	byPrompt map[string]string
}

func (c *scriptedCompleter) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	for key, resp := range c.byPrompt {
		if strings.Contains(req.User, key) {
			return resp, nil
		}
	}
	return "", fmt.Errorf("no scripted response for prompt")
}

type memorySeen struct {
	recorded map[string]bool
}

func newMemorySeen() *memorySeen {
	return &memorySeen{recorded: map[string]bool{}}
}

func (m *memorySeen) Seen(_ context.Context, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if m.recorded[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memorySeen) MarkSeen(_ context.Context, ids []string) error {
	for _, id := range ids {
		m.recorded[id] = true
	}
	return nil
}

type digestCapture struct {
	date     string
	markdown string
}

func (d *digestCapture) SaveDigest(date, markdown string) (string, error) {
	d.date = date
	d.markdown = markdown
	return "/tmp/digest-" + date + ".md", nil
}

func testItem(id, title, url string, src domain.SourceType, now time.Time) domain.ContentItem {
	return domain.ContentItem{
		ID:          id,
		Source:      src,
		Title:       title,
		URL:         url,
		Content:     "content of " + title,
		Author:      "someone",
		PublishedAt: now.Add(-time.Hour),
		FetchedAt:   now,
		Metadata:    domain.Metadata{},
	}
}

func newTestPipeline(hub *source.Hub, completer *scriptedCompleter, seen *memorySeen, digests *digestCapture) *Pipeline {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	analyzer := analyze.New(completer, 0.3, 1024, log,
		analyze.WithRetryIntervals(time.Millisecond, time.Millisecond))

	return NewPipeline(PipelineDeps{
		Hub:       hub,
		Seen:      seen,
		Analyzer:  analyzer,
		Digests:   digests,
		Threshold: 7.0,
		Window:    24 * time.Hour,
		Logger:    log,
	})
}

func TestRunMergesScoresAndRenders(t *testing.T) {
	now := time.Now().UTC()

	// Two sources report the same story under URL variants; a third
	// item scores below the threshold.
	hub := source.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Register(&stubSource{name: "hn", items: []domain.ContentItem{
		testItem("hackernews:story:1", "Big Launch", "https://example.com/a", domain.SourceHackerNews, now),
	}})
	hub.Register(&stubSource{name: "rss", items: []domain.ContentItem{
		testItem("rss:feed:1", "Big Launch", "https://www.example.com/a/", domain.SourceRSS, now),
		testItem("rss:feed:2", "Minor Note", "https://example.com/b", domain.SourceRSS, now),
	}})

	completer := &scriptedCompleter{byPrompt: map[string]string{
		"Big Launch": `{"score": 9.5, "reason": "major", "summary": "A big launch happened.", "tags": ["ai"]}`,
		"Minor Note": `{"score": 6.0, "reason": "minor", "summary": "Small thing.", "tags": []}`,
	}}

	seen := newMemorySeen()
	digests := &digestCapture{}
	p := newTestPipeline(hub, completer, seen, digests)

	path, err := p.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if path == "" {
		t.Fatalf("expected digest path")
	}

	// URL variants collapse to one record; only it clears the threshold.
	if got := strings.Count(digests.markdown, "### ["); got != 1 {
		t.Errorf("expected 1 digest block, got %d:\n%s", got, digests.markdown)
	}
	if !strings.Contains(digests.markdown, "Today's Highlights") {
		t.Errorf("9.5-scored item must land in highlights:\n%s", digests.markdown)
	}
	if strings.Contains(digests.markdown, "Minor Note") {
		t.Errorf("below-threshold item leaked into digest:\n%s", digests.markdown)
	}

	// Every fetched ID is recorded, including the merged-away duplicate
	// and the filtered item.
	for _, id := range []string{"hackernews:story:1", "rss:feed:1", "rss:feed:2"} {
		if !seen.recorded[id] {
			t.Errorf("id %s not marked seen", id)
		}
	}
}

func TestRunSkipsPreviouslySeen(t *testing.T) {
	now := time.Now().UTC()

	hub := source.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	hub.Register(&stubSource{name: "rss", items: []domain.ContentItem{
		testItem("rss:feed:old", "Old Story", "https://example.com/old", domain.SourceRSS, now),
	}})

	completer := &scriptedCompleter{byPrompt: map[string]string{
		"Old Story": `{"score": 9.0, "reason": "r", "summary": "s", "tags": []}`,
	}}

	seen := newMemorySeen()
	seen.recorded["rss:feed:old"] = true

	digests := &digestCapture{}
	p := newTestPipeline(hub, completer, seen, digests)

	if _, err := p.Run(context.Background(), now); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(digests.markdown, "Old Story") {
		t.Errorf("previously seen item must not reappear:\n%s", digests.markdown)
	}
	if !strings.Contains(digests.markdown, "No significant developments") {
		t.Errorf("empty digest placeholder missing:\n%s", digests.markdown)
	}
}

func TestRunEmptyFetchStillWritesDigest(t *testing.T) {
	now := time.Now().UTC()

	hub := source.NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	digests := &digestCapture{}
	p := newTestPipeline(hub, &scriptedCompleter{}, newMemorySeen(), digests)

	path, err := p.Run(context.Background(), now)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if path == "" {
		t.Fatalf("expected digest path even with nothing fetched")
	}
	if digests.date != now.UTC().Format("2006-01-02") {
		t.Errorf("digest keyed to %q", digests.date)
	}
	if !strings.Contains(digests.markdown, "No significant developments") {
		t.Errorf("placeholder missing:\n%s", digests.markdown)
	}
}
