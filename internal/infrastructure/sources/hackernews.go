package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ContentRadar/internal/config"
	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
)

const hnAPIBase = "https://hacker-news.firebaseio.com/v0"

// HackerNewsSource collects front-page stories above a score gate,
// with their top comments appended to the content.
type HackerNewsSource struct {
	cfg    config.HackerNewsConfig
	base   string
	client *http.Client
	log    *slog.Logger
}

var _ ports.Source = (*HackerNewsSource)(nil)

type hnItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Kids        []int  `json:"kids"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

// NewHackerNewsSource wires the collector with a shared HTTP client.
func NewHackerNewsSource(cfg config.HackerNewsConfig, client *http.Client, log *slog.Logger) *HackerNewsSource {
	return &HackerNewsSource{cfg: cfg, base: hnAPIBase, client: client, log: log}
}

func (s *HackerNewsSource) Name() string { return "hackernews" }

func (s *HackerNewsSource) Fetch(ctx context.Context, since time.Time) ([]domain.ContentItem, error) {
	var ids []int
	if err := getJSON(ctx, s.client, s.base+"/topstories.json", nil, &ids); err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	if len(ids) > s.cfg.TopStories {
		ids = ids[:s.cfg.TopStories]
	}

	var items []domain.ContentItem
	for _, id := range ids {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}

		story, err := s.fetchItem(ctx, id)
		if err != nil {
			s.log.Warn("story fetch failed", "id", id, "error", err)
			continue
		}
		if story.Type != "story" || story.Deleted || story.Dead {
			continue
		}

		published := time.Unix(story.Time, 0).UTC()
		if published.Before(since) || story.Score < s.cfg.MinScore {
			continue
		}

		items = append(items, s.buildItem(ctx, story, published))
	}

	return items, nil
}

func (s *HackerNewsSource) buildItem(ctx context.Context, story *hnItem, published time.Time) domain.ContentItem {
	discussionURL := fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)

	// Ask HN and similar text posts have no external URL.
	url := story.URL
	if url == "" {
		url = discussionURL
	}

	parts := make([]string, 0, 2)
	if story.Text != "" {
		parts = append(parts, truncateText(stripHTMLEntities(story.Text), 1500))
	}
	if comments := s.fetchComments(ctx, story.Kids); comments != "" {
		parts = append(parts, domain.CommentsMarker+"\n"+comments)
	}

	return domain.ContentItem{
		ID:          domain.ItemID(domain.SourceHackerNews, "story", strconv.Itoa(story.ID)),
		Source:      domain.SourceHackerNews,
		Title:       story.Title,
		URL:         url,
		Content:     strings.Join(parts, "\n\n"),
		Author:      story.By,
		PublishedAt: published,
		FetchedAt:   time.Now().UTC(),
		Metadata: domain.Metadata{
			"score":          domain.Number(float64(story.Score)),
			"descendants":    domain.Number(float64(story.Descendants)),
			"discussion_url": domain.Text(discussionURL),
		},
	}
}

// fetchComments collects the first top-level comments; failures simply
// shorten the excerpt.
func (s *HackerNewsSource) fetchComments(ctx context.Context, kids []int) string {
	if s.cfg.FetchComments <= 0 || len(kids) == 0 {
		return ""
	}
	if len(kids) > s.cfg.FetchComments {
		kids = kids[:s.cfg.FetchComments]
	}

	var lines []string
	for _, id := range kids {
		comment, err := s.fetchItem(ctx, id)
		if err != nil || comment.Deleted || comment.Dead || comment.Text == "" {
			continue
		}
		body := truncateText(stripHTMLEntities(comment.Text), 500)
		lines = append(lines, fmt.Sprintf("[%s]: %s", comment.By, body))
	}
	return strings.Join(lines, "\n\n")
}

func (s *HackerNewsSource) fetchItem(ctx context.Context, id int) (*hnItem, error) {
	var item hnItem
	url := fmt.Sprintf("%s/item/%d.json", s.base, id)
	if err := getJSON(ctx, s.client, url, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// stripHTMLEntities flattens the minimal HTML the item API embeds in
// text fields into readable plain text.
func stripHTMLEntities(s string) string {
	replacer := strings.NewReplacer(
		"<p>", "\n\n",
		"</p>", "",
		"<i>", "", "</i>", "",
		"<b>", "", "</b>", "",
		"<pre><code>", "\n", "</code></pre>", "\n",
		"&#x27;", "'",
		"&#x2F;", "/",
		"&quot;", `"`,
		"&gt;", ">",
		"&lt;", "<",
		"&amp;", "&",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
