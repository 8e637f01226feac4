package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ContentRadar/internal/config"
	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
)

const redditAPIBase = "https://www.reddit.com"

// RedditSource collects posts from subreddit listings and tracked user
// submissions via the public JSON endpoints.
type RedditSource struct {
	cfg    config.RedditConfig
	base   string
	client *http.Client
	log    *slog.Logger
}

var _ ports.Source = (*RedditSource)(nil)

// NewRedditSource wires the collector with a shared HTTP client.
func NewRedditSource(cfg config.RedditConfig, client *http.Client, log *slog.Logger) *RedditSource {
	return &RedditSource{cfg: cfg, base: redditAPIBase, client: client, log: log}
}

func (s *RedditSource) Name() string { return "reddit" }

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Subreddit     string  `json:"subreddit"`
	Selftext      string  `json:"selftext"`
	URL           string  `json:"url"`
	Permalink     string  `json:"permalink"`
	CreatedUTC    float64 `json:"created_utc"`
	Score         int     `json:"score"`
	UpvoteRatio   float64 `json:"upvote_ratio"`
	NumComments   int     `json:"num_comments"`
	IsSelf        bool    `json:"is_self"`
	LinkFlairText string  `json:"link_flair_text"`
	Stickied      bool    `json:"stickied"`
}

type redditComment struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	Score  int    `json:"score"`
}

// Fetch walks every configured listing; a broken one is logged and
// skipped so the rest still contribute.
func (s *RedditSource) Fetch(ctx context.Context, since time.Time) ([]domain.ContentItem, error) {
	var items []domain.ContentItem

	for _, sub := range s.cfg.Subreddits {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		subItems, err := s.fetchSubreddit(ctx, sub, since)
		if err != nil {
			s.log.Warn("subreddit failed", "subreddit", sub.Name, "error", err)
			continue
		}
		items = append(items, subItems...)
	}

	for _, user := range s.cfg.Users {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		userItems, err := s.fetchUser(ctx, user, since)
		if err != nil {
			s.log.Warn("reddit user failed", "user", user.Username, "error", err)
			continue
		}
		items = append(items, userItems...)
	}

	return items, nil
}

func (s *RedditSource) fetchSubreddit(ctx context.Context, sub config.RedditListingConfig, since time.Time) ([]domain.ContentItem, error) {
	sort := sub.Sort
	if sort == "" {
		sort = "hot"
	}
	limit := sub.Limit
	if limit <= 0 {
		limit = 25
	}

	url := fmt.Sprintf("%s/r/%s/%s.json?limit=%d", s.base, sub.Name, sort, limit)
	if sort == "top" && sub.TimeFilter != "" {
		url += "&t=" + sub.TimeFilter
	}

	var listing redditListing
	if err := getJSON(ctx, s.client, url, nil, &listing); err != nil {
		return nil, err
	}

	var items []domain.ContentItem
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied || post.Score < sub.MinScore {
			continue
		}
		item, ok := s.buildItem(ctx, post, since)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *RedditSource) fetchUser(ctx context.Context, user config.RedditUserConfig, since time.Time) ([]domain.ContentItem, error) {
	limit := user.Limit
	if limit <= 0 {
		limit = 25
	}

	url := fmt.Sprintf("%s/user/%s/submitted.json?limit=%d", s.base, user.Username, limit)

	var listing redditListing
	if err := getJSON(ctx, s.client, url, nil, &listing); err != nil {
		return nil, err
	}

	var items []domain.ContentItem
	for _, child := range listing.Data.Children {
		item, ok := s.buildItem(ctx, child.Data, since)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *RedditSource) buildItem(ctx context.Context, post redditPost, since time.Time) (domain.ContentItem, bool) {
	published := time.Unix(int64(post.CreatedUTC), 0).UTC()
	if published.Before(since) {
		return domain.ContentItem{}, false
	}

	permalink := s.base + post.Permalink

	// Self posts carry no external link; the discussion is the content.
	url := post.URL
	if post.IsSelf {
		url = permalink
	}

	parts := make([]string, 0, 2)
	if post.Selftext != "" {
		parts = append(parts, truncateText(post.Selftext, 1500))
	}
	if comments := s.fetchComments(ctx, post); comments != "" {
		parts = append(parts, domain.CommentsMarker+"\n"+comments)
	}

	meta := domain.Metadata{
		"score":          domain.Number(float64(post.Score)),
		"upvote_ratio":   domain.Number(post.UpvoteRatio),
		"num_comments":   domain.Number(float64(post.NumComments)),
		"subreddit":      domain.Text(post.Subreddit),
		"is_self":        domain.Flag(post.IsSelf),
		"discussion_url": domain.Text(permalink),
	}
	if post.LinkFlairText != "" {
		meta["flair"] = domain.Text(post.LinkFlairText)
	}

	return domain.ContentItem{
		ID:          domain.ItemID(domain.SourceReddit, post.Subreddit, post.ID),
		Source:      domain.SourceReddit,
		Title:       post.Title,
		URL:         url,
		Content:     strings.Join(parts, "\n\n"),
		Author:      post.Author,
		PublishedAt: published,
		FetchedAt:   time.Now().UTC(),
		Metadata:    meta,
	}, true
}

// fetchComments pulls the top-level comments sorted by score. Comment
// failures only shorten the excerpt.
func (s *RedditSource) fetchComments(ctx context.Context, post redditPost) string {
	if s.cfg.FetchComments <= 0 {
		return ""
	}

	url := fmt.Sprintf("%s/r/%s/comments/%s.json?limit=%d&depth=1&sort=top",
		s.base, post.Subreddit, post.ID, s.cfg.FetchComments)

	// The endpoint returns a two-element array: the post listing and
	// the comment listing.
	var payload []struct {
		Data struct {
			Children []struct {
				Kind string        `json:"kind"`
				Data redditComment `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := getJSON(ctx, s.client, url, nil, &payload); err != nil {
		s.log.Warn("comments failed", "post", post.ID, "error", err)
		return ""
	}
	if len(payload) < 2 {
		return ""
	}

	var lines []string
	for _, child := range payload[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		c := child.Data
		if c.Body == "" || c.Author == "[deleted]" {
			continue
		}
		lines = append(lines, fmt.Sprintf("[%s (%d pts)]: %s", c.Author, c.Score, truncateText(c.Body, 500)))
		if len(lines) >= s.cfg.FetchComments {
			break
		}
	}
	return strings.Join(lines, "\n\n")
}
