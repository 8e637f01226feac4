package domain

import (
	"strings"
	"time"
)

// SourceType tags the platform a content item originated from.
type SourceType string

const (
	SourceGitHub     SourceType = "github"
	SourceHackerNews SourceType = "hackernews"
	SourceRSS        SourceType = "rss"
	SourceReddit     SourceType = "reddit"
	SourceTelegram   SourceType = "telegram"
)

// CommentsMarker separates an item's main body from an appended
// top-comments excerpt inside Content.
const CommentsMarker = "--- Top Comments ---"

// ContentItem is the unit flowing through every pipeline stage: produced
// by a collector, mutated in place by the merger, scorer and enricher,
// consumed by the renderer at end of run.
type ContentItem struct {
	ID          string
	Source      SourceType
	Title       string
	URL         string
	Content     string
	Author      string
	PublishedAt time.Time
	FetchedAt   time.Time
	Metadata    Metadata

	// Scoring results. Score is nil until the item has been analyzed.
	Score   *float64
	Reason  string
	Summary string
	Tags    []string
}

// SetScore stores a scoring result on the item.
func (c *ContentItem) SetScore(score float64, reason, summary string, tags []string) {
	c.Score = &score
	c.Reason = reason
	c.Summary = summary
	c.Tags = tags
}

// SplitComments returns the main body and the top-comments excerpt of
// Content. The second value is empty when no comments were appended.
func (c *ContentItem) SplitComments() (body, comments string) {
	main, rest, found := strings.Cut(c.Content, CommentsMarker)
	if !found {
		return strings.TrimSpace(c.Content), ""
	}
	return strings.TrimSpace(main), strings.TrimSpace(rest)
}

// SubSourceLabel returns a human-readable sub-source for attribution:
// subreddit, feed name, channel or repository, falling back to the author.
func (c *ContentItem) SubSourceLabel() string {
	if v := c.Metadata.Str("subreddit"); v != "" {
		return "r/" + v
	}
	if v := c.Metadata.Str("feed_name"); v != "" {
		return v
	}
	if v := c.Metadata.Str("channel"); v != "" {
		return "@" + v
	}
	if v := c.Metadata.Str("repo"); v != "" {
		return v
	}
	if c.Author != "" {
		return c.Author
	}
	return "unknown"
}

// RelatedHit is a single result from the related-story search backends.
type RelatedHit struct {
	Title    string
	URL      string
	Source   string
	Score    float64
	Comments int
}
