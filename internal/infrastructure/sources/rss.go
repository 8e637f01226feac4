package sources

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"ContentRadar/internal/config"
	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
)

var envVarExpr = regexp.MustCompile(`\$\{(\w+)\}`)

// RSSSource collects items from configured syndication feeds.
type RSSSource struct {
	feeds  []config.RSSFeedConfig
	client *http.Client
	parser *gofeed.Parser
	log    *slog.Logger
}

var _ ports.Source = (*RSSSource)(nil)

// NewRSSSource wires the feed list with a shared HTTP client.
func NewRSSSource(feeds []config.RSSFeedConfig, client *http.Client, log *slog.Logger) *RSSSource {
	return &RSSSource{
		feeds:  feeds,
		client: client,
		parser: gofeed.NewParser(),
		log:    log,
	}
}

func (s *RSSSource) Name() string { return "rss" }

// Fetch walks every enabled feed. A single broken feed is logged and
// skipped so the rest still contribute.
func (s *RSSSource) Fetch(ctx context.Context, since time.Time) ([]domain.ContentItem, error) {
	var items []domain.ContentItem

	for _, feedCfg := range s.feeds {
		if feedCfg.Disabled {
			continue
		}

		feedItems, err := s.fetchFeed(ctx, feedCfg, since)
		if err != nil {
			s.log.Warn("feed failed", "feed", feedCfg.Name, "error", err)
			continue
		}
		items = append(items, feedItems...)
	}

	return items, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, feedCfg config.RSSFeedConfig, since time.Time) ([]domain.ContentItem, error) {
	// Feed URLs may reference credentials as ${VAR} placeholders.
	feedURL := envVarExpr.ReplaceAllStringFunc(feedCfg.URL, func(m string) string {
		name := envVarExpr.FindStringSubmatch(m)[1]
		if v, ok := os.LookupEnv(name); ok {
			return strings.TrimSpace(v)
		}
		return m
	})

	body, err := getBody(ctx, s.client, feedURL, nil)
	if err != nil {
		return nil, err
	}

	feed, err := s.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	feedKey := feedKeyFromURL(feedCfg.URL)
	now := time.Now().UTC()

	var items []domain.ContentItem
	for _, entry := range feed.Items {
		published := entryDate(entry)
		if published.IsZero() || published.Before(since) {
			continue
		}

		items = append(items, domain.ContentItem{
			ID:          domain.ItemID(domain.SourceRSS, feedKey, entryID(entry)),
			Source:      domain.SourceRSS,
			Title:       entryTitle(entry),
			URL:         entryLink(entry, feedCfg.URL),
			Content:     entryContent(entry),
			Author:      entryAuthor(entry, feedCfg.Name),
			PublishedAt: published,
			FetchedAt:   now,
			Metadata: domain.Metadata{
				"feed_name": domain.Text(feedCfg.Name),
				"category":  domain.Text(feedCfg.Category),
				"tags":      domain.List(entry.Categories...),
			},
		})
	}

	return items, nil
}

// feedKeyFromURL derives the ID subtype from the feed address.
func feedKeyFromURL(raw string) string {
	_, rest, found := strings.Cut(raw, "//")
	if !found {
		rest = raw
	}
	return strings.ReplaceAll(rest, "/", "_")
}

// entryID hashes the entry GUID or link into a short stable native ID.
// Entries carrying neither get a random one-off ID as last resort.
func entryID(entry *gofeed.Item) string {
	seed := entry.GUID
	if seed == "" {
		seed = entry.Link
	}
	if seed == "" {
		return uuid.NewString()
	}
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:8])
}

func entryDate(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	return time.Time{}
}

func entryTitle(entry *gofeed.Item) string {
	if entry.Title == "" {
		return "Untitled"
	}
	return entry.Title
}

func entryLink(entry *gofeed.Item, fallback string) string {
	if entry.Link != "" {
		return entry.Link
	}
	return fallback
}

func entryContent(entry *gofeed.Item) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Content
}

func entryAuthor(entry *gofeed.Item, fallback string) string {
	if entry.Author != nil && entry.Author.Name != "" {
		return entry.Author.Name
	}
	return fallback
}
