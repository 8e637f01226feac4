package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentRadar/internal/config"
	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
)

const telegramWebBase = "https://t.me/s"

// TelegramSource collects recent posts from public channels through the
// t.me web preview. No API credentials are involved.
type TelegramSource struct {
	cfg    config.TelegramConfig
	base   string
	client *http.Client
	log    *slog.Logger
}

var _ ports.Source = (*TelegramSource)(nil)

// NewTelegramSource wires the collector with a shared HTTP client.
func NewTelegramSource(cfg config.TelegramConfig, client *http.Client, log *slog.Logger) *TelegramSource {
	return &TelegramSource{cfg: cfg, base: telegramWebBase, client: client, log: log}
}

func (s *TelegramSource) Name() string { return "telegram" }

// Fetch walks every configured channel; one broken channel is logged
// and skipped.
func (s *TelegramSource) Fetch(ctx context.Context, since time.Time) ([]domain.ContentItem, error) {
	var items []domain.ContentItem

	for _, ch := range s.cfg.Channels {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		channelItems, err := s.fetchChannel(ctx, ch, since)
		if err != nil {
			s.log.Warn("channel failed", "channel", ch.Channel, "error", err)
			continue
		}
		items = append(items, channelItems...)
	}

	return items, nil
}

func (s *TelegramSource) fetchChannel(ctx context.Context, ch config.TelegramChannelConfig, since time.Time) ([]domain.ContentItem, error) {
	body, err := getBody(ctx, s.client, fmt.Sprintf("%s/%s", s.base, ch.Channel), nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse channel page: %w", err)
	}

	limit := ch.Limit
	if limit <= 0 {
		limit = 20
	}

	messages := doc.Find("div.tgme_widget_message[data-post]")

	// The preview page lists oldest first; keep only the newest window.
	start := messages.Length() - limit
	if start < 0 {
		start = 0
	}

	now := time.Now().UTC()
	var items []domain.ContentItem

	messages.Slice(start, messages.Length()).Each(func(_ int, msg *goquery.Selection) {
		post, _ := msg.Attr("data-post")
		if post == "" {
			return
		}

		published := messageDate(msg)
		if published.IsZero() || published.Before(since) {
			return
		}

		textSel := msg.Find("div.tgme_widget_message_text").First()
		text := messageText(textSel)
		if text == "" {
			return
		}

		msgURL := "https://t.me/" + post

		// A linked external page, when present, identifies the story
		// better than the message permalink.
		url := firstExternalLink(textSel)
		if url == "" {
			url = msgURL
		}

		items = append(items, domain.ContentItem{
			ID:          domain.ItemID(domain.SourceTelegram, ch.Channel, strings.ReplaceAll(post, "/", "_")),
			Source:      domain.SourceTelegram,
			Title:       messageTitle(text),
			URL:         url,
			Content:     truncateText(text, 2000),
			Author:      ch.Channel,
			PublishedAt: published,
			FetchedAt:   now,
			Metadata: domain.Metadata{
				"channel": domain.Text(ch.Channel),
				"msg_url": domain.Text(msgURL),
			},
		})
	})

	return items, nil
}

func messageDate(msg *goquery.Selection) time.Time {
	raw, ok := msg.Find("time[datetime]").First().Attr("datetime")
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// messageText extracts the plain text of the message body, turning
// <br> tags into newlines before flattening.
func messageText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	clone := sel.Clone()
	clone.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithHtml("\n")
	})
	return strings.TrimSpace(clone.Text())
}

// firstExternalLink returns the first href pointing outside t.me.
func firstExternalLink(sel *goquery.Selection) string {
	var found string
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, "http") || strings.Contains(href, "t.me/") {
			return true
		}
		found = href
		return false
	})
	return found
}

// messageTitle derives a short title from the first line of the post.
func messageTitle(text string) string {
	first, _, _ := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return "Telegram post"
	}
	return truncateText(first, 80)
}
