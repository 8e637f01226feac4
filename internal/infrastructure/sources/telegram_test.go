package sources

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ContentRadar/internal/config"
)

const channelHTML = `<!DOCTYPE html>
<html><body>
<div class="tgme_widget_message" data-post="gonews/101">
  <div class="tgme_widget_message_text">Old release notes<br>details here</div>
  <time datetime="2026-01-10T08:00:00+00:00"></time>
</div>
<div class="tgme_widget_message" data-post="gonews/102">
  <div class="tgme_widget_message_text">New compiler lands major optimization<br>Read more: <a href="https://example.com/compiler">blog post</a></div>
  <time datetime="2026-08-24T10:30:00+00:00"></time>
</div>
<div class="tgme_widget_message" data-post="gonews/103">
  <div class="tgme_widget_message_text">Quick note with internal link only <a href="https://t.me/gonews/50">earlier post</a></div>
  <time datetime="2026-08-24T11:00:00+00:00"></time>
</div>
</body></html>`

func telegramTestSource(t *testing.T) (*TelegramSource, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(channelHTML))
	}))

	src := NewTelegramSource(config.TelegramConfig{
		Channels: []config.TelegramChannelConfig{{Channel: "gonews", Limit: 10}},
	}, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	src.base = srv.URL
	return src, srv.Close
}

func TestTelegramFetchParsesChannelPage(t *testing.T) {
	src, done := telegramTestSource(t)
	defer done()

	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	items, err := src.Fetch(context.Background(), since)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items within window, got %d", len(items))
	}

	linked := items[0]
	if linked.URL != "https://example.com/compiler" {
		t.Errorf("expected external link as canonical URL, got %q", linked.URL)
	}
	if linked.Title != "New compiler lands major optimization" {
		t.Errorf("unexpected title %q", linked.Title)
	}
	if !strings.Contains(linked.Content, "\n") {
		t.Errorf("line break from <br> lost in content: %q", linked.Content)
	}
	if got := linked.Metadata.Str("msg_url"); got != "https://t.me/gonews/102" {
		t.Errorf("msg_url = %q", got)
	}

	// Messages whose only link points back to t.me fall back to the
	// message permalink.
	internal := items[1]
	if internal.URL != "https://t.me/gonews/103" {
		t.Errorf("expected permalink fallback, got %q", internal.URL)
	}
}

func TestTelegramLimitKeepsNewest(t *testing.T) {
	src, done := telegramTestSource(t)
	defer done()
	src.cfg.Channels[0].Limit = 1

	items, err := src.Fetch(context.Background(), time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected limit to keep a single message, got %d", len(items))
	}
	if items[0].Metadata.Str("msg_url") != "https://t.me/gonews/103" {
		t.Errorf("limit must keep the newest message, got %q", items[0].Metadata.Str("msg_url"))
	}
}

func TestMessageTitleTruncates(t *testing.T) {
	long := strings.Repeat("word ", 40)
	title := messageTitle(long)
	if len([]rune(title)) > 80 {
		t.Errorf("title exceeds 80 runes: %d", len([]rune(title)))
	}
	if messageTitle("") != "Telegram post" {
		t.Errorf("empty text must fall back to a generic title")
	}
}
