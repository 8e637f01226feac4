package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ContentRadar/internal/config"
	"ContentRadar/internal/domain"
)

func TestHackerNewsFetchAppliesScoreGate(t *testing.T) {
	now := time.Now().UTC()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/topstories.json":
			fmt.Fprint(w, `[1, 2]`)
		case "/item/1.json":
			fmt.Fprintf(w, `{"id":1,"type":"story","title":"Big Story","url":"https://example.com/big",
				"by":"pg","time":%d,"score":250,"descendants":40,"kids":[11]}`, now.Unix())
		case "/item/2.json":
			fmt.Fprintf(w, `{"id":2,"type":"story","title":"Small Story","by":"x","time":%d,"score":12}`, now.Unix())
		case "/item/11.json":
			fmt.Fprintf(w, `{"id":11,"type":"comment","by":"alice","text":"Great point about &quot;scaling&quot;","time":%d}`, now.Unix())
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHackerNewsSource(config.HackerNewsConfig{
		TopStories:    30,
		MinScore:      100,
		FetchComments: 3,
	}, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	src.base = srv.URL

	items, err := src.Fetch(context.Background(), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected only the high-score story, got %d items", len(items))
	}

	item := items[0]
	if item.ID != domain.ItemID(domain.SourceHackerNews, "story", "1") {
		t.Errorf("unexpected id %q", item.ID)
	}
	if item.URL != "https://example.com/big" {
		t.Errorf("unexpected url %q", item.URL)
	}
	if got := item.Metadata.Float("score"); got != 250 {
		t.Errorf("score metadata = %v", got)
	}
	if !strings.Contains(item.Content, domain.CommentsMarker) {
		t.Errorf("comments marker missing from content: %q", item.Content)
	}
	if !strings.Contains(item.Content, `[alice]: Great point about "scaling"`) {
		t.Errorf("comment not decoded into content: %q", item.Content)
	}
}

func TestHackerNewsTextPostURLFallsBackToDiscussion(t *testing.T) {
	now := time.Now().UTC()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/topstories.json":
			fmt.Fprint(w, `[7]`)
		case "/item/7.json":
			fmt.Fprintf(w, `{"id":7,"type":"story","title":"Ask HN: Anyone?","text":"<p>Question body</p>","by":"q","time":%d,"score":150}`, now.Unix())
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHackerNewsSource(config.HackerNewsConfig{TopStories: 10, MinScore: 100}, srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	src.base = srv.URL

	items, err := src.Fetch(context.Background(), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].URL != "https://news.ycombinator.com/item?id=7" {
		t.Errorf("text post must use discussion URL, got %q", items[0].URL)
	}
	if !strings.Contains(items[0].Content, "Question body") {
		t.Errorf("text body missing: %q", items[0].Content)
	}
}
