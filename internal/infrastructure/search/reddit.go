package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
)

const redditSearchBase = "https://www.reddit.com"

// Reddit searches recent discussions through the public JSON endpoint.
type Reddit struct {
	base   string
	client *http.Client
	log    *slog.Logger
}

var _ ports.Searcher = (*Reddit)(nil)

func NewReddit(client *http.Client, log *slog.Logger) *Reddit {
	return &Reddit{base: redditSearchBase, client: client, log: log}
}

type redditSearchResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Permalink   string `json:"permalink"`
				Score       int    `json:"score"`
				NumComments int    `json:"num_comments"`
				IsSelf      bool   `json:"is_self"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Search returns up to maxResults matching posts from the last year.
// Failures are logged and yield an empty slice.
func (s *Reddit) Search(ctx context.Context, query string, maxResults int) ([]domain.RelatedHit, error) {
	reqURL := fmt.Sprintf("%s/search.json?q=%s&sort=relevance&t=year&limit=%d",
		s.base, url.QueryEscape(query), maxResults)

	var resp redditSearchResponse
	if err := getJSON(ctx, s.client, reqURL, &resp); err != nil {
		s.log.Warn("story search failed", "backend", "reddit", "error", err)
		return nil, nil
	}

	hits := make([]domain.RelatedHit, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		post := child.Data
		hitURL := post.URL
		if post.IsSelf || hitURL == "" {
			hitURL = redditSearchBase + post.Permalink
		}
		hits = append(hits, domain.RelatedHit{
			Title:    post.Title,
			URL:      hitURL,
			Source:   "reddit",
			Score:    float64(post.Score),
			Comments: post.NumComments,
		})
	}
	return hits, nil
}
