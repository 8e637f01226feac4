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

const algoliaBase = "https://hn.algolia.com/api/v1"

// HackerNews searches story archives through the Algolia API.
type HackerNews struct {
	base   string
	client *http.Client
	log    *slog.Logger
}

var _ ports.Searcher = (*HackerNews)(nil)

func NewHackerNews(client *http.Client, log *slog.Logger) *HackerNews {
	return &HackerNews{base: algoliaBase, client: client, log: log}
}

type algoliaResponse struct {
	Hits []struct {
		ObjectID    string `json:"objectID"`
		Title       string `json:"title"`
		URL         string `json:"url"`
		Points      int    `json:"points"`
		NumComments int    `json:"num_comments"`
	} `json:"hits"`
}

// Search returns up to maxResults matching stories. Failures are logged
// and yield an empty slice.
func (s *HackerNews) Search(ctx context.Context, query string, maxResults int) ([]domain.RelatedHit, error) {
	reqURL := fmt.Sprintf("%s/search?query=%s&tags=story&hitsPerPage=%d",
		s.base, url.QueryEscape(query), maxResults)

	var resp algoliaResponse
	if err := getJSON(ctx, s.client, reqURL, &resp); err != nil {
		s.log.Warn("story search failed", "backend", "hackernews", "error", err)
		return nil, nil
	}

	hits := make([]domain.RelatedHit, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		hitURL := h.URL
		if hitURL == "" {
			hitURL = "https://news.ycombinator.com/item?id=" + h.ObjectID
		}
		hits = append(hits, domain.RelatedHit{
			Title:    h.Title,
			URL:      hitURL,
			Source:   "hackernews",
			Score:    float64(h.Points),
			Comments: h.NumComments,
		})
	}
	return hits, nil
}
