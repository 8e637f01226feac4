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

const githubAPIBase = "https://api.github.com"

// GitHubSource collects public activity of tracked users and releases
// of tracked repositories.
type GitHubSource struct {
	cfg    config.GitHubConfig
	base   string
	client *http.Client
	log    *slog.Logger
}

var _ ports.Source = (*GitHubSource)(nil)

// NewGitHubSource wires the collector with a shared HTTP client. An
// API token is optional and only raises the rate limit.
func NewGitHubSource(cfg config.GitHubConfig, client *http.Client, log *slog.Logger) *GitHubSource {
	return &GitHubSource{cfg: cfg, base: githubAPIBase, client: client, log: log}
}

func (s *GitHubSource) Name() string { return "github" }

type ghEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Actor     struct {
		Login string `json:"login"`
	} `json:"actor"`
	Repo struct {
		Name string `json:"name"`
	} `json:"repo"`
	Payload struct {
		Ref     string `json:"ref"`
		RefType string `json:"ref_type"`
		Action  string `json:"action"`
		Commits []struct {
			Message string `json:"message"`
		} `json:"commits"`
		Release struct {
			TagName string `json:"tag_name"`
			Name    string `json:"name"`
			Body    string `json:"body"`
			HTMLURL string `json:"html_url"`
		} `json:"release"`
	} `json:"payload"`
}

type ghRelease struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	Author      struct {
		Login string `json:"login"`
	} `json:"author"`
}

// Fetch walks tracked users then tracked repositories. Each entity is
// isolated: a 404 on one user never blocks the rest.
func (s *GitHubSource) Fetch(ctx context.Context, since time.Time) ([]domain.ContentItem, error) {
	var items []domain.ContentItem

	for _, user := range s.cfg.Users {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		userItems, err := s.fetchUserEvents(ctx, user, since)
		if err != nil {
			s.log.Warn("user events failed", "user", user, "error", err)
			continue
		}
		items = append(items, userItems...)
	}

	for _, repo := range s.cfg.Repos {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		releaseItems, err := s.fetchRepoReleases(ctx, repo, since)
		if err != nil {
			s.log.Warn("repo releases failed", "owner", repo.Owner, "repo", repo.Repo, "error", err)
			continue
		}
		items = append(items, releaseItems...)
	}

	return items, nil
}

func (s *GitHubSource) fetchUserEvents(ctx context.Context, user string, since time.Time) ([]domain.ContentItem, error) {
	url := fmt.Sprintf("%s/users/%s/events/public?per_page=100", s.base, user)

	var events []ghEvent
	if err := getJSON(ctx, s.client, url, s.headers(), &events); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var items []domain.ContentItem
	for _, ev := range events {
		if ev.CreatedAt.Before(since) {
			continue
		}

		title, content, ok := describeEvent(ev)
		if !ok {
			continue
		}

		items = append(items, domain.ContentItem{
			ID:          domain.ItemID(domain.SourceGitHub, "event", ev.ID),
			Source:      domain.SourceGitHub,
			Title:       title,
			URL:         eventURL(ev),
			Content:     content,
			Author:      ev.Actor.Login,
			PublishedAt: ev.CreatedAt.UTC(),
			FetchedAt:   now,
			Metadata: domain.Metadata{
				"event_type": domain.Text(ev.Type),
				"repo":       domain.Text(ev.Repo.Name),
			},
		})
	}
	return items, nil
}

func (s *GitHubSource) fetchRepoReleases(ctx context.Context, repo config.GitHubRepo, since time.Time) ([]domain.ContentItem, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=10", s.base, repo.Owner, repo.Repo)

	var releases []ghRelease
	if err := getJSON(ctx, s.client, url, s.headers(), &releases); err != nil {
		return nil, err
	}

	fullName := repo.Owner + "/" + repo.Repo
	now := time.Now().UTC()

	var items []domain.ContentItem
	for _, rel := range releases {
		if rel.Draft || rel.PublishedAt.Before(since) {
			continue
		}

		name := rel.Name
		if name == "" {
			name = rel.TagName
		}

		items = append(items, domain.ContentItem{
			ID:          domain.ItemID(domain.SourceGitHub, "release", fmt.Sprintf("%s_%d", fullName, rel.ID)),
			Source:      domain.SourceGitHub,
			Title:       fmt.Sprintf("%s: %s released", fullName, name),
			URL:         rel.HTMLURL,
			Content:     truncateText(rel.Body, 2000),
			Author:      rel.Author.Login,
			PublishedAt: rel.PublishedAt.UTC(),
			FetchedAt:   now,
			Metadata: domain.Metadata{
				"event_type": domain.Text("release"),
				"repo":       domain.Text(fullName),
				"tag":        domain.Text(rel.TagName),
				"prerelease": domain.Flag(rel.Prerelease),
			},
		})
	}
	return items, nil
}

func (s *GitHubSource) headers() map[string]string {
	h := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if tok := s.cfg.Token(); tok != "" {
		h["Authorization"] = "token " + tok
	}
	return h
}

// describeEvent turns the activity types worth surfacing into a title
// and body. Noise like issue comments is dropped.
func describeEvent(ev ghEvent) (title, content string, ok bool) {
	switch ev.Type {
	case "PushEvent":
		n := len(ev.Payload.Commits)
		if n == 0 {
			return "", "", false
		}
		var msgs []string
		for _, c := range ev.Payload.Commits {
			first, _, _ := strings.Cut(c.Message, "\n")
			msgs = append(msgs, "- "+first)
		}
		return fmt.Sprintf("%s pushed %d commit(s) to %s", ev.Actor.Login, n, ev.Repo.Name),
			strings.Join(msgs, "\n"), true

	case "CreateEvent":
		if ev.Payload.RefType != "repository" && ev.Payload.RefType != "tag" {
			return "", "", false
		}
		return fmt.Sprintf("%s created %s %s", ev.Actor.Login, ev.Payload.RefType, ev.Repo.Name),
			"", true

	case "ReleaseEvent":
		if ev.Payload.Action != "published" {
			return "", "", false
		}
		rel := ev.Payload.Release
		name := rel.Name
		if name == "" {
			name = rel.TagName
		}
		return fmt.Sprintf("%s released %s in %s", ev.Actor.Login, name, ev.Repo.Name),
			truncateText(rel.Body, 2000), true

	case "PublicEvent":
		return fmt.Sprintf("%s open sourced %s", ev.Actor.Login, ev.Repo.Name), "", true

	case "WatchEvent":
		return fmt.Sprintf("%s starred %s", ev.Actor.Login, ev.Repo.Name), "", true
	}
	return "", "", false
}

func eventURL(ev ghEvent) string {
	if ev.Type == "ReleaseEvent" && ev.Payload.Release.HTMLURL != "" {
		return ev.Payload.Release.HTMLURL
	}
	return "https://github.com/" + ev.Repo.Name
}
