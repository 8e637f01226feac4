package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
ai:
  provider: anthropic
  model: claude-sonnet-4-5
  apiKeyEnv: TEST_AI_KEY
filtering:
  scoreThreshold: 8.5
  timeWindowHours: 12
sources:
  hackernews:
    enabled: true
    topStories: 50
  rss:
    - name: Blog
      url: https://blog.example.com/feed.xml
      category: tech
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	t.Setenv("TEST_AI_KEY", "secret")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AI.Provider != "anthropic" {
		t.Errorf("provider = %q", cfg.AI.Provider)
	}
	if cfg.AI.APIKey() != "secret" {
		t.Errorf("api key not resolved from env")
	}
	if cfg.Filtering.ScoreThreshold != 8.5 {
		t.Errorf("threshold = %v", cfg.Filtering.ScoreThreshold)
	}
	// File values override defaults; untouched defaults survive.
	if cfg.Sources.HackerNews.TopStories != 50 {
		t.Errorf("topStories = %d", cfg.Sources.HackerNews.TopStories)
	}
	if cfg.Sources.HackerNews.MinScore != 100 {
		t.Errorf("default minScore lost: %d", cfg.Sources.HackerNews.MinScore)
	}
	if cfg.AI.BatchSize != 10 {
		t.Errorf("default batch size lost: %d", cfg.AI.BatchSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadMissingCredential(t *testing.T) {
	t.Setenv("TEST_AI_KEY", "")

	if _, err := Load(writeConfig(t, validYAML)); err == nil {
		t.Fatalf("expected error when credential env is empty")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("TEST_AI_KEY", "secret")

	cases := map[string]string{
		"unknown provider": `
ai:
  provider: closedai
  model: x
  apiKeyEnv: TEST_AI_KEY
`,
		"threshold out of range": `
ai:
  provider: openai
  model: x
  apiKeyEnv: TEST_AI_KEY
filtering:
  scoreThreshold: 12
`,
		"bad enrichment strategy": `
ai:
  provider: openai
  model: x
  apiKeyEnv: TEST_AI_KEY
enrichment:
  strategy: telepathy
`,
	}

	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestGitHubTokenFromEnv(t *testing.T) {
	t.Setenv("TEST_AI_KEY", "secret")
	t.Setenv("GITHUB_TOKEN", "ghp_abc")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sources.GitHub.Token() != "ghp_abc" {
		t.Errorf("token not picked up from environment")
	}
}
