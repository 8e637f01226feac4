package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	githubTokenEnv = "GITHUB_TOKEN"

	defaultBatchSize     = 10
	defaultMaxTokens     = 4096
	defaultThreshold     = 7.0
	defaultWindowHours   = 24
	defaultMaxRelated    = 5
	defaultFetchComments = 5
)

// Config holds every setting required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	AI         AIConfig         `yaml:"ai"`
	Filtering  FilteringConfig  `yaml:"filtering"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Storage    StorageConfig    `yaml:"storage"`
	Sources    SourcesConfig    `yaml:"sources"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AIConfig defines which model backend scores and enriches content.
// The API key is never stored in the file; APIKeyEnv names the
// environment variable that holds it.
type AIConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"baseUrl"`
	APIKeyEnv   string  `yaml:"apiKeyEnv"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
	BatchSize   int     `yaml:"batchSize"`
}

// APIKey resolves the configured credential from the environment.
func (a AIConfig) APIKey() string {
	if a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}

// FilteringConfig bounds what the digest keeps.
type FilteringConfig struct {
	ScoreThreshold  float64 `yaml:"scoreThreshold"`
	TimeWindowHours int     `yaml:"timeWindowHours"`
}

// Window returns the fetch cutoff duration.
func (f FilteringConfig) Window() time.Duration {
	return time.Duration(f.TimeWindowHours) * time.Hour
}

// EnrichmentConfig selects the second-pass strategy.
type EnrichmentConfig struct {
	// Strategy is "search" (concept extraction + web-search grounding)
	// or "related" (related-story synthesis). Empty disables enrichment.
	Strategy   string `yaml:"strategy"`
	MaxRelated int    `yaml:"maxRelated"`
}

// StorageConfig locates the on-disk state: digests and the seen-item DB.
type StorageConfig struct {
	DataDir string `yaml:"dataDir"`
}

// SourcesConfig groups per-platform collector settings.
type SourcesConfig struct {
	GitHub     GitHubConfig     `yaml:"github"`
	HackerNews HackerNewsConfig `yaml:"hackernews"`
	RSS        []RSSFeedConfig  `yaml:"rss"`
	Reddit     RedditConfig     `yaml:"reddit"`
	Telegram   TelegramConfig   `yaml:"telegram"`
}

// GitHubConfig lists tracked users and repositories.
type GitHubConfig struct {
	Users []string     `yaml:"users"`
	Repos []GitHubRepo `yaml:"repos"`
	token string       `yaml:"-"`
}

// GitHubRepo identifies one repository whose releases are tracked.
type GitHubRepo struct {
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

// Token returns the optional GitHub API token from the environment.
func (g GitHubConfig) Token() string { return g.token }

// Enabled reports whether any GitHub source is configured.
func (g GitHubConfig) Enabled() bool { return len(g.Users) > 0 || len(g.Repos) > 0 }

// HackerNewsConfig controls the front-page collector.
type HackerNewsConfig struct {
	Enabled       bool `yaml:"enabled"`
	TopStories    int  `yaml:"topStories"`
	MinScore      int  `yaml:"minScore"`
	FetchComments int  `yaml:"fetchComments"`
}

// RSSFeedConfig describes one syndication feed.
type RSSFeedConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	Disabled bool   `yaml:"disabled"`
}

// RedditConfig describes tracked subreddits and users.
type RedditConfig struct {
	Enabled       bool                  `yaml:"enabled"`
	Subreddits    []RedditListingConfig `yaml:"subreddits"`
	Users         []RedditUserConfig    `yaml:"users"`
	FetchComments int                   `yaml:"fetchComments"`
}

// RedditListingConfig describes one subreddit listing.
type RedditListingConfig struct {
	Name       string `yaml:"name"`
	Sort       string `yaml:"sort"`
	TimeFilter string `yaml:"timeFilter"`
	Limit      int    `yaml:"limit"`
	MinScore   int    `yaml:"minScore"`
}

// RedditUserConfig describes one tracked account's submissions.
type RedditUserConfig struct {
	Username string `yaml:"username"`
	Limit    int    `yaml:"limit"`
}

// TelegramConfig lists public channels read via web preview.
type TelegramConfig struct {
	Channels []TelegramChannelConfig `yaml:"channels"`
}

// TelegramChannelConfig describes one public channel.
type TelegramChannelConfig struct {
	Channel string `yaml:"channel"`
	Limit   int    `yaml:"limit"`
}

// Load reads and validates YAML configuration. Any missing file, parse
// error or invalid setting is fatal: the run must abort before fetching.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.Sources.GitHub.token = v
	}
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case "anthropic", "openai", "gemini":
	case "":
		return fmt.Errorf("ai.provider is required")
	default:
		return fmt.Errorf("unsupported ai.provider %q", c.AI.Provider)
	}

	if c.AI.Model == "" {
		return fmt.Errorf("ai.model is required")
	}
	if c.AI.APIKeyEnv == "" {
		return fmt.Errorf("ai.apiKeyEnv is required")
	}
	if c.AI.APIKey() == "" {
		return fmt.Errorf("missing credential: environment variable %s is not set", c.AI.APIKeyEnv)
	}

	if c.Filtering.ScoreThreshold < 0 || c.Filtering.ScoreThreshold > 10 {
		return fmt.Errorf("filtering.scoreThreshold must be within [0,10], got %v", c.Filtering.ScoreThreshold)
	}
	if c.Filtering.TimeWindowHours <= 0 {
		return fmt.Errorf("filtering.timeWindowHours must be positive, got %d", c.Filtering.TimeWindowHours)
	}

	switch c.Enrichment.Strategy {
	case "", "search", "related":
	default:
		return fmt.Errorf("unsupported enrichment.strategy %q", c.Enrichment.Strategy)
	}

	return nil
}

func defaults() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		AI: AIConfig{
			Temperature: 0.3,
			MaxTokens:   defaultMaxTokens,
			BatchSize:   defaultBatchSize,
		},
		Filtering: FilteringConfig{
			ScoreThreshold:  defaultThreshold,
			TimeWindowHours: defaultWindowHours,
		},
		Enrichment: EnrichmentConfig{
			Strategy:   "search",
			MaxRelated: defaultMaxRelated,
		},
		Storage: StorageConfig{DataDir: "data"},
		Sources: SourcesConfig{
			HackerNews: HackerNewsConfig{
				TopStories:    30,
				MinScore:      100,
				FetchComments: defaultFetchComments,
			},
			Reddit: RedditConfig{FetchComments: defaultFetchComments},
		},
	}
}
