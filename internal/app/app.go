// Package app assembles configuration into a runnable digest
// application: collectors, model backend, search, storage, pipeline.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"ContentRadar/internal/analyze"
	"ContentRadar/internal/config"
	"ContentRadar/internal/enrich"
	"ContentRadar/internal/infrastructure/llm"
	"ContentRadar/internal/infrastructure/search"
	"ContentRadar/internal/infrastructure/sources"
	"ContentRadar/internal/infrastructure/storage"
	"ContentRadar/internal/logging"
	"ContentRadar/internal/source"
	"ContentRadar/internal/usecase"
)

const fetchTimeout = 30 * time.Second

// Application holds the wired pipeline and the resources it owns.
type Application struct {
	cfg      config.Config
	log      *slog.Logger
	pipeline *usecase.Pipeline
	seenDB   *storage.SeenDB
}

// New wires every component from configuration. It fails fast on
// anything that would doom the run: missing credentials, unsupported
// provider, unwritable data directory.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	client := &http.Client{Timeout: fetchTimeout}

	hub := source.NewHub(baseLogger.With("component", "hub"))
	registerSources(hub, cfg.Sources, client, baseLogger)

	completer, err := llm.New(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("model backend: %w", err)
	}

	analyzer := analyze.New(completer, cfg.AI.Temperature, cfg.AI.MaxTokens,
		baseLogger.With("component", "analyzer"),
		analyze.WithBatchSize(cfg.AI.BatchSize))

	var enricher *enrich.Enricher
	if cfg.Enrichment.Strategy != "" {
		searcher := search.NewMulti(
			search.NewHackerNews(client, baseLogger.With("component", "search.hackernews")),
			search.NewReddit(client, baseLogger.With("component", "search.reddit")),
		)
		enricher = enrich.New(completer, searcher,
			cfg.Enrichment.Strategy, cfg.Enrichment.MaxRelated, cfg.AI.MaxTokens,
			baseLogger.With("component", "enricher"))
	}

	digests, err := storage.NewDigestDir(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("digest store: %w", err)
	}

	seenDB, err := storage.OpenSeenDB(filepath.Join(cfg.Storage.DataDir, "seen.db"))
	if err != nil {
		return nil, fmt.Errorf("seen store: %w", err)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Hub:       hub,
		Seen:      seenDB,
		Analyzer:  analyzer,
		Enricher:  enricher,
		Digests:   digests,
		Threshold: cfg.Filtering.ScoreThreshold,
		Window:    cfg.Filtering.Window(),
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		log:      baseLogger,
		pipeline: pipeline,
		seenDB:   seenDB,
	}, nil
}

// registerSources adds one collector per enabled platform.
func registerSources(hub *source.Hub, cfg config.SourcesConfig, client *http.Client, log *slog.Logger) {
	if cfg.GitHub.Enabled() {
		hub.Register(sources.NewGitHubSource(cfg.GitHub, client, log.With("component", "source.github")))
	}
	if cfg.HackerNews.Enabled {
		hub.Register(sources.NewHackerNewsSource(cfg.HackerNews, client, log.With("component", "source.hackernews")))
	}
	if len(cfg.RSS) > 0 {
		hub.Register(sources.NewRSSSource(cfg.RSS, client, log.With("component", "source.rss")))
	}
	if cfg.Reddit.Enabled {
		hub.Register(sources.NewRedditSource(cfg.Reddit, client, log.With("component", "source.reddit")))
	}
	if len(cfg.Telegram.Channels) > 0 {
		hub.Register(sources.NewTelegramSource(cfg.Telegram, client, log.With("component", "source.telegram")))
	}
}

// Run executes one digest cycle.
func (a *Application) Run(ctx context.Context) error {
	path, err := a.pipeline.Run(ctx, time.Now())
	if err != nil {
		return err
	}
	a.log.Info("run complete", "digest", path)
	return nil
}

// Close releases owned resources.
func (a *Application) Close() error {
	return a.seenDB.Close()
}
