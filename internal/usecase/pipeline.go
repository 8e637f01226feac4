// Package usecase orchestrates one digest run: fetch, dedupe, score,
// filter, enrich, render, persist.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ContentRadar/internal/analyze"
	"ContentRadar/internal/domain"
	"ContentRadar/internal/enrich"
	"ContentRadar/internal/merge"
	"ContentRadar/internal/ports"
	"ContentRadar/internal/render"
	"ContentRadar/internal/source"
)

// PipelineDeps wires the collaborators into the digest pipeline. Seen
// and Enricher are optional; everything else is required.
type PipelineDeps struct {
	Hub      *source.Hub
	Seen     ports.SeenStore
	Analyzer *analyze.Analyzer
	Enricher *enrich.Enricher
	Digests  ports.DigestStore

	Threshold float64
	Window    time.Duration
	Logger    *slog.Logger
}

// Pipeline implements the daily digest workflow.
type Pipeline struct {
	hub      *source.Hub
	seen     ports.SeenStore
	analyzer *analyze.Analyzer
	enricher *enrich.Enricher
	digests  ports.DigestStore

	threshold float64
	window    time.Duration
	log       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		hub:       deps.Hub,
		seen:      deps.Seen,
		analyzer:  deps.Analyzer,
		enricher:  deps.Enricher,
		digests:   deps.Digests,
		threshold: deps.Threshold,
		window:    deps.Window,
		log:       deps.Logger,
	}
}

// Run executes one full digest cycle for now's date and returns the
// path of the written digest. Item IDs are marked seen only after the
// digest is safely on disk, so a failed run retries cleanly.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (string, error) {
	since := now.Add(-p.window)
	p.log.Info("fetching sources", "sources", p.hub.Len(), "since", since)

	fetched := p.hub.FetchAll(ctx, since)
	totalFetched := len(fetched)
	p.log.Info("fetch complete", "items", totalFetched)

	fresh, err := p.dropSeen(ctx, fetched)
	if err != nil {
		return "", fmt.Errorf("filter seen items: %w", err)
	}
	if skipped := totalFetched - len(fresh); skipped > 0 {
		p.log.Info("skipped previously seen items", "skipped", skipped)
	}

	records := merge.Duplicates(fresh)
	if merged := len(fresh) - len(records); merged > 0 {
		p.log.Info("merged cross-source duplicates", "merged", merged)
	}

	for _, res := range p.analyzer.Analyze(ctx, records) {
		if res.Err != nil {
			p.log.Warn("item degraded to default score", "item", res.ID, "error", res.Err)
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	important := analyze.FilterImportant(records, p.threshold)
	p.log.Info("filtered by importance",
		"kept", len(important), "of", len(records), "threshold", p.threshold)

	if p.enricher != nil && len(important) > 0 {
		for _, res := range p.enricher.Enrich(ctx, important) {
			if res.Err != nil {
				p.log.Warn("enrichment skipped for item", "item", res.ID, "error", res.Err)
			}
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	date := now.UTC().Format("2006-01-02")
	markdown := render.Digest(important, date, totalFetched)

	path, err := p.digests.SaveDigest(date, markdown)
	if err != nil {
		return "", fmt.Errorf("save digest: %w", err)
	}
	p.log.Info("digest written", "path", path, "items", len(important))

	if err := p.markSeen(ctx, fetched); err != nil {
		// The digest exists; a failed bookkeeping write must not undo it.
		p.log.Warn("recording seen items failed, next run may repeat them", "error", err)
	}

	return path, nil
}

// dropSeen removes items recorded by earlier runs. Without a seen store
// every item is fresh.
func (p *Pipeline) dropSeen(ctx context.Context, items []domain.ContentItem) ([]domain.ContentItem, error) {
	if p.seen == nil || len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	seen, err := p.seen.Seen(ctx, ids)
	if err != nil {
		return nil, err
	}

	fresh := items[:0:0]
	for _, item := range items {
		if !seen[item.ID] {
			fresh = append(fresh, item)
		}
	}
	return fresh, nil
}

// markSeen records every fetched ID, including items that were merged
// away or filtered out, so they never resurface in a later digest.
func (p *Pipeline) markSeen(ctx context.Context, items []domain.ContentItem) error {
	if p.seen == nil || len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return p.seen.MarkSeen(ctx, ids)
}
