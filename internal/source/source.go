// Package source coordinates the per-platform collectors: a registry of
// enabled sources and a concurrent fan-out with isolated failure.
package source

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
)

// Hub fans fetches out across all registered collectors and gathers the
// results. One collector failing contributes zero items and never
// cancels its siblings.
type Hub struct {
	sources []ports.Source
	log     *slog.Logger
}

// NewHub builds an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log}
}

// Register adds a collector to the hub.
func (h *Hub) Register(src ports.Source) {
	h.sources = append(h.sources, src)
}

// Len reports how many collectors are registered.
func (h *Hub) Len() int { return len(h.sources) }

// FetchAll runs every collector concurrently and returns the combined
// item list. Results are appended in registration order so output is
// deterministic regardless of completion order.
func (h *Hub) FetchAll(ctx context.Context, since time.Time) []domain.ContentItem {
	gathered := make([][]domain.ContentItem, len(h.sources))

	var wg sync.WaitGroup
	for i, src := range h.sources {
		i, src := i, src
		wg.Add(1)
		go func() {
			defer wg.Done()

			items, err := src.Fetch(ctx, since)
			if err != nil {
				h.log.Warn("source failed, contributing zero items",
					"source", src.Name(), "error", err)
				return
			}
			h.log.Info("source fetched", "source", src.Name(), "items", len(items))
			gathered[i] = items
		}()
	}
	wg.Wait()

	var all []domain.ContentItem
	for _, items := range gathered {
		all = append(all, items...)
	}
	return all
}
