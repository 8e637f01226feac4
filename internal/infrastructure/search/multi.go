package search

import (
	"context"
	"sort"
	"sync"

	"ContentRadar/internal/domain"
	"ContentRadar/internal/ports"
)

// maxConcurrentLookups bounds in-flight requests across all backends so
// a burst of enrichment queries stays polite to public APIs.
const maxConcurrentLookups = 5

// Multi fans one query out across several backends and merges the hits,
// best-scored first. Like the backends themselves it never errors.
type Multi struct {
	backends []ports.Searcher
	sem      chan struct{}
}

var _ ports.Searcher = (*Multi)(nil)

func NewMulti(backends ...ports.Searcher) *Multi {
	return &Multi{
		backends: backends,
		sem:      make(chan struct{}, maxConcurrentLookups),
	}
}

func (m *Multi) Search(ctx context.Context, query string, maxResults int) ([]domain.RelatedHit, error) {
	gathered := make([][]domain.RelatedHit, len(m.backends))

	var wg sync.WaitGroup
	for i, backend := range m.backends {
		i, backend := i, backend
		select {
		case m.sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, nil
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-m.sem }()

			callCtx, cancel := context.WithTimeout(ctx, searchTimeout)
			defer cancel()

			hits, err := backend.Search(callCtx, query, maxResults)
			if err != nil {
				return
			}
			gathered[i] = hits
		}()
	}
	wg.Wait()

	var all []domain.RelatedHit
	for _, hits := range gathered {
		all = append(all, hits...)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Score > all[j].Score })
	if len(all) > maxResults {
		all = all[:maxResults]
	}
	return all, nil
}
