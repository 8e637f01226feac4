// Package merge collapses records from different sources that describe
// the same underlying resource into a single record.
package merge

import (
	"fmt"
	"net/url"
	"strings"

	"ContentRadar/internal/domain"
)

// Duplicates groups items by normalized URL and merges each group into
// one surviving record. Items whose URLs normalize to distinct keys pass
// through unchanged; group order follows first appearance in the input.
// Pure: no I/O, no failure modes.
func Duplicates(items []domain.ContentItem) []domain.ContentItem {
	groups := make(map[string][]int, len(items))
	var order []string

	for i, item := range items {
		key := NormalizeURL(item.URL)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	merged := make([]domain.ContentItem, 0, len(order))
	for _, key := range order {
		idxs := groups[key]
		if len(idxs) == 1 {
			merged = append(merged, items[idxs[0]])
			continue
		}

		group := make([]domain.ContentItem, 0, len(idxs))
		for _, i := range idxs {
			group = append(group, items[i])
		}
		merged = append(merged, mergeGroup(group))
	}

	return merged
}

// NormalizeURL reduces a URL to its dedupe key: host and path without
// scheme, leading "www.", trailing path slash or fragment. A string that
// does not parse as a URL keys on itself, so malformed records form
// their own group instead of failing the merge.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return raw
	}

	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	path := strings.TrimSuffix(parsed.Path, "/")

	return host + path
}

// mergeGroup collapses records sharing one normalized URL. The member
// with the longest content survives as primary; the others contribute
// metadata for keys the primary lacks and any content not already
// contained in the primary's.
func mergeGroup(group []domain.ContentItem) domain.ContentItem {
	primary := 0
	for i, item := range group {
		if len(item.Content) > len(group[primary].Content) {
			primary = i
		}
	}

	out := group[primary]
	if out.Metadata == nil {
		out.Metadata = domain.Metadata{}
	}

	sources := make([]string, 0, len(group))
	seenSource := make(map[domain.SourceType]bool, len(group))
	for _, item := range group {
		if !seenSource[item.Source] {
			seenSource[item.Source] = true
			sources = append(sources, string(item.Source))
		}
	}

	for i, item := range group {
		if i == primary {
			continue
		}

		// First-source-wins per key: the primary's own non-zero values
		// are never overwritten.
		for mk, mv := range item.Metadata {
			if cur, ok := out.Metadata[mk]; !ok || cur.IsZero() {
				out.Metadata[mk] = mv
			}
		}

		// Substring guard keeps duplicated bodies out of the merged
		// content; distinct text is appended with provenance.
		if item.Content != "" && !strings.Contains(out.Content, item.Content) {
			out.Content += fmt.Sprintf("\n\n--- From %s ---\n%s", item.Source, item.Content)
		}
	}

	out.Metadata["merged_sources"] = domain.List(sources...)
	return out
}
