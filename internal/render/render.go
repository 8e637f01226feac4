// Package render turns the final record list into the Markdown digest.
// It is fully deterministic and performs no network calls.
package render

import (
	"fmt"
	"strings"

	"ContentRadar/internal/domain"
)

// highlightScore is the high-water mark above which items land in the
// highlights section instead of a topic section.
const highlightScore = 9.0

// section is one named group of digest blocks.
type section struct {
	title string
	items []domain.ContentItem
}

// sectionOrder fixes the order topic sections appear in.
var sectionOrder = []string{
	"AI & Machine Learning",
	"Software Engineering",
	"Systems & Infrastructure",
	"Security",
	"Science & Research",
	"Other Updates",
}

// tagSections maps model-assigned tags to digest section names. The
// first matching tag of an item decides its section; unmatched items
// fall back to "Other Updates".
var tagSections = map[string]string{
	"ai":               "AI & Machine Learning",
	"ml":               "AI & Machine Learning",
	"machine-learning": "AI & Machine Learning",
	"llm":              "AI & Machine Learning",
	"deep-learning":    "AI & Machine Learning",
	"programming":      "Software Engineering",
	"golang":           "Software Engineering",
	"rust":             "Software Engineering",
	"python":           "Software Engineering",
	"javascript":       "Software Engineering",
	"tools":            "Software Engineering",
	"open-source":      "Software Engineering",
	"database":         "Systems & Infrastructure",
	"networking":       "Systems & Infrastructure",
	"cloud":            "Systems & Infrastructure",
	"kubernetes":       "Systems & Infrastructure",
	"linux":            "Systems & Infrastructure",
	"performance":      "Systems & Infrastructure",
	"security":         "Security",
	"privacy":          "Security",
	"cryptography":     "Security",
	"research":         "Science & Research",
	"science":          "Science & Research",
	"paper":            "Science & Research",
}

// Digest renders the final document for one run. items must already be
// filtered and ordered by the caller; totalFetched is the pre-filter
// count shown in the header.
func Digest(items []domain.ContentItem, date string, totalFetched int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Digest - %s\n\n", date)

	if len(items) == 0 {
		fmt.Fprintf(&b, "> Analyzed %d items, but none met the importance threshold\n\n", totalFetched)
		b.WriteString("No significant developments today. This might indicate a quiet day in the tracked sources, a threshold set too high, or sources in need of expansion.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "> From %d items, %d important content pieces were selected\n\n---\n\n", totalFetched, len(items))

	for _, sec := range groupSections(items) {
		fmt.Fprintf(&b, "## %s\n\n", sec.title)
		for _, item := range sec.items {
			b.WriteString(renderBlock(item))
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// groupSections splits items into the highlights section followed by
// topic sections in fixed order. Within a section the caller's ordering
// (score descending) is preserved.
func groupSections(items []domain.ContentItem) []section {
	var highlights []domain.ContentItem
	byName := map[string][]domain.ContentItem{}

	for _, item := range items {
		if item.Score != nil && *item.Score >= highlightScore {
			highlights = append(highlights, item)
			continue
		}
		name := sectionFor(item.Tags)
		byName[name] = append(byName[name], item)
	}

	var sections []section
	if len(highlights) > 0 {
		sections = append(sections, section{title: "Today's Highlights", items: highlights})
	}
	for _, name := range sectionOrder {
		if group := byName[name]; len(group) > 0 {
			sections = append(sections, section{title: name, items: group})
		}
	}
	return sections
}

func sectionFor(tags []string) string {
	for _, tag := range tags {
		if name, ok := tagSections[strings.ToLower(tag)]; ok {
			return name
		}
	}
	return "Other Updates"
}

// renderBlock formats one item. Every semantic part is separated by an
// explicit empty line so the block renders correctly as Markdown;
// blocks end with a horizontal rule.
func renderBlock(item domain.ContentItem) string {
	var lines []string

	score := "?"
	if item.Score != nil {
		score = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", *item.Score), "0"), ".")
	}
	lines = append(lines, fmt.Sprintf("### [%s](%s) - %s/10", sanitizeTitle(item.Title), item.URL, score))

	if item.Summary != "" {
		lines = append(lines, item.Summary)
	}

	lines = append(lines, fmt.Sprintf("*Source: %s/%s · %s*", item.Source, item.SubSourceLabel(), authorOf(item)))

	if v := item.Metadata.Str("background"); v != "" {
		lines = append(lines, "**Background**: "+v)
	}
	if v := item.Metadata.Str("related_context"); v != "" {
		lines = append(lines, "**Related**: "+v)
	}
	if stories := item.Metadata.Items("related_stories"); len(stories) > 0 {
		lines = append(lines, "**See also**: "+strings.Join(stories, ", "))
	}
	if v := item.Metadata.Str("community_discussion"); v != "" {
		lines = append(lines, "**Community**: "+v)
	}
	if len(item.Tags) > 0 {
		tags := make([]string, 0, len(item.Tags))
		for _, t := range item.Tags {
			tags = append(tags, "`#"+t+"`")
		}
		lines = append(lines, "**Tags**: "+strings.Join(tags, ", "))
	}

	return strings.Join(lines, "\n\n") + "\n\n---\n\n"
}

// sanitizeTitle keeps titles from breaking the Markdown link syntax.
func sanitizeTitle(title string) string {
	title = strings.ReplaceAll(title, "[", "(")
	return strings.ReplaceAll(title, "]", ")")
}

func authorOf(item domain.ContentItem) string {
	if item.Author != "" {
		return item.Author
	}
	return "unknown"
}
