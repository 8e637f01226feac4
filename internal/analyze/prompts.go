package analyze

import (
	"fmt"
	"strings"

	"ContentRadar/internal/domain"
)

const (
	maxBodyExcerpt      = 1000
	maxBodyWithComments = 800
	maxCommentsExcerpt  = 1500
)

const scoringSystemPrompt = `You are an expert content curator helping filter important technical and academic information.

Score content on a 0-10 scale based on importance and relevance:

**9-10: Groundbreaking** - Major breakthroughs, paradigm shifts, or highly significant announcements
**7-8: High Value** - Important developments worth immediate attention: technical deep-dives, novel approaches, valuable tools
**5-6: Interesting** - Worth knowing but not urgent: incremental improvements, useful tutorials
**3-4: Low Priority** - Generic or routine content: minor updates, common knowledge, promotional material
**0-2: Noise** - Spam, off-topic content, trivial updates

Consider:
- Technical depth and novelty
- Potential impact on the field
- Relevance to software engineering, AI/ML, and systems research
- Community discussion quality: insightful comments and debates increase value
- Engagement signals: high votes with substantive discussion indicate community-validated importance`

// buildScoringPrompt assembles the per-item user prompt: a bounded
// content excerpt, an optional discussion/engagement section, and the
// required response shape.
func buildScoringPrompt(item *domain.ContentItem) string {
	var b strings.Builder

	b.WriteString("Analyze the following content and provide a JSON response with:\n")
	b.WriteString("- score (0-10): Importance score\n")
	b.WriteString("- reason: Brief explanation for the score (mention discussion quality if comments are provided)\n")
	b.WriteString("- summary: One-sentence summary of the content\n")
	b.WriteString("- tags: Relevant topic tags (3-5 tags)\n\n")

	b.WriteString("Content:\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "Source: %s\n", item.Source)
	author := item.Author
	if author == "" {
		author = "Unknown"
	}
	fmt.Fprintf(&b, "Author: %s\n", author)
	fmt.Fprintf(&b, "URL: %s\n", item.URL)

	if section := contentSection(item); section != "" {
		b.WriteString(section)
		b.WriteString("\n")
	}
	if section := discussionSection(item); section != "" {
		b.WriteString(section)
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with valid JSON only:\n")
	b.WriteString(`{
  "score": <number>,
  "reason": "<explanation>",
  "summary": "<one-sentence-summary>",
  "tags": ["<tag1>", "<tag2>", ...]
}`)

	return b.String()
}

func contentSection(item *domain.ContentItem) string {
	if item.Content == "" {
		return ""
	}

	body, comments := item.SplitComments()
	if comments != "" {
		return "Content: " + truncate(body, maxBodyWithComments)
	}
	return "Content: " + truncate(body, maxBodyExcerpt)
}

// discussionSection collects the community-comments excerpt and an
// engagement line built from structured counters, each counter included
// only when present and non-zero.
func discussionSection(item *domain.ContentItem) string {
	var parts []string

	if _, comments := item.SplitComments(); comments != "" {
		parts = append(parts, "Community Comments:\n"+truncate(comments, maxCommentsExcerpt))
	}

	meta := item.Metadata
	var engagement []string
	counters := []struct {
		key   string
		label string
	}{
		{"score", "points"},
		{"descendants", "comments"},
		{"num_comments", "comments"},
		{"favorite_count", "likes"},
		{"retweet_count", "retweets"},
		{"reply_count", "replies"},
		{"views", "views"},
		{"bookmarks", "bookmarks"},
	}
	for _, c := range counters {
		if n := meta.Float(c.key); n != 0 {
			engagement = append(engagement, fmt.Sprintf("%s: %.0f", c.label, n))
		}
	}
	if ratio := meta.Float("upvote_ratio"); ratio != 0 {
		engagement = append(engagement, fmt.Sprintf("upvote ratio: %.0f%%", ratio*100))
	}
	if len(engagement) > 0 {
		parts = append(parts, "Engagement: "+strings.Join(engagement, ", "))
	}

	if v := meta.Str("discussion_url"); v != "" {
		parts = append(parts, "Discussion: "+v)
	}

	return strings.Join(parts, "\n")
}

// truncate bounds s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
