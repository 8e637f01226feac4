package enrich

import (
	"fmt"
	"strings"

	"ContentRadar/internal/domain"
)

const maxEnrichContent = 1200

const conceptSystemPrompt = `You identify technical concepts in news that a reader might not know.
Given a news item, return 1-3 search queries for concepts that need explanation.
Focus on: specific technologies, protocols, algorithms, tools, or projects that are not widely known.
Do NOT return queries for well-known things (e.g. "Python", "Linux", "Google").
If the news is self-explanatory, return an empty list.`

const enrichmentSystemPrompt = `You are a knowledgeable technical writer who helps readers understand important news in context.

Given a high-scoring news item, its content, and web search results about the topic, produce a structured analysis:

1. whats_new (1-2 complete sentences): What exactly happened or changed. Be specific about names, versions, numbers.
2. why_it_matters (1-2 complete sentences): Why this is significant and who is affected.
3. key_details (1-2 complete sentences): Notable technical details, limitations or caveats.
4. background (2-4 sentences): Background knowledge helping a reader without deep domain expertise. Empty string if the news is self-explanatory.
5. community_discussion (1-3 sentences): Summary of community sentiment and key viewpoints if comments are provided; empty string otherwise.

Guidelines:
- Every populated field must contain at least one complete sentence, never a bare phrase.
- Base the explanation on the provided content and search results; do NOT fabricate information.
- Only explain concepts explicitly mentioned in the title, summary or content.`

const relatedSystemPrompt = `You are a knowledgeable technical writer who places news in context.

Given a news item and a list of related stories found via search, produce:

1. background (2-4 complete sentences): Background knowledge helping a reader understand the news. Empty string if self-explanatory.
2. related_context (1-3 complete sentences): How the related stories connect to this item: recurring themes, earlier developments, disagreements.

Every populated field must be complete prose, never a bare phrase. Do not fabricate information.`

func buildConceptPrompt(item *domain.ContentItem) string {
	body, _ := item.SplitComments()

	var b strings.Builder
	b.WriteString("What concepts in this news might need explanation?\n\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "Summary: %s\n", item.Summary)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(item.Tags, ", "))
	fmt.Fprintf(&b, "Content: %s\n", truncate(body, maxEnrichContent))
	b.WriteString("\nRespond with valid JSON only:\n")
	b.WriteString(`{"queries": ["<search query 1>", "<search query 2>"]}`)
	return b.String()
}

func buildEnrichmentPrompt(item *domain.ContentItem, webContext string) string {
	body, comments := item.SplitComments()

	var b strings.Builder
	b.WriteString("Provide a structured analysis for the following news item.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "URL: %s\n", item.URL)
	fmt.Fprintf(&b, "One-line summary: %s\n", item.Summary)
	if item.Score != nil {
		fmt.Fprintf(&b, "Score: %.1f/10\n", *item.Score)
	}
	fmt.Fprintf(&b, "Reason: %s\n", item.Reason)
	fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(item.Tags, ", "))

	fmt.Fprintf(&b, "Content:\n%s\n", truncate(body, maxEnrichContent))
	if comments != "" {
		fmt.Fprintf(&b, "\nCommunity comments:\n%s\n", truncate(comments, maxEnrichContent))
	}

	b.WriteString("\nWeb search results (for grounding):\n")
	if webContext == "" {
		b.WriteString("No search results available.\n")
	} else {
		b.WriteString(webContext)
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with valid JSON only:\n")
	b.WriteString(`{
  "whats_new": "<sentences>",
  "why_it_matters": "<sentences>",
  "key_details": "<sentences>",
  "background": "<sentences or empty string>",
  "community_discussion": "<sentences or empty string>"
}`)
	return b.String()
}

func buildRelatedPrompt(item *domain.ContentItem, hits []domain.RelatedHit) string {
	var b strings.Builder
	b.WriteString("Provide background and related context for the following news item.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "URL: %s\n", item.URL)
	fmt.Fprintf(&b, "One-line summary: %s\n", item.Summary)
	fmt.Fprintf(&b, "Reason: %s\n\n", item.Reason)

	b.WriteString("Related stories:\n")
	if len(hits) == 0 {
		b.WriteString("No related stories found.\n")
	}
	for _, hit := range hits {
		fmt.Fprintf(&b, "- [%s](%s) (source: %s, score: %.0f)\n", hit.Title, hit.URL, hit.Source, hit.Score)
	}

	b.WriteString("\nRespond with valid JSON only:\n")
	b.WriteString(`{
  "background": "<sentences or empty string>",
  "related_context": "<sentences>"
}`)
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
