package render

import (
	"strings"
	"testing"

	"ContentRadar/internal/domain"
)

func scored(id, title, url string, score float64, tags ...string) domain.ContentItem {
	return domain.ContentItem{
		ID:       id,
		Source:   domain.SourceHackerNews,
		Title:    title,
		URL:      url,
		Author:   "alice",
		Score:    &score,
		Summary:  "summary of " + title,
		Tags:     tags,
		Metadata: domain.Metadata{},
	}
}

func TestDigestEmpty(t *testing.T) {
	t.Parallel()

	out := Digest(nil, "2026-08-24", 42)
	if !strings.Contains(out, "2026-08-24") {
		t.Error("header must carry the date")
	}
	if !strings.Contains(out, "No significant developments") {
		t.Errorf("expected placeholder body, got:\n%s", out)
	}
	if strings.Contains(out, "###") {
		t.Error("empty digest must not contain item blocks")
	}
}

func TestDigestSingleHighlight(t *testing.T) {
	t.Parallel()

	items := []domain.ContentItem{
		scored("a", "Big Release", "https://example.com/a", 9.5, "tools"),
	}

	out := Digest(items, "2026-08-24", 10)

	if !strings.Contains(out, "## Today's Highlights") {
		t.Errorf("expected highlights section for score >= 9:\n%s", out)
	}
	if got := strings.Count(out, "### "); got != 1 {
		t.Errorf("expected exactly one block, got %d", got)
	}
	if !strings.Contains(out, "[Big Release](https://example.com/a) - 9.5/10") {
		t.Errorf("title link line malformed:\n%s", out)
	}
	if !strings.Contains(out, "From 10 items, 1 important content pieces were selected") {
		t.Errorf("header counts missing:\n%s", out)
	}
}

func TestDigestSectionGrouping(t *testing.T) {
	t.Parallel()

	items := []domain.ContentItem{
		scored("a", "Model Drop", "https://example.com/a", 8.0, "llm"),
		scored("b", "Kernel Patch", "https://example.com/b", 7.5, "linux"),
		scored("c", "Mystery Item", "https://example.com/c", 7.0, "unmapped-tag"),
	}

	out := Digest(items, "2026-08-24", 20)

	for _, want := range []string{"## AI & Machine Learning", "## Systems & Infrastructure", "## Other Updates"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing section %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## Today's Highlights") {
		t.Error("no item reached the highlight mark")
	}

	// Section order is fixed: AI before Systems before Other.
	ai := strings.Index(out, "## AI & Machine Learning")
	sys := strings.Index(out, "## Systems & Infrastructure")
	other := strings.Index(out, "## Other Updates")
	if !(ai < sys && sys < other) {
		t.Errorf("section order wrong: ai=%d sys=%d other=%d", ai, sys, other)
	}
}

func TestDigestBlockSpacingAndEnrichment(t *testing.T) {
	t.Parallel()

	item := scored("a", "Annotated Story", "https://example.com/a", 8.0, "security")
	item.Metadata["background"] = domain.Text("Some background prose.")
	item.Metadata["community_discussion"] = domain.Text("Commenters disagree politely.")

	out := Digest([]domain.ContentItem{item}, "2026-08-24", 3)

	if !strings.Contains(out, "**Background**: Some background prose.") {
		t.Errorf("background line missing:\n%s", out)
	}
	if !strings.Contains(out, "**Community**: Commenters disagree politely.") {
		t.Errorf("community line missing:\n%s", out)
	}
	if !strings.Contains(out, "**Tags**: `#security`") {
		t.Errorf("tags line missing:\n%s", out)
	}

	// Semantic parts are separated by blank lines.
	if !strings.Contains(out, "summary of Annotated Story\n\n*Source:") {
		t.Errorf("missing blank line between summary and attribution:\n%s", out)
	}
}

func TestDigestSanitizesTitleBrackets(t *testing.T) {
	t.Parallel()

	items := []domain.ContentItem{
		scored("a", "[Show] A thing", "https://example.com/a", 8.0),
	}

	out := Digest(items, "2026-08-24", 1)
	if !strings.Contains(out, "[(Show) A thing](https://example.com/a)") {
		t.Errorf("brackets not sanitized:\n%s", out)
	}
}
