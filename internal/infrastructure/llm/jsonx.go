package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeResponse unmarshals a model response into v, tolerating the
// three shapes backends actually produce: raw JSON, JSON inside a
// ```json fence, and JSON inside an unlabeled ``` fence. Anything else
// is a parse failure for the caller to treat as a per-item error.
func DecodeResponse(raw string, v any) error {
	text := strings.TrimSpace(raw)

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	fenced, ok := extractFenced(text)
	if !ok {
		return fmt.Errorf("response is not valid JSON: %.200s", text)
	}
	if err := json.Unmarshal([]byte(fenced), v); err != nil {
		return fmt.Errorf("fenced response is not valid JSON: %w", err)
	}
	return nil
}

func extractFenced(text string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		_, rest, found := strings.Cut(text, marker)
		if !found {
			continue
		}
		inner, _, closed := strings.Cut(rest, "```")
		if !closed {
			continue
		}
		return strings.TrimSpace(inner), true
	}
	return "", false
}
