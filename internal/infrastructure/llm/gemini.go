package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"ContentRadar/internal/config"
	"ContentRadar/internal/ports"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiClient talks to the Gemini generateContent API.
type geminiClient struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

var _ ports.Completer = (*geminiClient)(nil)

func newGeminiClient(cfg config.AIConfig, apiKey string, client *http.Client) *geminiClient {
	baseURL := geminiBaseURL
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}
	return &geminiClient{
		baseURL: baseURL,
		model:   cfg.Model,
		apiKey:  apiKey,
		http:    client,
	}
}

func (c *geminiClient) Complete(ctx context.Context, creq ports.CompletionRequest) (string, error) {
	body, err := json.Marshal(map[string]any{
		"system_instruction": map[string]any{
			"parts": []map[string]string{{"text": creq.System}},
		},
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": creq.User}}},
		},
		"generationConfig": map[string]any{
			"temperature":     creq.Temperature,
			"maxOutputTokens": creq.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	raw, err := doRequest(ctx, c.http, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-goog-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
