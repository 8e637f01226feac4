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

const openaiEndpoint = "https://api.openai.com/v1/chat/completions"

// openaiClient talks to OpenAI-compatible chat-completion APIs; a base
// URL override points it at any compatible gateway.
type openaiClient struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

var _ ports.Completer = (*openaiClient)(nil)

func newOpenAIClient(cfg config.AIConfig, apiKey string, client *http.Client) *openaiClient {
	endpoint := openaiEndpoint
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL + "/chat/completions"
	}
	return &openaiClient{
		endpoint: endpoint,
		model:    cfg.Model,
		apiKey:   apiKey,
		http:     client,
	}
}

func (c *openaiClient) Complete(ctx context.Context, creq ports.CompletionRequest) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"temperature": creq.Temperature,
		"max_tokens":  creq.MaxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": creq.System},
			{"role": "user", "content": creq.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal openai payload: %w", err)
	}

	raw, err := doRequest(ctx, c.http, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
