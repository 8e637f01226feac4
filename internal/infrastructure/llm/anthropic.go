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

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
)

// anthropicClient talks to the Anthropic Messages API.
type anthropicClient struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

var _ ports.Completer = (*anthropicClient)(nil)

func newAnthropicClient(cfg config.AIConfig, apiKey string, client *http.Client) *anthropicClient {
	endpoint := anthropicEndpoint
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL + "/v1/messages"
	}
	return &anthropicClient{
		endpoint: endpoint,
		model:    cfg.Model,
		apiKey:   apiKey,
		http:     client,
	}
}

func (c *anthropicClient) Complete(ctx context.Context, creq ports.CompletionRequest) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model":       c.model,
		"max_tokens":  creq.MaxTokens,
		"temperature": creq.Temperature,
		"system":      creq.System,
		"messages": []map[string]string{
			{"role": "user", "content": creq.User},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic payload: %w", err)
	}

	raw, err := doRequest(ctx, c.http, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("anthropic returned empty content")
	}

	return parsed.Content[0].Text, nil
}
