// Package llm provides model-backend clients behind the ports.Completer
// contract. One variant exists per provider; the factory selects it once
// at startup from configuration.
package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ContentRadar/internal/config"
	"ContentRadar/internal/ports"
)

const (
	requestTimeout = 60 * time.Second
	maxRetryAfter  = 30 * time.Second
	defaultBackoff = 5 * time.Second
	errBodyPreview = 1024
)

// New builds the provider client selected by configuration. A missing
// credential is a fatal configuration error surfaced before any fetching.
func New(cfg config.AIConfig) (ports.Completer, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key: %s", cfg.APIKeyEnv)
	}

	httpClient := &http.Client{Timeout: requestTimeout}

	switch cfg.Provider {
	case "anthropic":
		return newAnthropicClient(cfg, apiKey, httpClient), nil
	case "openai":
		return newOpenAIClient(cfg, apiKey, httpClient), nil
	case "gemini":
		return newGeminiClient(cfg, apiKey, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// doRequest executes req and returns the response body. A single 429 is
// retried once after the server-suggested delay; any other non-2xx
// status is an error carrying a body excerpt.
func doRequest(ctx context.Context, client *http.Client, build func() (*http.Request, error)) ([]byte, error) {
	req, err := build()
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfter(resp)
		_ = resp.Body.Close()

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		req, err = build()
		if err != nil {
			return nil, fmt.Errorf("rebuild request: %w", err)
		}
		resp, err = client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("retry request: %w", err)
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyPreview))
		return nil, fmt.Errorf("provider error %s: %s", resp.Status, strings.TrimSpace(string(preview)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func retryAfter(resp *http.Response) time.Duration {
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return defaultBackoff
	}
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || secs <= 0 {
		return defaultBackoff
	}
	wait := time.Duration(secs) * time.Second
	if wait > maxRetryAfter {
		return maxRetryAfter
	}
	return wait
}
