// Package sources implements the per-platform collectors. Each one
// turns a public endpoint into normalized content items bounded by the
// caller's cutoff time; errors stop at the collector boundary.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const userAgent = "ContentRadar/1.0 (content aggregator)"

// getJSON fetches url and decodes the response body into v. A single
// 429 is retried once after the server-suggested delay; any other
// non-200 status is an error.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, v any) error {
	body, err := getBody(ctx, client, url, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// getBody fetches url and returns the raw response body, honoring one
// Retry-After pause on 429.
func getBody(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	resp, err := get(ctx, client, url, headers)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		wait := retryAfter(resp)
		_ = resp.Body.Close()

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		resp, err = get(ctx, client, url, headers)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

func get(ctx context.Context, client *http.Client, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	return resp, nil
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After")))
	if err != nil || secs <= 0 {
		secs = 5
	}
	if secs > 30 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

// truncateText bounds s to max runes with an ellipsis marker.
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
