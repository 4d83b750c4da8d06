// Package web provides the URL fetch tool.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oakworth/steward/internal/agent"
	"github.com/oakworth/steward/internal/retry"
)

const maxFetchBytes = 500_000

// FetchTool retrieves a URL and returns the response body as text.
// Transient failures are retried with backoff; 4xx responses are not.
type FetchTool struct {
	client *http.Client
}

var _ agent.Tool = (*FetchTool)(nil)

// NewFetchTool creates a fetch tool with the given request timeout.
func NewFetchTool(timeout time.Duration) *FetchTool {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FetchTool{client: &http.Client{Timeout: timeout}}
}

func (t *FetchTool) Name() string { return "web_fetch" }

func (t *FetchTool) Description() string {
	return "Fetch a URL over HTTP(S) and return the response body."
}

func (t *FetchTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {"type": "string", "description": "URL to fetch (http or https)."}
		},
		"required": ["url"]
	}`)
}

func (t *FetchTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}

	parsed, err := url.Parse(strings.TrimSpace(input.URL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return &agent.ToolResult{Content: "url must be http or https", IsError: true}, nil
	}

	body, err := retry.DoWithValue(ctx, retry.DefaultConfig(), func() (string, error) {
		return t.fetch(ctx, parsed.String())
	})
	if err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("fetch failed: %v", err), IsError: true}, nil
	}
	return &agent.ToolResult{Content: body}, nil
}

func (t *FetchTool) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", retry.Permanent(err)
	}
	req.Header.Set("User-Agent", "steward/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", retry.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxFetchBytes {
		data = data[:maxFetchBytes]
		return string(data) + "\n... (truncated)", nil
	}
	if len(data) == 0 {
		return "", retry.Permanent(errors.New("empty response body"))
	}
	return string(data), nil
}
