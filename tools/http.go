package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dagflowio/dagflow/llm"
)

// HTTPSpec is the llm.ToolSpec for HTTPTool.
var HTTPSpec = llm.ToolSpec{
	Name:        "http_request",
	Description: "Make an HTTP GET or POST request and return its status and body.",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"method": map[string]any{"type": "string", "enum": []string{"GET", "POST"}},
			"url":    map[string]any{"type": "string"},
			"body":   map[string]any{"type": "string"},
		},
		"required": []string{"url"},
	},
}

// HTTPTool makes outbound HTTP requests on a model's behalf, throttled by
// a token-bucket limiter so a chatty tool-calling loop cannot overrun a
// downstream service (grounded on the teacher's tool/http.go, enriched
// with golang.org/x/time/rate since the teacher's version has no
// client-side throttling of its own).
type HTTPTool struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPTool builds an HTTPTool allowing up to rps requests per second,
// bursting up to burst.
func NewHTTPTool(rps float64, burst int) *HTTPTool {
	return &HTTPTool{
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Name returns "http_request".
func (h *HTTPTool) Name() string { return HTTPSpec.Name }

// Call issues the requested HTTP call after waiting for the rate limiter.
func (h *HTTPTool) Call(ctx context.Context, input map[string]any) (map[string]any, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tools: http_request: rate limit wait: %w", err)
	}

	method, _ := input["method"].(string)
	if method == "" {
		method = http.MethodGet
	}
	url, _ := input["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("tools: http_request requires a url")
	}
	body, _ := input["body"].(string)

	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tools: http_request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tools: http_request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tools: http_request: reading response: %w", err)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(respBody),
	}, nil
}
