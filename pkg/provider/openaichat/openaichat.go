// Package openaichat adapts any OpenAI-compatible Chat Completions
// backend (OpenAI, vLLM, LiteLLM) to the provider.Reasoner interface.
package openaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rhuss/cortex/pkg/provider"
)

// Config holds the Chat Completions connection settings.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.openai.com".
	BaseURL string

	// APIKey is sent as a Bearer token when non-empty.
	APIKey string

	// Model is the default model when the request does not name one.
	Model string

	// Timeout bounds a single completion call. Defaults to 120s.
	Timeout time.Duration
}

// Client implements provider.Reasoner against a Chat Completions endpoint.
type Client struct {
	cfg    Config
	client *http.Client
}

var _ provider.Reasoner = (*Client)(nil)

// New creates a Chat Completions adapter. Returns an error if the
// configuration is invalid.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("openaichat: BaseURL is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns the backend identifier.
func (c *Client) Name() string {
	return "openai-chat"
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete performs one non-streaming Chat Completions call. The whole
// assembled prompt travels as a single user message.
func (c *Client) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	if model == "" {
		return nil, fmt.Errorf("openaichat: no model configured")
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openaichat: marshaling request: %w", err)
	}

	url := c.cfg.BaseURL + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openaichat: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openaichat: backend unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("openaichat: backend returned %d: %s",
			httpResp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("openaichat: parsing response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openaichat: backend returned no choices")
	}

	return &provider.Response{Text: resp.Choices[0].Message.Content, Model: resp.Model}, nil
}

// Close releases the HTTP client's idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
