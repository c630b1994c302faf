// Package ollama adapts a local Ollama server to the provider.Reasoner
// interface via its /api/generate endpoint.
package ollama

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

// Config holds the Ollama connection settings.
type Config struct {
	// BaseURL is the server address, e.g. "http://localhost:11434".
	BaseURL string

	// Model is the default model when the request does not name one.
	Model string

	// Timeout bounds a single generate call. Defaults to 120s.
	Timeout time.Duration
}

// Ollama implements provider.Reasoner against an Ollama server.
type Ollama struct {
	cfg    Config
	client *http.Client
}

var _ provider.Reasoner = (*Ollama)(nil)

// New creates an Ollama adapter. Returns an error if the configuration
// is invalid.
func New(cfg Config) (*Ollama, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama: BaseURL is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Ollama{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns the backend identifier.
func (o *Ollama) Name() string {
	return "ollama"
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete performs one non-streaming generate call.
func (o *Ollama) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	model := req.Model
	if model == "" {
		model = o.cfg.Model
	}
	if model == "" {
		return nil, fmt.Errorf("ollama: no model configured")
	}

	body, err := json.Marshal(generateRequest{
		Model:  model,
		Prompt: req.Prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: marshaling request: %w", err)
	}

	url := o.cfg.BaseURL + "/api/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: backend unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("ollama: backend returned %d: %s",
			httpResp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("ollama: parsing response: %w", err)
	}

	return &provider.Response{Text: genResp.Response, Model: genResp.Model}, nil
}

// Close releases the HTTP client's idle connections.
func (o *Ollama) Close() error {
	o.client.CloseIdleConnections()
	return nil
}
