// Package provider abstracts the reasoning backend that turns an analysis
// prompt into a candidate script. Adapters live in subpackages, one per
// backend protocol.
package provider

import "context"

// Reasoner abstracts an LLM inference backend. The interface is
// protocol-agnostic: each adapter handles its own backend protocol
// (Ollama generate, Chat Completions) internally.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Reasoner interface {
	// Name returns the backend identifier (e.g., "ollama", "openai-chat").
	Name() string

	// Complete performs one non-streaming inference call.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Close releases backend resources (HTTP clients, connections).
	Close() error
}

// Request is one inference call. Prompt carries the fully assembled
// instruction text; the engine owns prompt construction, adapters only
// transport it.
type Request struct {
	Prompt string

	// Model overrides the adapter's configured default when non-empty.
	Model string

	// Temperature controls sampling. Zero means the backend default.
	Temperature float64

	// MaxTokens bounds the completion length. Zero means the backend
	// default.
	MaxTokens int
}

// Response is the raw completion text plus the model that produced it.
type Response struct {
	Text  string
	Model string
}
