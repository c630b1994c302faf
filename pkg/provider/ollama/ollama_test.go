package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rhuss/cortex/pkg/provider"
)

func TestCompleteSendsGenerateRequest(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{
			Model:    got.Model,
			Response: "```js\nresult = 1;\n```",
			Done:     true,
		})
	}))
	defer srv.Close()

	o, err := New(Config{BaseURL: srv.URL, Model: "llama3"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer o.Close()

	resp, err := o.Complete(context.Background(), &provider.Request{
		Prompt:      "compute something",
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if got.Model != "llama3" {
		t.Errorf("model = %q, want llama3", got.Model)
	}
	if got.Stream {
		t.Error("stream should be false")
	}
	if got.Prompt != "compute something" {
		t.Errorf("prompt = %q", got.Prompt)
	}
	if resp.Text != "```js\nresult = 1;\n```" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestCompleteRequestModelOverridesDefault(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(generateResponse{Model: got.Model, Done: true})
	}))
	defer srv.Close()

	o, _ := New(Config{BaseURL: srv.URL, Model: "llama3"})
	defer o.Close()

	_, err := o.Complete(context.Background(), &provider.Request{Prompt: "x", Model: "mistral"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Model != "mistral" {
		t.Errorf("model = %q, want mistral", got.Model)
	}
}

func TestCompleteBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o, _ := New(Config{BaseURL: srv.URL, Model: "llama3"})
	defer o.Close()

	_, err := o.Complete(context.Background(), &provider.Request{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing BaseURL")
	}
}

func TestCompleteRequiresModel(t *testing.T) {
	o, _ := New(Config{BaseURL: "http://localhost:11434"})
	if _, err := o.Complete(context.Background(), &provider.Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error when no model is configured")
	}
}
