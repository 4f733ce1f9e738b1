package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"insight_server/core/port/out"
	"insight_server/pkg/apperr"
)

func completionResponse(content string) string {
	return `{"id":"cmpl-1","object":"chat.completion","choices":[` +
		`{"index":0,"message":{"role":"assistant","content":"` + content + `"},"finish_reason":"stop"}]}`
}

func TestClientDefaults(t *testing.T) {
	c := NewClient(ClientConfig{APIKey: "k"}, nil)

	if c.cfg.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q", c.cfg.BaseURL)
	}
	if c.cfg.Model != DefaultModel {
		t.Errorf("model = %q", c.cfg.Model)
	}
	if c.cfg.MaxTokens != defaultMaxTokens {
		t.Errorf("max tokens = %d", c.cfg.MaxTokens)
	}
	if c.cfg.Temperature != defaultTemperature {
		t.Errorf("temperature = %f", c.cfg.Temperature)
	}
}

func TestClientComplete(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("  - summary line  ")))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	defer c.Close()

	got, err := c.Complete(context.Background(), out.PromptRequest{
		System: "sys",
		User:   "user",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "- summary line" {
		t.Errorf("content must be trimmed, got %q", got)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestClientCompleteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	defer c.Close()

	_, err := c.Complete(context.Background(), out.PromptRequest{User: "u"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.IsUpstream(err) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestClientCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL}, nil)
	defer c.Close()

	_, err := c.Complete(context.Background(), out.PromptRequest{User: "u"})
	if !apperr.IsUpstream(err) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestClientCloseIdempotentAndReusable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("ok")))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{APIKey: "k", BaseURL: srv.URL}, nil)

	c.Close()
	c.Close() // double close is a no-op

	// A closed client must come back on the next call.
	got, err := c.Complete(context.Background(), out.PromptRequest{User: "u"})
	if err != nil {
		t.Fatalf("complete after close failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q", got)
	}
	c.Close()
}
