// Package llm contains the completion client and the insight engines
// built on top of it (summarization, tone).
package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"insight_server/core/port/out"
	"insight_server/pkg/apperr"
	"insight_server/pkg/httputil"
	"insight_server/pkg/ratelimit"
)

const (
	// DefaultBaseURL targets an OpenRouter-compatible chat-completions API.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "meta-llama/llama-3.1-8b-instruct"

	defaultTemperature = 0.2
	defaultMaxTokens   = 100

	limiterKey = "completions"
)

// ClientConfig holds completion client configuration.
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float32
	RequestTimeout time.Duration
}

// Client is the process-wide completion client. The underlying HTTP
// connection pool is created lazily on first use and reused across all
// calls; Close is idempotent and a closed client recreates the pool on
// the next call.
type Client struct {
	cfg     ClientConfig
	shared  *httputil.SharedClient
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker

	mu  sync.Mutex
	api *openai.Client
}

var _ out.CompletionPort = (*Client)(nil)

// NewClient creates a completion client. limiter may be nil to disable
// pacing (tests).
func NewClient(cfg ClientConfig, limiter *ratelimit.Limiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 90 * time.Second
	}

	return &Client{
		cfg:     cfg,
		shared:  httputil.NewSharedClient(httputil.CompletionClientConfig()),
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "completions",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// getAPI returns the lazily-created upstream client.
func (c *Client) getAPI() *openai.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api == nil {
		cfg := openai.DefaultConfig(c.cfg.APIKey)
		cfg.BaseURL = c.cfg.BaseURL
		cfg.HTTPClient = c.shared.Get()
		c.api = openai.NewClientWithConfig(cfg)
	}
	return c.api
}

// Complete sends one system/user prompt pair and returns the trimmed
// first-choice content. Any transport error, timeout, non-success status
// or malformed response surfaces as an upstream AppError; callers
// substitute a fallback string rather than propagating it.
func (c *Client) Complete(ctx context.Context, req out.PromptRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.cfg.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.cfg.Temperature
	}

	if c.limiter != nil {
		release, err := c.limiter.Acquire(ctx, limiterKey)
		if err != nil {
			return "", apperr.Upstream("completions", err)
		}
		defer release()
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (any, error) {
		return c.getAPI().CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: req.System},
				{Role: openai.ChatMessageRoleUser, Content: req.User},
			},
			Temperature: temperature,
			MaxTokens:   maxTokens,
		})
	})
	if err != nil {
		return "", apperr.Upstream("completions", err)
	}

	resp := result.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		return "", apperr.Upstream("completions", errors.New("empty completion response"))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Close releases the connection pool. Closing an already-closed client
// is a no-op; a later call recreates the pool.
func (c *Client) Close() {
	c.mu.Lock()
	c.api = nil
	c.mu.Unlock()
	c.shared.Close()
}
