// Package httputil provides the pooled HTTP client shared by upstream calls.
package httputil

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// ClientConfig holds HTTP client configuration.
type ClientConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
	ResponseTimeout     time.Duration

	KeepAliveInterval time.Duration
}

// CompletionClientConfig returns the profile used for LLM completion
// endpoints: long response timeout, moderate concurrency, keep-alive on.
func CompletionClientConfig() *ClientConfig {
	return &ClientConfig{
		MaxIdleConns:        30,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     30,
		IdleConnTimeout:     120 * time.Second,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ResponseTimeout:     120 * time.Second,
		KeepAliveInterval:   30 * time.Second,
	}
}

// NewPooledClient creates an HTTP client with connection pooling.
func NewPooledClient(cfg *ClientConfig) *http.Client {
	if cfg == nil {
		cfg = CompletionClientConfig()
	}

	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAliveInterval,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: cfg.ResponseTimeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ResponseTimeout,
	}
}

// SharedClient is a lazily-created, process-wide HTTP client. It is reused
// across all calls; Close releases idle connections and is a no-op when
// the client was never created or already closed.
type SharedClient struct {
	mu     sync.Mutex
	cfg    *ClientConfig
	client *http.Client
	closed bool
}

// NewSharedClient prepares a shared client without creating connections.
func NewSharedClient(cfg *ClientConfig) *SharedClient {
	return &SharedClient{cfg: cfg}
}

// Get returns the underlying client, creating it on first use. A client
// that was closed is recreated.
func (s *SharedClient) Get() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil || s.closed {
		s.client = NewPooledClient(s.cfg)
		s.closed = false
	}
	return s.client
}

// Close releases idle connections. Idempotent.
func (s *SharedClient) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil || s.closed {
		return
	}
	s.client.CloseIdleConnections()
	s.closed = true
}
