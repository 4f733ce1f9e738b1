// Package ratelimit paces calls to the upstream completion endpoint.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter configuration.
type Config struct {
	MaxConcurrent     int // max in-flight upstream calls
	RequestsPerSecond int // sustained rate per key
	BurstSize         int // allowed burst above the sustained rate
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent:     20,
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

// Limiter combines a concurrency semaphore with a sliding-window rate
// limit. The window lives in Redis when a client is provided so multiple
// instances share one budget; without Redis a local window is used.
type Limiter struct {
	config    *Config
	semaphore chan struct{}
	window    *slidingWindow
}

// NewLimiter creates a limiter. redisClient may be nil.
func NewLimiter(redisClient *redis.Client, config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Limiter{
		config:    config,
		semaphore: make(chan struct{}, config.MaxConcurrent),
		window:    newSlidingWindow(redisClient, config.RequestsPerSecond+config.BurstSize, time.Second),
	}
}

// Acquire blocks until a slot is available or ctx is done. The returned
// release function must be called once the upstream call completes.
func (l *Limiter) Acquire(ctx context.Context, key string) (func(), error) {
	// select picks a ready case at random, so a free semaphore could
	// win over an already-expired context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case l.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	release := func() { <-l.semaphore }

	for {
		allowed, wait := l.window.allow(ctx, key)
		if allowed {
			return release, nil
		}
		if wait <= 0 {
			wait = l.window.size
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
}

// slidingWindow counts requests per key within a rolling window.
type slidingWindow struct {
	redis *redis.Client
	max   int
	size  time.Duration

	mu    sync.Mutex
	local map[string][]time.Time
}

func newSlidingWindow(redisClient *redis.Client, max int, size time.Duration) *slidingWindow {
	return &slidingWindow{
		redis: redisClient,
		max:   max,
		size:  size,
		local: make(map[string][]time.Time),
	}
}

var windowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local max_requests = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)

	if count < max_requests then
		redis.call('ZADD', key, now, now .. '-' .. math.random())
		redis.call('PEXPIRE', key, window_ms * 2)
		return 1
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if #oldest > 0 then
		return -(oldest[2] + window_ms - now)
	end
	return 0
`)

// allow reports whether a request may proceed now, and if not, how long
// to wait before retrying. Redis errors fall back to the local window.
func (w *slidingWindow) allow(ctx context.Context, key string) (bool, time.Duration) {
	if w.redis != nil {
		now := time.Now()
		result, err := windowScript.Run(ctx, w.redis,
			[]string{fmt.Sprintf("ratelimit:%s", key)},
			now.UnixMilli(),
			now.Add(-w.size).UnixMilli(),
			w.max,
			w.size.Milliseconds(),
		).Int64()
		if err == nil {
			if result == 1 {
				return true, 0
			}
			if result < 0 {
				return false, time.Duration(-result) * time.Millisecond
			}
			return false, w.size
		}
	}

	return w.allowLocal(key)
}

func (w *slidingWindow) allowLocal(key string) (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-w.size)

	kept := w.local[key][:0]
	for _, t := range w.local[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.local[key] = kept

	if len(kept) < w.max {
		w.local[key] = append(kept, now)
		return true, 0
	}
	return false, kept[0].Add(w.size).Sub(now)
}
