// Package cache provides the content-addressed insight cache. One
// instance exists per task kind (summary, tone); identical text may
// legitimately produce different cached values for different tasks.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key fingerprints the exact text submitted to the LLM for one task.
// Identical text always yields the identical key.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Store maps content keys to completion strings. Values are immutable
// once computed, so last-writer-wins on a key is safe; concurrent
// computes of the same key are collapsed into a single upstream call.
// Entries live for the process lifetime; Clear is the only eviction.
type Store struct {
	mu     sync.RWMutex
	data   map[string]string
	flight singleflight.Group

	hits   int64
	misses int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// Get returns the cached value for key, if any.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	v, ok := s.data[key]
	s.mu.RUnlock()

	s.mu.Lock()
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	s.mu.Unlock()

	return v, ok
}

// Put stores a value for key.
func (s *Store) Put(key, value string) {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
}

// GetOrCompute returns the cached value for key, computing and caching
// it on a miss. Concurrent callers for the same key share one compute;
// a failed compute caches nothing, so the next caller retries.
func (s *Store) GetOrCompute(key string, compute func() (string, error)) (string, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		// Another caller may have finished between the miss and here.
		s.mu.RLock()
		cached, ok := s.data[key]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}

		value, err := compute()
		if err != nil {
			return "", err
		}
		s.Put(key, value)
		return value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	s.data = make(map[string]string)
	s.mu.Unlock()
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Stats contains cache counters.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Stats returns a snapshot of the cache counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Entries: len(s.data), Hits: s.hits, Misses: s.misses}
}
