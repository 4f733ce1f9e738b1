package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestKeyDeterministic(t *testing.T) {
	a := Key("hello world")
	b := Key("hello world")
	c := Key("hello world ")

	if a != b {
		t.Error("identical text must produce identical keys")
	}
	if a == c {
		t.Error("different text must produce different keys")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
}

func TestStoreGetPut(t *testing.T) {
	s := NewStore()

	if _, ok := s.Get("missing"); ok {
		t.Error("empty store must miss")
	}

	s.Put("k", "v")
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Errorf("expected hit with %q, got %q ok=%v", "v", v, ok)
	}

	stats := s.Stats()
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestGetOrComputeCachesOnce(t *testing.T) {
	s := NewStore()
	var calls int32

	compute := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "result", nil
	}

	for i := 0; i < 3; i++ {
		v, err := s.GetOrCompute("k", compute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "result" {
			t.Errorf("got %q", v)
		}
	}

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected exactly 1 compute, got %d", n)
	}
}

func TestGetOrComputeConcurrentSingleFlight(t *testing.T) {
	s := NewStore()
	var calls int32
	release := make(chan struct{})

	compute := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.GetOrCompute("same-key", compute)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if v != "shared" {
				t.Errorf("got %q", v)
			}
		}()
	}

	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 shared compute, got %d", n)
	}
}

func TestGetOrComputeFailureNotCached(t *testing.T) {
	s := NewStore()
	var calls int32

	fail := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", errors.New("upstream down")
	}

	if _, err := s.GetOrCompute("k", fail); err == nil {
		t.Fatal("expected error")
	}
	if s.Len() != 0 {
		t.Error("failed compute must cache nothing")
	}

	// The next caller retries instead of seeing a cached failure.
	v, err := s.GetOrCompute("k", func() (string, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "recovered" {
		t.Errorf("got %q", v)
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Put("a", "1")
	s.Put("b", "2")

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", s.Len())
	}
}
