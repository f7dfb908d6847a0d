package callback

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRefStorePrunesOnPut(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewRefStore(time.Minute)
	s.now = func() time.Time { return now }

	s.Put("old")
	now = now.Add(90 * time.Second)
	token := s.Put("new")

	if got := len(s.entries); got != 1 {
		t.Fatalf("expected expired entry to be pruned, have %d entries", got)
	}
	if key, ok := s.Get(token); !ok || key != "new" {
		t.Fatalf("unexpected lookup: %q %v", key, ok)
	}
}

func TestRefStoreSweepsOncePerTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewRefStore(time.Minute)
	s.now = func() time.Time { return now }

	s.Put("a")
	now = now.Add(30 * time.Second)
	b := s.Put("b")
	now = now.Add(40 * time.Second)
	s.Put("c") // sweeps "a"
	if _, ok := s.entries[b]; !ok {
		t.Fatalf("live entry swept")
	}

	// "b" expires at +90s; the next sweep is not due until +130s.
	now = now.Add(30 * time.Second)
	for i := 0; i < 100; i++ {
		s.Put(fmt.Sprintf("menu-%d", i))
	}
	if _, ok := s.entries[b]; !ok {
		t.Fatalf("expected sweep to wait for the interval")
	}
	if _, ok := s.Get(b); ok {
		t.Fatalf("expired entry resolved before sweep")
	}

	d := s.Put("d")
	now = now.Add(30 * time.Second)
	s.Put("e")
	if _, ok := s.entries[d]; !ok {
		t.Fatalf("live entry swept")
	}
	if got := len(s.entries); got != 102 {
		t.Fatalf("expected only expired entries to be swept, have %d", got)
	}
}

func TestRefStorePutRefreshesExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewRefStore(time.Minute)
	s.now = func() time.Time { return now }

	token := s.Put("k")
	now = now.Add(50 * time.Second)
	s.Put("k")
	now = now.Add(50 * time.Second)
	if _, ok := s.Get(token); !ok {
		t.Fatalf("expected refreshed reference to be live")
	}
}

func TestRefStoreConcurrentUse(t *testing.T) {
	t.Parallel()

	s := NewRefStore(time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			token := s.Put(key)
			if got, ok := s.Get(token); !ok || got != key {
				t.Errorf("lookup %s: got %q %v", key, got, ok)
			}
		}(i)
	}
	wg.Wait()
}
