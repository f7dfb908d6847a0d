package callback

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// tokenLen is the number of hex characters kept from the key digest.
const tokenLen = 16

type refEntry struct {
	key     string
	expires time.Time
}

// RefStore maps short tokens to object keys for a limited time. Tokens are
// derived from the key, so the same key always gets the same token and
// re-rendering a menu refreshes rather than grows the table. Expired entries
// are swept at most once per ttl, so an entry is held for under twice its ttl.
type RefStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   map[string]refEntry
	lastPrune time.Time
}

// NewRefStore returns a store whose references live for ttl after their last Put.
func NewRefStore(ttl time.Duration) *RefStore {
	return &RefStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]refEntry),
	}
}

// Put records key and returns its token.
func (s *RefStore) Put(key string) string {
	sum := sha256.Sum256([]byte(key))
	token := hex.EncodeToString(sum[:])[:tokenLen]

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastPrune) >= s.ttl {
		s.pruneLocked(now)
		s.lastPrune = now
	}
	s.entries[token] = refEntry{key: key, expires: now.Add(s.ttl)}
	return token
}

// Get resolves token, reporting false when it is unknown or expired.
func (s *RefStore) Get(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return "", false
	}
	if !s.now().Before(entry.expires) {
		delete(s.entries, token)
		return "", false
	}
	return entry.key, true
}

func (s *RefStore) pruneLocked(now time.Time) {
	for token, entry := range s.entries {
		if !now.Before(entry.expires) {
			delete(s.entries, token)
		}
	}
}
