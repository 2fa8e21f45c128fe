package golden

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dmarchetti/responsa/internal/model"
)

// MemoryStore keeps golden matches in process memory with TTL expiry
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a memory store
func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a match by key
func (s *MemoryStore) Get(key string) (model.GoldenMatch, bool) {
	if val, found := s.cache.Get(key); found {
		return val.(model.GoldenMatch), true
	}
	return model.GoldenMatch{}, false
}

// Set stores a match with the given TTL
func (s *MemoryStore) Set(key string, match model.GoldenMatch, ttl time.Duration) error {
	s.cache.Set(key, match, ttl)
	return nil
}

// Delete removes a match
func (s *MemoryStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

// Clear removes all matches
func (s *MemoryStore) Clear() error {
	s.cache.Flush()
	return nil
}

// Entries snapshots all live matches for similarity scans
func (s *MemoryStore) Entries() []Entry {
	items := s.cache.Items()
	out := make([]Entry, 0, len(items))
	for key, item := range items {
		match, ok := item.Object.(model.GoldenMatch)
		if !ok {
			continue
		}
		out = append(out, Entry{Key: key, Match: match})
	}
	return out
}
