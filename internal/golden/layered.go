package golden

import (
	"time"

	"github.com/dmarchetti/responsa/internal/model"
)

// LayeredStore fronts a disk store with a memory store, promoting
// disk hits into memory.
type LayeredStore struct {
	memory Store
	disk   Store
}

// NewLayeredStore creates a layered store
func NewLayeredStore(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredStore {
	return &LayeredStore{
		memory: NewMemoryStore(memoryTTL, 10*time.Minute),
		disk:   NewDiskStore(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk with promotion
func (s *LayeredStore) Get(key string) (model.GoldenMatch, bool) {
	if match, found := s.memory.Get(key); found {
		return match, true
	}

	if match, found := s.disk.Get(key); found {
		_ = s.memory.Set(key, match, 0) // default TTL
		return match, true
	}

	return model.GoldenMatch{}, false
}

// Set stores the match in both layers
func (s *LayeredStore) Set(key string, match model.GoldenMatch, ttl time.Duration) error {
	if err := s.memory.Set(key, match, ttl); err != nil {
		return err
	}
	return s.disk.Set(key, match, ttl)
}

// Delete removes the match from both layers
func (s *LayeredStore) Delete(key string) error {
	_ = s.memory.Delete(key)
	return s.disk.Delete(key)
}

// Clear empties both layers
func (s *LayeredStore) Clear() error {
	_ = s.memory.Clear()
	return s.disk.Clear()
}

// Entries merges both layers, preferring the memory copy on key
// collisions.
func (s *LayeredStore) Entries() []Entry {
	seen := make(map[string]bool)
	var out []Entry
	for _, e := range s.memory.Entries() {
		seen[e.Key] = true
		out = append(out, e)
	}
	for _, e := range s.disk.Entries() {
		if !seen[e.Key] {
			out = append(out, e)
		}
	}
	return out
}
