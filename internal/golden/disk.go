package golden

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmarchetti/responsa/internal/model"
)

// DiskStore persists golden matches as JSON files so a curated set
// survives process restarts.
type DiskStore struct {
	dir string
	ttl time.Duration
}

// NewDiskStore creates a disk store rooted at dir
func NewDiskStore(dir string, ttl time.Duration) *DiskStore {
	return &DiskStore{dir: dir, ttl: ttl}
}

type diskEntry struct {
	Key       string            `json:"key"`
	Match     model.GoldenMatch `json:"match"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Get retrieves a match by key, dropping expired entries on read
func (s *DiskStore) Get(key string) (model.GoldenMatch, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return model.GoldenMatch{}, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return model.GoldenMatch{}, false
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(s.path(key))
		return model.GoldenMatch{}, false
	}

	return entry.Match, true
}

// Set stores a match with the given TTL (0 uses the store default)
func (s *DiskStore) Set(key string, match model.GoldenMatch, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.ttl
	}

	entry := diskEntry{Key: key, Match: match}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal golden entry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create golden dir: %w", err)
	}

	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("write golden entry: %w", err)
	}

	return nil
}

// Delete removes a match
func (s *DiskStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes all stored matches
func (s *DiskStore) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			_ = os.Remove(filepath.Join(s.dir, e.Name()))
		}
	}
	return nil
}

// Entries loads all live matches from disk
func (s *DiskStore) Entries() []Entry {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	now := time.Now()
	var out []Entry
	for _, f := range files {
		if !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, f.Name()))
		if err != nil {
			continue
		}
		var entry diskEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if !entry.ExpiresAt.IsZero() && now.After(entry.ExpiresAt) {
			continue
		}
		out = append(out, Entry{Key: entry.Key, Match: entry.Match})
	}
	return out
}

func (s *DiskStore) path(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(hash[:])+".json")
}
