// Package golden implements the curated answer cache and the decision
// chain that decides whether a request can be served from it.
package golden

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dmarchetti/responsa/internal/model"
)

// Store is the low-level golden set storage: exact-key access plus a
// snapshot of all live entries for similarity scans.
type Store interface {
	Get(key string) (model.GoldenMatch, bool)
	Set(key string, match model.GoldenMatch, ttl time.Duration) error
	Delete(key string) error
	Clear() error
	Entries() []Entry
}

// Entry pairs a stored match with its cache key
type Entry struct {
	Key   string
	Match model.GoldenMatch
}

// CacheStore is the lookup/put boundary consumed by the decision
// chain. Lookup resolves by exact signature key first, then by
// semantic similarity against stored questions; it returns nil when
// nothing plausible is cached.
type CacheStore interface {
	Lookup(ctx context.Context, key string, query string) (*model.GoldenMatch, error)
	Put(ctx context.Context, key string, match model.GoldenMatch) error
}

// ReferenceSource supplies reference material published after a given
// timestamp, used by the freshness-conflict check.
type ReferenceSource interface {
	FetchChangesSince(ctx context.Context, query string, since time.Time) ([]model.ReferenceDelta, error)
}

// Key builds the cache key for a signature, partitioned by the epoch
// stamp so a knowledge-base or golden-set refresh invalidates prior
// entries.
func Key(sig model.QuerySignature, stamp model.EpochStamp) string {
	var b strings.Builder
	b.WriteString(string(sig))
	for _, t := range []*time.Time{stamp.KBEpoch, stamp.GoldenEpoch, stamp.SectorEpoch} {
		b.WriteString("|")
		if t != nil {
			b.WriteString(t.UTC().Format(time.RFC3339))
		}
	}
	b.WriteString("|")
	b.WriteString(stamp.ParserVersion)

	hash := sha256.Sum256([]byte(b.String()))
	return "responsa:golden:v1:" + hex.EncodeToString(hash[:])
}

// minLookupSimilarity is the floor below which a similarity scan hit
// is not even reported as a match; the chain applies its own, much
// stricter confidence threshold on top.
const minLookupSimilarity = 0.35

// Cache implements CacheStore over a Store
type Cache struct {
	store Store
	ttl   time.Duration
}

// NewCache wraps a store with lookup semantics
func NewCache(store Store, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

// Lookup resolves by exact key (similarity 1.0), falling back to a
// question-similarity scan over all live entries.
func (c *Cache) Lookup(ctx context.Context, key string, query string) (*model.GoldenMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if match, ok := c.store.Get(key); ok {
		match.SimilarityScore = 1.0
		return &match, nil
	}

	var best *model.GoldenMatch
	bestScore := 0.0
	for _, entry := range c.store.Entries() {
		score := questionSimilarity(query, entry.Match.Question)
		if score > bestScore {
			m := entry.Match
			m.SimilarityScore = score
			best, bestScore = &m, score
		}
	}

	if best == nil || bestScore < minLookupSimilarity {
		return nil, nil
	}
	return best, nil
}

// Put stores an answer under its signature key
func (c *Cache) Put(ctx context.Context, key string, match model.GoldenMatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if match.ID == "" {
		return fmt.Errorf("golden match requires an id")
	}
	return c.store.Set(key, match, c.ttl)
}

// questionSimilarity computes token-set overlap (Jaccard) between the
// incoming query and a stored golden question, ignoring short filler
// words.
func questionSimilarity(a, b string) float64 {
	as := tokenSet(a)
	bs := tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}

	intersection := 0
	for tok := range as {
		if bs[tok] {
			intersection++
		}
	}
	union := len(as) + len(bs) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,;:!?()\"'")
		if len(tok) < 3 {
			continue
		}
		set[tok] = true
	}
	return set
}
