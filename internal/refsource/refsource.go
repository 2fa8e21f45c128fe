// Package refsource provides the reference feeds consulted by the
// freshness check and the epoch sources that stamp cache keys.
package refsource

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmarchetti/responsa/internal/model"
)

// MemorySource is an in-process reference feed. Normative updates
// (circolari, risoluzioni, news) are registered as they arrive and
// served to freshness checks by publication time.
type MemorySource struct {
	mu     sync.RWMutex
	deltas []model.ReferenceDelta
}

// NewMemorySource creates an empty reference feed
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// Add registers reference material with the feed
func (s *MemorySource) Add(deltas ...model.ReferenceDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deltas = append(s.deltas, deltas...)
	sort.SliceStable(s.deltas, func(i, j int) bool {
		return s.deltas[i].PublishedAt.Before(s.deltas[j].PublishedAt)
	})
}

// FetchChangesSince returns material published strictly after the
// given time, newest last.
func (s *MemorySource) FetchChangesSince(ctx context.Context, query string, since time.Time) ([]model.ReferenceDelta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ReferenceDelta
	for _, d := range s.deltas {
		if d.PublishedAt.After(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Len returns the number of registered deltas
func (s *MemorySource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deltas)
}
