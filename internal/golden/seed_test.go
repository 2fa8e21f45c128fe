package golden

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmarchetti/responsa/internal/model"
	"github.com/dmarchetti/responsa/internal/signature"
)

type passthroughExtractor struct{}

func (passthroughExtractor) Extract(query string) model.AtomicFactSet {
	return model.AtomicFactSet{OriginalQuery: query}
}

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golden.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeed(t, `golden:
  - id: faq-iva-annuale
    question: quando scade la dichiarazione IVA annuale
    answer: Il 30 aprile dell'anno successivo.
    updated_at: 2026-03-01T00:00:00Z
    category_tags: [iva, scadenze]
  - question: quanto costa aprire una partita IVA
    answer: L'apertura è gratuita.
`)

	store := NewMemoryStore(time.Hour, time.Hour)
	cache := NewCache(store, time.Hour)
	stamp := model.EpochStamp{ParserVersion: "v1"}
	ex := passthroughExtractor{}

	n, err := LoadSeed(context.Background(), path, cache, ex, stamp)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if n != 2 {
		t.Fatalf("loaded %d entries, want 2", n)
	}

	// An identical live question resolves to the same key and hits
	// exactly.
	query := "quando scade la dichiarazione IVA annuale"
	key := Key(signature.Compute(ex.Extract(query)), stamp)
	match, err := cache.Lookup(context.Background(), key, query)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if match == nil || match.ID != "faq-iva-annuale" {
		t.Fatalf("lookup = %+v", match)
	}
	if match.SimilarityScore != 1.0 {
		t.Errorf("seeded question should hit exactly, got %v", match.SimilarityScore)
	}

	// Entries without an id or timestamp get defaults.
	for _, e := range store.Entries() {
		if e.Match.ID == "" {
			t.Error("seed entry stored without an id")
		}
		if e.Match.UpdatedAt.IsZero() {
			t.Error("seed entry stored without a timestamp")
		}
	}
}

func TestLoadSeed_RejectsIncompleteEntries(t *testing.T) {
	path := writeSeed(t, `golden:
  - question: domanda senza risposta
`)

	cache := NewCache(NewMemoryStore(time.Hour, time.Hour), time.Hour)
	_, err := LoadSeed(context.Background(), path, cache, passthroughExtractor{}, model.EpochStamp{ParserVersion: "v1"})
	if err == nil {
		t.Error("expected an error for an entry without an answer")
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	cache := NewCache(NewMemoryStore(time.Hour, time.Hour), time.Hour)
	_, err := LoadSeed(context.Background(), "/nonexistent/golden.yaml", cache, passthroughExtractor{}, model.EpochStamp{})
	if err == nil {
		t.Error("expected an error for a missing seed file")
	}
}
