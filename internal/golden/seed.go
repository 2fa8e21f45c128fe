package golden

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmarchetti/responsa/internal/model"
	"github.com/dmarchetti/responsa/internal/signature"
)

// seedEntry is one curated answer in a golden seed file
type seedEntry struct {
	ID           string            `yaml:"id"`
	Question     string            `yaml:"question"`
	Answer       string            `yaml:"answer"`
	UpdatedAt    time.Time         `yaml:"updated_at"`
	CategoryTags []string          `yaml:"category_tags"`
	Citations    []string          `yaml:"citations"`
	Metadata     map[string]string `yaml:"metadata"`
}

type seedFile struct {
	Golden []seedEntry `yaml:"golden"`
}

// Extractor canonicalizes a seed question so its cache key matches
// live request keys.
type Extractor interface {
	Extract(query string) model.AtomicFactSet
}

// LoadSeed reads a YAML golden set and stores every entry under the
// key its question canonicalizes to, partitioned by the given epoch
// stamp. Returns the number of entries loaded.
func LoadSeed(ctx context.Context, path string, cache CacheStore, ex Extractor, stamp model.EpochStamp) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read golden seed: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("parse golden seed: %w", err)
	}

	loaded := 0
	for i, entry := range file.Golden {
		if entry.Question == "" || entry.Answer == "" {
			return loaded, fmt.Errorf("golden seed entry %d: question and answer are required", i)
		}
		if entry.ID == "" {
			entry.ID = fmt.Sprintf("seed-%d", i+1)
		}
		if entry.UpdatedAt.IsZero() {
			entry.UpdatedAt = time.Now().UTC()
		}

		facts := ex.Extract(entry.Question)
		key := Key(signature.Compute(facts), stamp)

		match := model.GoldenMatch{
			ID:           entry.ID,
			Question:     entry.Question,
			Answer:       entry.Answer,
			UpdatedAt:    entry.UpdatedAt,
			CategoryTags: entry.CategoryTags,
			Citations:    entry.Citations,
			Metadata:     entry.Metadata,
		}
		if err := cache.Put(ctx, key, match); err != nil {
			return loaded, fmt.Errorf("store golden seed entry %q: %w", entry.ID, err)
		}
		loaded++
	}

	return loaded, nil
}
