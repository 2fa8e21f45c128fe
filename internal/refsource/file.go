package refsource

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmarchetti/responsa/internal/model"
)

// feedEntry is one normative update in a reference feed file
type feedEntry struct {
	Title        string    `yaml:"title"`
	Source       string    `yaml:"source"`
	PublishedAt  time.Time `yaml:"published_at"`
	CategoryTags []string  `yaml:"category_tags"`
	Summary      string    `yaml:"summary"`
}

type feedFile struct {
	References []feedEntry `yaml:"references"`
}

// LoadFile reads a YAML reference feed into a memory source
func LoadFile(path string) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference feed: %w", err)
	}

	var file feedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse reference feed: %w", err)
	}

	src := NewMemorySource()
	for i, e := range file.References {
		if e.Title == "" || e.PublishedAt.IsZero() {
			return nil, fmt.Errorf("reference feed entry %d: title and published_at are required", i)
		}
		src.Add(model.ReferenceDelta{
			Title:        e.Title,
			Source:       e.Source,
			PublishedAt:  e.PublishedAt,
			CategoryTags: e.CategoryTags,
			Summary:      e.Summary,
		})
	}
	return src, nil
}
