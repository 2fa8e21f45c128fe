package model

import "time"

// GoldenMatch is a read-only snapshot of a curated answer returned by
// the golden cache lookup. It is owned by the decision chain for the
// duration of one request.
type GoldenMatch struct {
	ID              string            `json:"id"`
	Question        string            `json:"question"`
	Answer          string            `json:"answer"`
	SimilarityScore float64           `json:"similarity_score"`
	UpdatedAt       time.Time         `json:"updated_at"`
	CategoryTags    []string          `json:"category_tags,omitempty"`
	Citations       []string          `json:"citations,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ReferenceDelta describes reference-source material published after a
// cached answer's UpdatedAt, used by the freshness-conflict check.
type ReferenceDelta struct {
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	PublishedAt  time.Time `json:"published_at"`
	CategoryTags []string  `json:"category_tags,omitempty"`
	Summary      string    `json:"summary,omitempty"`
}
