package golden

import (
	"math"
	"strings"

	"github.com/dmarchetti/responsa/internal/model"
)

// GateScores holds the fast-path gate inputs for one request
type GateScores struct {
	Complexity   float64 `json:"complexity"`
	Eligibility  float64 `json:"eligibility"`
	HasDocuments bool    `json:"has_documents"`
}

// conditionalWords are connectives that signal multi-branch questions
// a cached answer is unlikely to cover
var conditionalWords = []string{
	"se ", "ma ", "oppure", "tranne", "eccetto", "salvo",
	"nel caso", "a meno che", "tuttavia", "invece",
}

// questionOpeners are typical FAQ-style openers; queries starting this
// way tend to have curated answers
var questionOpeners = []string{
	"come", "quando", "quanto", "quanta", "cosa", "che", "qual",
	"posso", "devo", "chi", "dove", "perché", "perche",
}

// ScoreGate computes the complexity and golden-eligibility scores for
// the fast-path gate. Both are in [0,1]; the formulas are deliberately
// simple and inspectable.
func ScoreGate(query string, facts model.AtomicFactSet, hasDocuments bool) GateScores {
	words := strings.Fields(strings.ToLower(query))

	// Complexity: length, breadth of fact kinds, branchy connectives.
	// complexity = 0.4*min(words/40,1) + 0.3*kinds/5 + 0.3*branching
	lengthTerm := math.Min(float64(len(words))/40, 1)

	kinds := map[model.FactKind]bool{}
	for _, f := range facts.Facts {
		kinds[f.Kind()] = true
	}
	kindTerm := float64(len(kinds)) / 5

	branching := 0.0
	lower := strings.ToLower(query)
	for _, w := range conditionalWords {
		if strings.Contains(lower, w) {
			branching += 0.5
		}
	}
	if strings.Count(query, "?") > 1 {
		branching += 0.5
	}
	branching = math.Min(branching, 1)

	complexity := 0.4*lengthTerm + 0.3*kindTerm + 0.3*branching

	// Eligibility: concrete facts plus an FAQ-style opener.
	// eligibility = 0.5*min(facts/3,1) + 0.3*categorical + 0.2*opener
	factTerm := math.Min(float64(facts.FactCount())/3, 1)

	categorical := 0.0
	for _, f := range facts.Facts {
		if f.Kind() == model.KindProfessionalCategory || f.Kind() == model.KindLegalEntity {
			categorical = 1
			break
		}
	}

	opener := 0.0
	if len(words) > 0 {
		for _, o := range questionOpeners {
			if words[0] == o {
				opener = 1
				break
			}
		}
	}

	eligibility := 0.5*factTerm + 0.3*categorical + 0.2*opener

	return GateScores{
		Complexity:   clamp01(complexity),
		Eligibility:  clamp01(eligibility),
		HasDocuments: hasDocuments,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
