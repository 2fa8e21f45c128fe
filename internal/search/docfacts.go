package search

import (
	"fmt"
	"strings"

	"github.com/dmarchetti/responsa/internal/model"
)

// Document is one user-supplied attachment
type Document struct {
	Name    string
	Content string
}

// Extractor canonicalizes attachment text into atomic facts
type Extractor interface {
	Extract(query string) model.AtomicFactSet
}

// DocumentFactsProvider runs the fact extractor over user attachments
// and renders the results as document_facts context parts.
type DocumentFactsProvider struct {
	extractor Extractor
}

// NewDocumentFactsProvider creates a document facts provider
func NewDocumentFactsProvider(extractor Extractor) *DocumentFactsProvider {
	return &DocumentFactsProvider{extractor: extractor}
}

// Parts extracts facts from each document. Documents with no
// extractable facts yield no part; the raw attachment text never
// enters the context unprocessed.
func (p *DocumentFactsProvider) Parts(documents []Document) []model.ContextPart {
	var parts []model.ContextPart
	for _, doc := range documents {
		set := p.extractor.Extract(doc.Content)
		if set.IsEmpty() {
			continue
		}

		parts = append(parts, model.ContextPart{
			Type:          model.PartDocumentFacts,
			Content:       renderFacts(doc.Name, set),
			PriorityScore: averageConfidence(set),
			Metadata: map[string]string{
				"document":   doc.Name,
				"fact_count": fmt.Sprintf("%d", set.FactCount()),
			},
		})
	}
	return parts
}

// renderFacts serializes a fact set into a readable block
func renderFacts(name string, set model.AtomicFactSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Documento: %s\n", name)
	for _, f := range set.Facts {
		fmt.Fprintf(&b, "- %s: %s (testo: %q)\n", f.Kind(), f.CanonicalValue(), f.Base().OriginalText)
	}
	return strings.TrimRight(b.String(), "\n")
}

func averageConfidence(set model.AtomicFactSet) float64 {
	if set.IsEmpty() {
		return 0
	}
	sum := 0.0
	for _, f := range set.Facts {
		sum += f.Base().Confidence
	}
	return sum / float64(set.FactCount())
}
