package search

import (
	"strings"
	"testing"

	"github.com/dmarchetti/responsa/internal/model"
)

type stubExtractor struct{}

func (stubExtractor) Extract(query string) model.AtomicFactSet {
	if !strings.Contains(query, "5.000") {
		return model.AtomicFactSet{OriginalQuery: query}
	}
	amount := model.MonetaryAmount{
		FactBase: model.NewFactBase("5.000 euro", 20, 30, 0.9),
		Amount:   5000,
		Currency: "EUR",
	}
	return model.AtomicFactSet{
		Facts:         []model.AtomicFact{amount},
		OriginalQuery: query,
	}
}

func TestDocumentFacts_PartsPerDocument(t *testing.T) {
	p := NewDocumentFactsProvider(stubExtractor{})

	parts := p.Parts([]Document{
		{Name: "fattura-marzo.txt", Content: "Importo dovuto: 5.000 euro per consulenza."},
		{Name: "vuoto.txt", Content: "Nessun dato utile qui."},
	})

	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1 (factless documents yield none)", len(parts))
	}

	part := parts[0]
	if part.Type != model.PartDocumentFacts {
		t.Errorf("type = %s", part.Type)
	}
	if !strings.Contains(part.Content, "fattura-marzo.txt") {
		t.Errorf("content missing the document name: %q", part.Content)
	}
	if !strings.Contains(part.Content, "monetary_amount") {
		t.Errorf("content missing the fact kind: %q", part.Content)
	}
	if part.PriorityScore != 0.9 {
		t.Errorf("priority = %v, want the average confidence", part.PriorityScore)
	}
	if part.Metadata["fact_count"] != "1" {
		t.Errorf("fact_count = %q", part.Metadata["fact_count"])
	}
}

func TestDocumentFacts_NoDocuments(t *testing.T) {
	p := NewDocumentFactsProvider(stubExtractor{})
	if parts := p.Parts(nil); parts != nil {
		t.Errorf("expected no parts, got %d", len(parts))
	}
}
