package golden

import (
	"testing"

	"github.com/dmarchetti/responsa/internal/model"
)

func factSet(query string, facts ...model.AtomicFact) model.AtomicFactSet {
	return model.AtomicFactSet{Facts: facts, OriginalQuery: query}
}

func TestScoreGate_SimpleQuestionScoresLow(t *testing.T) {
	scores := ScoreGate("quando scade il F24", factSet("quando scade il F24"), false)

	if scores.Complexity >= 0.60 {
		t.Errorf("complexity = %v, want < 0.60 for a short direct question", scores.Complexity)
	}
	if scores.HasDocuments {
		t.Error("has_documents flag set without documents")
	}
}

func TestScoreGate_BranchyQuestionScoresHigh(t *testing.T) {
	query := "se la mia SRL ha ricavi oltre 50.000 euro ma anche crediti IVA, " +
		"oppure perdite pregresse, tranne il caso di liquidazione, come compilo " +
		"il modello? E se invece opto per la trasparenza fiscale?"

	entity := model.LegalEntity{
		FactBase:      model.NewFactBase("SRL", 11, 14, 0.9),
		EntityType:    "company_type",
		CanonicalForm: "SRL",
	}
	amount := model.MonetaryAmount{
		FactBase: model.NewFactBase("50.000 euro", 31, 42, 0.9),
		Amount:   50000,
		Currency: "EUR",
	}

	scores := ScoreGate(query, factSet(query, entity, amount), true)

	if scores.Complexity < 0.60 {
		t.Errorf("complexity = %v, want >= 0.60 for a multi-branch question", scores.Complexity)
	}
	if !scores.HasDocuments {
		t.Error("has_documents flag lost")
	}
}

func TestScoreGate_CategoricalFactsRaiseEligibility(t *testing.T) {
	query := "come funziona il regime forfettario per una SRL"
	entity := model.LegalEntity{
		FactBase:      model.NewFactBase("SRL", 43, 46, 0.9),
		EntityType:    "company_type",
		CanonicalForm: "SRL",
	}
	category := model.ProfessionalCategory{
		FactBase:      model.NewFactBase("regime forfettario", 18, 36, 0.8),
		Category:      "fiscal_regime",
		CanonicalForm: "FORFETTARIO",
	}

	with := ScoreGate(query, factSet(query, entity, category), false)
	without := ScoreGate(query, factSet(query), false)

	if with.Eligibility <= without.Eligibility {
		t.Errorf("eligibility with facts %v not above factless %v", with.Eligibility, without.Eligibility)
	}
	if with.Eligibility < 0.40 {
		t.Errorf("eligibility = %v, want >= 0.40 for an FAQ-style categorical question", with.Eligibility)
	}
}

func TestScoreGate_ScoresStayInRange(t *testing.T) {
	queries := []string{
		"",
		"?",
		"se ma oppure tranne eccetto salvo tuttavia invece nel caso a meno che ?? ??",
	}
	for _, q := range queries {
		scores := ScoreGate(q, factSet(q), false)
		if scores.Complexity < 0 || scores.Complexity > 1 {
			t.Errorf("%q: complexity %v out of range", q, scores.Complexity)
		}
		if scores.Eligibility < 0 || scores.Eligibility > 1 {
			t.Errorf("%q: eligibility %v out of range", q, scores.Eligibility)
		}
	}
}
