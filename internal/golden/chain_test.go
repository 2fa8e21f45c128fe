package golden

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmarchetti/responsa/internal/model"
)

type fakeCache struct {
	match     *model.GoldenMatch
	err       error
	lookups   int
}

func (f *fakeCache) Lookup(ctx context.Context, key, query string) (*model.GoldenMatch, error) {
	f.lookups++
	return f.match, f.err
}

func (f *fakeCache) Put(ctx context.Context, key string, match model.GoldenMatch) error {
	return nil
}

type fakeRefs struct {
	deltas  []model.ReferenceDelta
	err     error
	fetches int
}

func (f *fakeRefs) FetchChangesSince(ctx context.Context, query string, since time.Time) ([]model.ReferenceDelta, error) {
	f.fetches++
	return f.deltas, f.err
}

func testConfig() (model.GoldenConfig, model.GateConfig) {
	return model.GoldenConfig{
			Enabled:             true,
			ConfidenceThreshold: 0.90,
			LookupTimeout:       time.Second,
			FreshnessTimeout:    time.Second,
		}, model.GateConfig{
			ComplexityThreshold:  0.60,
			EligibilityThreshold: 0.40,
		}
}

func simpleRequest() Request {
	return Request{
		Query:     "quando scade il F24",
		Signature: "abc123",
	}
}

func match(score float64) *model.GoldenMatch {
	return &model.GoldenMatch{
		ID:              "g1",
		Question:        "quando scade il F24",
		Answer:          "Il 16 del mese successivo.",
		SimilarityScore: score,
		UpdatedAt:       time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		CategoryTags:    []string{"scadenze", "f24"},
	}
}

func hasState(trace []State, s State) bool {
	for _, t := range trace {
		if t == s {
			return true
		}
	}
	return false
}

func TestChain_ServeGoldenOnFreshHighConfidenceMatch(t *testing.T) {
	cfg, gates := testConfig()
	refs := &fakeRefs{}
	chain := NewChain(&fakeCache{match: match(0.95)}, refs, cfg, gates, nil)

	out := chain.Run(context.Background(), simpleRequest())

	if out.Decision != DecisionServeGolden {
		t.Fatalf("decision = %s, want serve_golden (trace %v)", out.Decision, out.Trace)
	}
	if out.Match == nil || out.Match.Answer == "" {
		t.Error("expected the cached answer on the outcome")
	}
	if !hasState(out.Trace, StateNoDelta) {
		t.Errorf("trace missing no_delta: %v", out.Trace)
	}
}

func TestChain_ConfidenceBoundaryInclusive(t *testing.T) {
	cfg, gates := testConfig()

	tests := []struct {
		score float64
		high  bool
	}{
		{0.90, true},
		{0.8999, false},
		{0.75, false},
		{1.0, true},
	}

	for _, tt := range tests {
		refs := &fakeRefs{}
		chain := NewChain(&fakeCache{match: match(tt.score)}, refs, cfg, gates, nil)

		out := chain.Run(context.Background(), simpleRequest())

		gotHigh := hasState(out.Trace, StateHighConfidence)
		if gotHigh != tt.high {
			t.Errorf("score %v: high confidence = %v, want %v", tt.score, gotHigh, tt.high)
		}
	}
}

func TestChain_LowConfidenceNeverReachesFreshness(t *testing.T) {
	cfg, gates := testConfig()
	refs := &fakeRefs{}
	chain := NewChain(&fakeCache{match: match(0.75)}, refs, cfg, gates, nil)

	out := chain.Run(context.Background(), simpleRequest())

	if out.Decision != DecisionFallback {
		t.Errorf("decision = %s, want fallback", out.Decision)
	}
	if !hasState(out.Trace, StateLowConfidence) {
		t.Errorf("trace missing low_confidence: %v", out.Trace)
	}
	if hasState(out.Trace, StateFreshnessCheck) {
		t.Errorf("freshness check must not run after low confidence: %v", out.Trace)
	}
	if refs.fetches != 0 {
		t.Errorf("reference source was queried %d times", refs.fetches)
	}
}

func TestChain_NoMatchFallsBack(t *testing.T) {
	cfg, gates := testConfig()
	chain := NewChain(&fakeCache{}, &fakeRefs{}, cfg, gates, nil)

	out := chain.Run(context.Background(), simpleRequest())

	if out.Decision != DecisionFallback {
		t.Errorf("decision = %s, want fallback", out.Decision)
	}
	if !hasState(out.Trace, StateNoMatch) {
		t.Errorf("trace missing no_match: %v", out.Trace)
	}
}

func TestChain_LookupFailureFailsOpen(t *testing.T) {
	cfg, gates := testConfig()
	chain := NewChain(&fakeCache{err: errors.New("store down")}, &fakeRefs{}, cfg, gates, nil)

	out := chain.Run(context.Background(), simpleRequest())

	if out.Decision != DecisionFallback {
		t.Errorf("lookup failure must degrade to fallback, got %s", out.Decision)
	}
}

func TestChain_FreshnessFailureServesGolden(t *testing.T) {
	cfg, gates := testConfig()
	refs := &fakeRefs{err: errors.New("feed unreachable")}
	chain := NewChain(&fakeCache{match: match(0.95)}, refs, cfg, gates, nil)

	out := chain.Run(context.Background(), simpleRequest())

	if out.Decision != DecisionServeGolden {
		t.Errorf("freshness failure must degrade to no_delta, got %s", out.Decision)
	}
}

func TestChain_NewerContentTriggersRegenerate(t *testing.T) {
	cfg, gates := testConfig()
	refs := &fakeRefs{deltas: []model.ReferenceDelta{
		{Title: "Nuova circolare", PublishedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
	}}
	chain := NewChain(&fakeCache{match: match(0.95)}, refs, cfg, gates, nil)

	out := chain.Run(context.Background(), simpleRequest())

	if out.Decision != DecisionMergeRegenerate {
		t.Fatalf("decision = %s, want merge_and_regenerate", out.Decision)
	}
	if len(out.DeltaReasons) != 1 || out.DeltaReasons[0] != DeltaReasonNewerContent {
		t.Errorf("delta reasons = %v", out.DeltaReasons)
	}
	if len(out.Deltas) != 1 {
		t.Errorf("expected the delta on the outcome, got %d", len(out.Deltas))
	}
}

func TestChain_ConflictingTagsRecordedAsSecondReason(t *testing.T) {
	cfg, gates := testConfig()
	refs := &fakeRefs{deltas: []model.ReferenceDelta{
		{Title: "Aggiornamento F24", PublishedAt: time.Now(), CategoryTags: []string{"f24"}},
	}}
	chain := NewChain(&fakeCache{match: match(0.95)}, refs, cfg, gates, nil)

	out := chain.Run(context.Background(), simpleRequest())

	if out.Decision != DecisionMergeRegenerate {
		t.Fatalf("decision = %s, want merge_and_regenerate", out.Decision)
	}
	want := map[string]bool{DeltaReasonNewerContent: true, DeltaReasonConflictingTags: true}
	got := map[string]bool{}
	for _, r := range out.DeltaReasons {
		got[r] = true
	}
	for r := range want {
		if !got[r] {
			t.Errorf("missing delta reason %q in %v", r, out.DeltaReasons)
		}
	}
}

func TestChain_ComplexDocumentRequestNotEligible(t *testing.T) {
	cfg, gates := testConfig()
	cache := &fakeCache{match: match(0.99)}
	chain := NewChain(cache, &fakeRefs{}, cfg, gates, nil)

	// A long, branchy query with attached documents fails the gate
	query := "se la mia SRL in regime ordinario ha ricavi oltre 50.000 euro ma " +
		"anche crediti IVA, oppure perdite pregresse, tranne il caso di " +
		"liquidazione, come compilo il modello redditi e cosa allego? " +
		"E se invece opto per la trasparenza fiscale?"
	out := chain.Run(context.Background(), Request{
		Query:        query,
		HasDocuments: true,
	})

	if out.Decision != DecisionFallback {
		t.Errorf("decision = %s, want fallback", out.Decision)
	}
	if !hasState(out.Trace, StateNotEligible) {
		t.Errorf("trace missing not_eligible: %v", out.Trace)
	}
	if cache.lookups != 0 {
		t.Errorf("ineligible request must not hit the cache, got %d lookups", cache.lookups)
	}
}

func TestChain_NoDocumentDependencyIsAlwaysEligible(t *testing.T) {
	cfg, gates := testConfig()
	gates.ComplexityThreshold = 0 // force the score branch to fail
	cache := &fakeCache{}
	chain := NewChain(cache, &fakeRefs{}, cfg, gates, nil)

	out := chain.Run(context.Background(), Request{Query: "domanda senza documenti"})

	if !hasState(out.Trace, StateEligible) {
		t.Errorf("docless request must be eligible: %v", out.Trace)
	}
	if cache.lookups != 1 {
		t.Errorf("expected one cache lookup, got %d", cache.lookups)
	}
}

func TestChain_DisabledGoldenFallsBack(t *testing.T) {
	cfg, gates := testConfig()
	cfg.Enabled = false
	chain := NewChain(&fakeCache{match: match(1.0)}, &fakeRefs{}, cfg, gates, nil)

	out := chain.Run(context.Background(), simpleRequest())

	if out.Decision != DecisionFallback {
		t.Errorf("decision = %s, want fallback when golden disabled", out.Decision)
	}
}
