package merge

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dmarchetti/responsa/internal/model"
)

func defaultEngine() *Engine {
	return NewEngine(model.DefaultConfig().Merge, nil)
}

// makePart builds a part with distinct content so tests do not trip
// the duplicate suppression by accident.
func makePart(t model.ContextPartType, tokens int, priority float64, seed string) model.ContextPart {
	var b strings.Builder
	for i := 0; b.Len() < tokens*charsPerToken; i++ {
		fmt.Fprintf(&b, "%s%d ", seed, i)
	}
	return model.ContextPart{
		Type:          t,
		Content:       b.String(),
		TokenCount:    tokens,
		PriorityScore: priority,
	}
}

func assertAccounted(t *testing.T, parts []model.ContextPart, out model.MergedContext) {
	t.Helper()
	if got := len(out.IncludedParts) + len(out.ExcludedParts); got != len(parts) {
		t.Fatalf("included %d + excluded %d != input %d",
			len(out.IncludedParts), len(out.ExcludedParts), len(parts))
	}
}

func TestMerge_GrownBudgetHoldsAllSubstantialParts(t *testing.T) {
	e := defaultEngine()

	var parts []model.ContextPart
	for i := 0; i < 5; i++ {
		parts = append(parts, makePart(model.PartKBDocs, 2000, 0.8, fmt.Sprintf("documento%d_", i)))
	}

	budget := e.DefaultBudget(parts)
	if budget < 10000 {
		t.Fatalf("budget = %d, want at least the combined part size", budget)
	}

	out := e.Merge(parts, budget)

	assertAccounted(t, parts, out)
	if len(out.IncludedParts) != 5 {
		t.Fatalf("included %d parts, want all 5", len(out.IncludedParts))
	}
	for _, inc := range out.IncludedParts {
		if inc.Truncated {
			t.Error("no part should be truncated under a grown budget")
		}
	}
	if out.BudgetExceeded {
		t.Error("budget flagged exceeded with room to spare")
	}
}

func TestMerge_TightBudgetTruncatesInsteadOfSkipping(t *testing.T) {
	e := defaultEngine()

	var parts []model.ContextPart
	for i := 0; i < 5; i++ {
		parts = append(parts, makePart(model.PartKBDocs, 600, 0.8, fmt.Sprintf("sezione%d_", i)))
	}

	out := e.Merge(parts, 1500)

	assertAccounted(t, parts, out)

	full := 0
	truncated := 0
	for _, inc := range out.IncludedParts {
		if inc.Truncated {
			truncated++
		} else {
			full++
		}
	}
	if full < 2 {
		t.Errorf("fully included %d parts, want at least 2", full)
	}
	if truncated == 0 {
		t.Error("expected the budget remainder to be filled by a truncated part")
	}
	if !out.BudgetExceeded {
		t.Error("budget_exceeded flag not set")
	}
	if out.TokenCount > 1500 {
		t.Errorf("merged context uses %d tokens, budget was 1500", out.TokenCount)
	}
}

func TestMerge_FactsOutrankEqualPriorityKBDocs(t *testing.T) {
	e := defaultEngine()

	parts := []model.ContextPart{
		makePart(model.PartKBDocs, 100, 0.8, "guida"),
		makePart(model.PartFacts, 100, 0.8, "fatto"),
	}

	// Only one fits whole.
	out := e.Merge(parts, 110)

	assertAccounted(t, parts, out)
	if len(out.IncludedParts) == 0 {
		t.Fatal("nothing included")
	}
	if out.IncludedParts[0].Part.Type != model.PartFacts {
		t.Errorf("first included part is %s, facts carry the higher weight", out.IncludedParts[0].Part.Type)
	}
}

func TestMerge_EqualScoresKeepInputOrder(t *testing.T) {
	e := defaultEngine()

	parts := []model.ContextPart{
		makePart(model.PartKBDocs, 50, 0.8, "primo"),
		makePart(model.PartKBDocs, 50, 0.8, "secondo"),
		makePart(model.PartKBDocs, 50, 0.8, "terzo"),
	}

	out := e.Merge(parts, 1000)

	assertAccounted(t, parts, out)
	for i, seed := range []string{"primo", "secondo", "terzo"} {
		if !strings.Contains(out.IncludedParts[i].Part.Content, seed) {
			t.Errorf("position %d holds the wrong part", i)
		}
	}
}

func TestMerge_NearDuplicateSuppressed(t *testing.T) {
	e := defaultEngine()

	content := "la dichiarazione IVA annuale scade il trenta aprile dell'anno successivo"
	parts := []model.ContextPart{
		{Type: model.PartKBDocs, Content: content, PriorityScore: 0.9},
		{Type: model.PartKBDocs, Content: content + " sempre", PriorityScore: 0.5},
	}

	out := e.Merge(parts, 10000)

	assertAccounted(t, parts, out)
	if len(out.IncludedParts) != 1 {
		t.Fatalf("included %d parts, want 1", len(out.IncludedParts))
	}
	if len(out.ExcludedParts) != 1 || out.ExcludedParts[0].Reason != ReasonNearDuplicate {
		t.Fatalf("excluded = %+v", out.ExcludedParts)
	}
	if out.IncludedParts[0].Part.PriorityScore != 0.9 {
		t.Error("the lower priority copy should be the one suppressed")
	}
}

func TestMerge_DuplicateAbsorbedOverflowStillFlagsBudget(t *testing.T) {
	e := defaultEngine()

	// The duplicate carries the overflow: after suppression everything
	// fits, but the parts together asked for more than the budget.
	content := "la dichiarazione IVA annuale scade il trenta aprile dell'anno successivo"
	parts := []model.ContextPart{
		{Type: model.PartKBDocs, Content: content, TokenCount: 600, PriorityScore: 0.9},
		{Type: model.PartKBDocs, Content: content + " sempre", TokenCount: 600, PriorityScore: 0.5},
	}

	out := e.Merge(parts, 1000)

	assertAccounted(t, parts, out)
	if len(out.IncludedParts) != 1 {
		t.Fatalf("included %d parts, want 1", len(out.IncludedParts))
	}
	if len(out.ExcludedParts) != 1 || out.ExcludedParts[0].Reason != ReasonNearDuplicate {
		t.Fatalf("excluded = %+v", out.ExcludedParts)
	}
	if !out.BudgetExceeded {
		t.Error("parts requested 1200 tokens against a budget of 1000; flag not set")
	}
}

func TestMerge_TinyRemainderExcludesRatherThanTruncates(t *testing.T) {
	e := defaultEngine()

	parts := []model.ContextPart{
		makePart(model.PartKBDocs, 100, 0.9, "grande"),
		makePart(model.PartKBDocs, 100, 0.5, "secondo"),
	}

	// 10 tokens left after the first part: below the useful minimum.
	out := e.Merge(parts, 110)

	assertAccounted(t, parts, out)
	if len(out.ExcludedParts) != 1 || out.ExcludedParts[0].Reason != ReasonBudgetExhausted {
		t.Fatalf("excluded = %+v", out.ExcludedParts)
	}
	if !out.BudgetExceeded {
		t.Error("budget_exceeded flag not set")
	}
}

func TestMerge_EmptyInput(t *testing.T) {
	e := defaultEngine()

	out := e.Merge(nil, 4000)

	if len(out.IncludedParts) != 0 || len(out.ExcludedParts) != 0 {
		t.Errorf("unexpected parts: %+v %+v", out.IncludedParts, out.ExcludedParts)
	}
	if out.Text == "" {
		t.Error("merged text must never be empty")
	}
	if out.QualityScore != 1.0 {
		t.Errorf("quality = %v, want 1.0 when nothing was asked for", out.QualityScore)
	}
}

func TestMerge_EmptyContentPartRecorded(t *testing.T) {
	e := defaultEngine()

	parts := []model.ContextPart{
		{Type: model.PartFacts, Content: "   ", PriorityScore: 0.9},
		makePart(model.PartKBDocs, 50, 0.5, "guida"),
	}

	out := e.Merge(parts, 1000)

	assertAccounted(t, parts, out)
	if len(out.ExcludedParts) != 1 || out.ExcludedParts[0].Reason != ReasonEmptyContent {
		t.Fatalf("excluded = %+v", out.ExcludedParts)
	}
}

func TestMerge_QualityScoreDropsWithExclusions(t *testing.T) {
	e := defaultEngine()

	parts := []model.ContextPart{
		makePart(model.PartKBDocs, 100, 0.8, "primo"),
		makePart(model.PartKBDocs, 4000, 0.8, "enorme"),
	}

	out := e.Merge(parts, 120)

	assertAccounted(t, parts, out)
	if out.QualityScore >= 1.0 || out.QualityScore <= 0 {
		t.Errorf("quality = %v, want in (0,1) when budget forces losses", out.QualityScore)
	}
}

func TestDefaultBudget(t *testing.T) {
	e := defaultEngine()

	tests := []struct {
		name  string
		parts []model.ContextPart
		want  int
	}{
		{"no parts", nil, 4000},
		{"one small part", []model.ContextPart{makePart(model.PartFacts, 100, 0.9, "f")}, 4000},
		{"two substantial parts", []model.ContextPart{
			makePart(model.PartKBDocs, 600, 0.8, "a"),
			makePart(model.PartKBDocs, 900, 0.8, "b"),
		}, 10000},
	}
	for _, tt := range tests {
		if got := e.DefaultBudget(tt.parts); got != tt.want {
			t.Errorf("%s: budget = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestDefaultBudget_Capped(t *testing.T) {
	e := defaultEngine()

	var parts []model.ContextPart
	for i := 0; i < 20; i++ {
		parts = append(parts, makePart(model.PartKBDocs, 1000, 0.8, fmt.Sprintf("doc%d_", i)))
	}

	if got := e.DefaultBudget(parts); got != 30000 {
		t.Errorf("budget = %d, want the 30000 ceiling", got)
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"ab", 1},
		{strings.Repeat("a", 400), 100},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%d chars) = %d, want %d", len(tt.in), got, tt.want)
		}
	}
}

func TestTruncateToTokens_WordBoundary(t *testing.T) {
	content := strings.Repeat("parola ", 100)
	got := truncateToTokens(content, 10)

	if len(got) > 10*charsPerToken {
		t.Errorf("truncated to %d chars, budget allows %d", len(got), 10*charsPerToken)
	}
	if strings.HasSuffix(got, "parol") {
		t.Error("truncation split a word")
	}
}
