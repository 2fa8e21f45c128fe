// Package merge assembles a token-budgeted context from candidate
// parts. Every input part ends up either included (possibly truncated)
// or excluded with a reason; nothing is dropped silently.
package merge

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dmarchetti/responsa/internal/model"
)

// Exclusion reasons recorded on ExcludedPart
const (
	ReasonBudgetExhausted = "budget_exhausted"
	ReasonNearDuplicate   = "near_duplicate"
	ReasonEmptyContent    = "empty_content"
)

// minTruncateTokens is the smallest remaining budget worth filling
// with a truncated part. Below this a fragment carries no usable
// information, so the part is excluded instead.
const minTruncateTokens = 25

// emptyContextText is emitted when no part survives the merge, so a
// downstream prompt never interpolates an empty string.
const emptyContextText = "Nessun contesto rilevante disponibile."

// Engine merges context parts under a token budget
type Engine struct {
	cfg    model.MergeConfig
	logger *zap.Logger
}

// NewEngine builds a merge engine
func NewEngine(cfg model.MergeConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// DefaultBudget computes the token budget for a set of parts: a base
// allowance that grows per substantial document part, capped at the
// configured ceiling.
func (e *Engine) DefaultBudget(parts []model.ContextPart) int {
	substantial := 0
	for _, p := range parts {
		if partTokens(p) >= e.cfg.SubstantialTokens {
			substantial++
		}
	}

	budget := e.cfg.BaseBudgetTokens + substantial*e.cfg.PerDocumentTokens
	if e.cfg.MaxBudgetTokens > 0 && budget > e.cfg.MaxBudgetTokens {
		budget = e.cfg.MaxBudgetTokens
	}
	return budget
}

// candidate pairs a part with its effective priority and input position
type candidate struct {
	part      model.ContextPart
	effective float64
	pos       int
}

// Merge builds a merged context from parts within maxTokens. Parts are
// ranked by priority score times the per-type weight, near-duplicates
// are suppressed, then parts are accepted greedily in rank order. A
// part that does not fit whole is truncated to the remaining budget
// when enough of it survives to be useful; otherwise it is excluded.
// The scan never stops early, so every part is accounted for and
// len(IncludedParts)+len(ExcludedParts) always equals len(parts).
func (e *Engine) Merge(parts []model.ContextPart, maxTokens int) model.MergedContext {
	out := model.MergedContext{}

	ranked := make([]candidate, 0, len(parts))
	totalEffective := 0.0
	totalTokens := 0
	for i, p := range parts {
		c := candidate{part: p, effective: e.effectiveScore(p), pos: i}
		ranked = append(ranked, c)
		totalEffective += c.effective
		totalTokens += partTokens(p)
	}
	// The flag reports demand, not the outcome: it is set whenever the
	// parts together ask for more than the budget, even if dedup or
	// empty-content exclusions later make everything fit.
	out.BudgetExceeded = totalTokens > maxTokens
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].effective != ranked[j].effective {
			return ranked[i].effective > ranked[j].effective
		}
		return ranked[i].pos < ranked[j].pos
	})

	remaining := maxTokens
	includedEffective := 0.0
	var kept []candidate

	for _, c := range ranked {
		if strings.TrimSpace(c.part.Content) == "" {
			out.ExcludedParts = append(out.ExcludedParts, model.ExcludedPart{Part: c.part, Reason: ReasonEmptyContent})
			continue
		}

		if dup, of := e.duplicateOf(c, kept); dup {
			e.logger.Warn("context part suppressed as near duplicate",
				zap.String("type", string(c.part.Type)),
				zap.String("duplicate_of", string(of)))
			out.ExcludedParts = append(out.ExcludedParts, model.ExcludedPart{Part: c.part, Reason: ReasonNearDuplicate})
			continue
		}

		tokens := partTokens(c.part)
		switch {
		case tokens <= remaining:
			out.IncludedParts = append(out.IncludedParts, model.IncludedPart{
				Part:       c.part,
				TokensUsed: tokens,
			})
			remaining -= tokens
			includedEffective += c.effective
			kept = append(kept, c)

		case remaining >= minTruncateTokens:
			truncated := c.part
			truncated.Content = truncateToTokens(c.part.Content, remaining)
			e.logger.Warn("context part truncated to fit budget",
				zap.String("type", string(c.part.Type)),
				zap.Int("original_tokens", tokens),
				zap.Int("kept_tokens", remaining))
			out.IncludedParts = append(out.IncludedParts, model.IncludedPart{
				Part:       truncated,
				Truncated:  true,
				TokensUsed: remaining,
			})
			includedEffective += c.effective * float64(remaining) / float64(tokens)
			remaining = 0
			kept = append(kept, c)

		default:
			e.logger.Warn("context part excluded, budget exhausted",
				zap.String("type", string(c.part.Type)),
				zap.Int("tokens", tokens),
				zap.Int("remaining", remaining))
			out.ExcludedParts = append(out.ExcludedParts, model.ExcludedPart{Part: c.part, Reason: ReasonBudgetExhausted})
		}
	}

	out.TokenCount = maxTokens - remaining
	out.Text = e.render(out.IncludedParts)
	if totalEffective > 0 {
		out.QualityScore = includedEffective / totalEffective
	} else if len(parts) == 0 {
		out.QualityScore = 1.0
	}

	return out
}

// effectiveScore applies the per-type priority weight, defaulting to
// 1.0 for unknown types
func (e *Engine) effectiveScore(p model.ContextPart) float64 {
	weight := 1.0
	if w, ok := e.cfg.PriorityWeights[string(p.Type)]; ok {
		weight = w
	}
	return p.PriorityScore * weight
}

// duplicateOf reports whether the candidate is a near duplicate of an
// already kept part
func (e *Engine) duplicateOf(c candidate, kept []candidate) (bool, model.ContextPartType) {
	if e.cfg.DuplicateThreshold <= 0 {
		return false, ""
	}
	for _, k := range kept {
		if contentSimilarity(c.part.Content, k.part.Content) >= e.cfg.DuplicateThreshold {
			return true, k.part.Type
		}
	}
	return false, ""
}

// render joins the included parts under per-type section headers
func (e *Engine) render(included []model.IncludedPart) string {
	if len(included) == 0 {
		return emptyContextText
	}

	var b strings.Builder
	for i, inc := range included {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sectionHeader(inc.Part.Type))
		b.WriteString("\n")
		b.WriteString(inc.Part.Content)
	}
	return b.String()
}

func sectionHeader(t model.ContextPartType) string {
	switch t {
	case model.PartFacts:
		return "### Fatti estratti dalla domanda"
	case model.PartKBDocs:
		return "### Documentazione di riferimento"
	case model.PartDocumentFacts:
		return "### Fatti estratti dai documenti allegati"
	default:
		return "### Contesto"
	}
}

func partTokens(p model.ContextPart) int {
	if p.TokenCount > 0 {
		return p.TokenCount
	}
	return EstimateTokens(p.Content)
}
