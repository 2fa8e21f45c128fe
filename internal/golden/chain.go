package golden

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dmarchetti/responsa/internal/model"
)

// State names the positions of the decision chain
type State string

const (
	StateFastGateCheck   State = "fast_gate_check"
	StateEligible        State = "eligible"
	StateNotEligible     State = "not_eligible"
	StateGoldenLookup    State = "golden_lookup"
	StateMatchFound      State = "match_found"
	StateNoMatch         State = "no_match"
	StateHighConfidence  State = "high_confidence"
	StateLowConfidence   State = "low_confidence"
	StateFreshnessCheck  State = "freshness_check"
	StateNoDelta         State = "no_delta"
	StateHasDelta        State = "has_delta"
	StateServeGolden     State = "serve_golden"
	StateMergeRegenerate State = "merge_and_regenerate"
)

// Decision is the terminal outcome of one chain run
type Decision string

const (
	// DecisionServeGolden serves the cached answer verbatim
	DecisionServeGolden Decision = "serve_golden"
	// DecisionMergeRegenerate regenerates, seeding the merge engine
	// with the golden answer and the freshness delta
	DecisionMergeRegenerate Decision = "merge_and_regenerate"
	// DecisionFallback exits to the classification fallback: a full
	// context build and generation with no golden involvement
	DecisionFallback Decision = "fallback"
)

// Delta reasons recorded on a MergeRegenerate outcome
const (
	DeltaReasonNewerContent    = "newer_content"
	DeltaReasonConflictingTags = "conflicting_tags"
)

// Request is the immutable input to one chain run
type Request struct {
	Query        string
	Facts        model.AtomicFactSet
	Signature    model.QuerySignature
	Epochs       model.EpochStamp
	HasDocuments bool
}

// Outcome is the immutable result of one chain run
type Outcome struct {
	Decision     Decision
	Match        *model.GoldenMatch
	Deltas       []model.ReferenceDelta
	DeltaReasons []string
	Gate         GateScores
	Trace        []State
}

// Eligible reports whether the gate admitted the request to the fast
// path. Cache writes are scoped to eligible requests; a request the
// gate turned away must not seed answers for future lookups.
func (o Outcome) Eligible() bool {
	for _, s := range o.Trace {
		if s == StateEligible {
			return true
		}
	}
	return false
}

// Chain is the golden decision state machine. One instance serves one
// request at a time; external lookups fail open (toward NotEligible
// and NoDelta respectively) and are logged, never raised.
type Chain struct {
	cache  CacheStore
	refs   ReferenceSource
	cfg    model.GoldenConfig
	gates  model.GateConfig
	logger *zap.Logger
}

// NewChain builds a decision chain. cache and refs may be nil, in
// which case the corresponding step degrades fail-open.
func NewChain(cache CacheStore, refs ReferenceSource, cfg model.GoldenConfig, gates model.GateConfig, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{cache: cache, refs: refs, cfg: cfg, gates: gates, logger: logger}
}

// Run walks the state machine for one request
func (c *Chain) Run(ctx context.Context, req Request) Outcome {
	out := Outcome{Trace: []State{StateFastGateCheck}}
	out.Gate = ScoreGate(req.Query, req.Facts, req.HasDocuments)

	// FastGateCheck: simple enough and eligible, or no document
	// dependency at all.
	scoresPass := out.Gate.Complexity < c.gates.ComplexityThreshold &&
		out.Gate.Eligibility >= c.gates.EligibilityThreshold
	if !c.cfg.Enabled || c.cache == nil || (!scoresPass && req.HasDocuments) {
		out.Trace = append(out.Trace, StateNotEligible)
		out.Decision = DecisionFallback
		return out
	}
	out.Trace = append(out.Trace, StateEligible, StateGoldenLookup)

	match := c.lookup(ctx, req)
	if match == nil {
		out.Trace = append(out.Trace, StateNoMatch)
		out.Decision = DecisionFallback
		return out
	}
	out.Match = match
	out.Trace = append(out.Trace, StateMatchFound)

	// ConfidenceCheck: the serve threshold is inclusive
	if match.SimilarityScore < c.cfg.ConfidenceThreshold {
		out.Trace = append(out.Trace, StateLowConfidence)
		out.Decision = DecisionFallback
		return out
	}
	out.Trace = append(out.Trace, StateHighConfidence, StateFreshnessCheck)

	deltas, reasons := c.freshness(ctx, req.Query, *match)
	if len(deltas) == 0 {
		out.Trace = append(out.Trace, StateNoDelta, StateServeGolden)
		out.Decision = DecisionServeGolden
		return out
	}

	out.Deltas = deltas
	out.DeltaReasons = reasons
	out.Trace = append(out.Trace, StateHasDelta, StateMergeRegenerate)
	out.Decision = DecisionMergeRegenerate
	return out
}

// lookup queries the cache store, failing open to no-match
func (c *Chain) lookup(ctx context.Context, req Request) *model.GoldenMatch {
	timeout := c.cfg.LookupTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	match, err := c.cache.Lookup(ctx, Key(req.Signature, req.Epochs), req.Query)
	if err != nil {
		c.logger.Warn("golden lookup unavailable, failing open",
			zap.String("signature", string(req.Signature)),
			zap.Error(err))
		return nil
	}
	return match
}

// freshness fetches reference changes newer than the cached answer.
// Either a newer-content timestamp or a category-tag conflict marks a
// delta; both reasons are recorded when both hold. Source failure
// degrades to NoDelta.
func (c *Chain) freshness(ctx context.Context, query string, match model.GoldenMatch) ([]model.ReferenceDelta, []string) {
	if c.refs == nil {
		return nil, nil
	}

	timeout := c.cfg.FreshnessTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	deltas, err := c.refs.FetchChangesSince(ctx, query, match.UpdatedAt)
	if err != nil {
		c.logger.Warn("freshness source unavailable, failing open",
			zap.String("golden_id", match.ID),
			zap.Error(err))
		return nil, nil
	}
	if len(deltas) == 0 {
		return nil, nil
	}

	reasons := []string{DeltaReasonNewerContent}
	if tagsConflict(match.CategoryTags, deltas) {
		reasons = append(reasons, DeltaReasonConflictingTags)
	}
	return deltas, reasons
}

// tagsConflict reports whether any newer delta touches a category the
// cached answer is tagged with
func tagsConflict(matchTags []string, deltas []model.ReferenceDelta) bool {
	tags := make(map[string]bool, len(matchTags))
	for _, t := range matchTags {
		tags[t] = true
	}
	for _, d := range deltas {
		for _, t := range d.CategoryTags {
			if tags[t] {
				return true
			}
		}
	}
	return false
}
