// Package pipeline orchestrates query resolution: fact extraction,
// signature and epoch stamping, the golden decision chain, context
// merging and provider routing.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmarchetti/responsa/internal/golden"
	"github.com/dmarchetti/responsa/internal/merge"
	"github.com/dmarchetti/responsa/internal/model"
	"github.com/dmarchetti/responsa/internal/router"
	"github.com/dmarchetti/responsa/internal/search"
	"github.com/dmarchetti/responsa/internal/signature"
)

// Extractor canonicalizes query text into atomic facts
type Extractor interface {
	Extract(query string) model.AtomicFactSet
}

// Searcher retrieves knowledge base material for a query
type Searcher interface {
	Search(query string, facts model.AtomicFactSet) ([]model.ContextPart, error)
}

// DocumentFacts extracts facts from user attachments
type DocumentFacts interface {
	Parts(documents []search.Document) []model.ContextPart
}

// Generator routes a generation request to a provider
type Generator interface {
	Route(ctx context.Context, req router.GenerateRequest) (*router.GenerateResponse, *model.RoutingDecision, error)
}

// Request is one question to resolve, with optional attachments
type Request struct {
	Query     string
	Documents []search.Document
}

// Resolution is the full report for one resolved request
type Resolution struct {
	RequestID  string                 `json:"request_id"`
	Query      string                 `json:"query"`
	Facts      model.AtomicFactSet    `json:"facts"`
	Signature  model.QuerySignature   `json:"signature"`
	Epochs     model.EpochStamp       `json:"epochs"`
	Golden     golden.Outcome         `json:"golden"`
	Context    *model.MergedContext   `json:"context,omitempty"`
	Routing    *model.RoutingDecision `json:"routing,omitempty"`
	Answer     model.Answer           `json:"answer"`
	DurationMs int64                  `json:"duration_ms"`
}

// Resolver drives one request through the resolution pipeline
type Resolver struct {
	cfg       *model.Config
	extractor Extractor
	epochs    *signature.Resolver
	chain     *golden.Chain
	cache     golden.CacheStore
	merger    *merge.Engine
	generator Generator
	searcher  Searcher
	docFacts  DocumentFacts
	logger    *zap.Logger
	now       func() time.Time
}

// ResolverOptions collects the pipeline collaborators. Cache, searcher
// and docFacts may be nil; the corresponding stages are skipped.
type ResolverOptions struct {
	Extractor Extractor
	Epochs    *signature.Resolver
	Chain     *golden.Chain
	Cache     golden.CacheStore
	Merger    *merge.Engine
	Generator Generator
	Searcher  Searcher
	DocFacts  DocumentFacts
	Logger    *zap.Logger
}

// NewResolver assembles a pipeline from its collaborators
func NewResolver(cfg *model.Config, opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		cfg:       cfg,
		extractor: opts.Extractor,
		epochs:    opts.Epochs,
		chain:     opts.Chain,
		cache:     opts.Cache,
		merger:    opts.Merger,
		generator: opts.Generator,
		searcher:  opts.Searcher,
		docFacts:  opts.DocFacts,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve runs one request through the pipeline. A golden hit returns
// without touching the merge engine or any provider; everything else
// builds a budgeted context and generates.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Resolution, error) {
	start := r.now()

	res := &Resolution{
		RequestID: uuid.NewString(),
		Query:     req.Query,
	}

	res.Facts = r.extractor.Extract(req.Query)
	res.Signature = signature.Compute(res.Facts)
	if r.epochs != nil {
		res.Epochs = r.epochs.Resolve(ctx)
	}

	res.Golden = r.chain.Run(ctx, golden.Request{
		Query:        req.Query,
		Facts:        res.Facts,
		Signature:    res.Signature,
		Epochs:       res.Epochs,
		HasDocuments: len(req.Documents) > 0,
	})

	if res.Golden.Decision == golden.DecisionServeGolden {
		match := res.Golden.Match
		res.Answer = model.Answer{
			Text:       match.Answer,
			Citations:  match.Citations,
			FromGolden: true,
			GoldenID:   match.ID,
		}
		res.DurationMs = r.now().Sub(start).Milliseconds()
		r.logger.Info("served from golden cache",
			zap.String("request_id", res.RequestID),
			zap.String("golden_id", match.ID))
		return res, nil
	}

	parts := r.gatherParts(req, res)

	budget := r.merger.DefaultBudget(parts)
	merged := r.merger.Merge(parts, budget)
	res.Context = &merged

	resp, decision, err := r.generator.Route(ctx, router.GenerateRequest{
		Prompt: buildPrompt(req.Query, merged.Text),
	})
	res.Routing = decision
	if err != nil {
		res.DurationMs = r.now().Sub(start).Milliseconds()
		return res, fmt.Errorf("generate answer: %w", err)
	}

	res.Answer = model.Answer{
		Text:       resp.Text,
		Citations:  resp.Citations,
		Provider:   decision.Chosen.Name,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
	}
	res.DurationMs = r.now().Sub(start).Milliseconds()

	r.storeGolden(ctx, req, res, merged)

	return res, nil
}

// gatherParts collects the candidate context parts for one request
func (r *Resolver) gatherParts(req Request, res *Resolution) []model.ContextPart {
	var parts []model.ContextPart

	if !res.Facts.IsEmpty() {
		parts = append(parts, factsPart(res.Facts))
	}

	if r.searcher != nil {
		kbParts, err := r.searcher.Search(req.Query, res.Facts)
		if err != nil {
			r.logger.Warn("knowledge base search failed, continuing without",
				zap.String("request_id", res.RequestID),
				zap.Error(err))
		} else {
			parts = append(parts, kbParts...)
		}
	}

	if r.docFacts != nil && len(req.Documents) > 0 {
		parts = append(parts, r.docFacts.Parts(req.Documents)...)
	}

	// A stale golden answer still seeds the regeneration: the cached
	// text plus what changed since it was written.
	if res.Golden.Decision == golden.DecisionMergeRegenerate && res.Golden.Match != nil {
		parts = append(parts, goldenSeedPart(*res.Golden.Match))
		if len(res.Golden.Deltas) > 0 {
			parts = append(parts, deltasPart(res.Golden.Deltas))
		}
	}

	return parts
}

// storeGolden puts a generated answer back into the golden cache when
// the merged context was good enough to trust. Failures are logged and
// ignored; the user already has the answer.
//
// Only fast-path-eligible, attachment-free requests are stored: the
// cache key covers the query signature alone, so an answer built from
// attached documents would later be served verbatim to a docless query
// with the same signature.
func (r *Resolver) storeGolden(ctx context.Context, req Request, res *Resolution, merged model.MergedContext) {
	if r.cache == nil || !r.cfg.Golden.Enabled {
		return
	}
	if len(req.Documents) > 0 || !res.Golden.Eligible() {
		return
	}
	if merged.QualityScore < r.cfg.Golden.ApprovalThreshold {
		return
	}

	key := golden.Key(res.Signature, res.Epochs)
	match := model.GoldenMatch{
		ID:        res.RequestID,
		Question:  res.Query,
		Answer:    res.Answer.Text,
		UpdatedAt: r.now().UTC(),
		Citations: res.Answer.Citations,
	}
	if err := r.cache.Put(ctx, key, match); err != nil {
		r.logger.Warn("golden put-back failed",
			zap.String("request_id", res.RequestID),
			zap.Error(err))
		return
	}
	r.logger.Info("answer stored in golden cache",
		zap.String("request_id", res.RequestID),
		zap.Float64("quality", merged.QualityScore))
}

// factsPart renders the extracted facts as a context part
func factsPart(facts model.AtomicFactSet) model.ContextPart {
	var b strings.Builder
	sum := 0.0
	for _, f := range facts.Facts {
		fmt.Fprintf(&b, "- %s: %s (testo: %q)\n", f.Kind(), f.CanonicalValue(), f.Base().OriginalText)
		sum += f.Base().Confidence
	}

	return model.ContextPart{
		Type:          model.PartFacts,
		Content:       strings.TrimRight(b.String(), "\n"),
		PriorityScore: sum / float64(facts.FactCount()),
	}
}

// goldenSeedPart wraps a stale golden answer for regeneration
func goldenSeedPart(match model.GoldenMatch) model.ContextPart {
	return model.ContextPart{
		Type:          model.PartKBDocs,
		Content:       fmt.Sprintf("Risposta precedente (da aggiornare):\n%s", match.Answer),
		PriorityScore: 0.9,
		Metadata: map[string]string{
			"origin":    "golden",
			"golden_id": match.ID,
		},
	}
}

// deltasPart summarizes what changed since the golden answer
func deltasPart(deltas []model.ReferenceDelta) model.ContextPart {
	var b strings.Builder
	b.WriteString("Novità normative successive alla risposta precedente:\n")
	for _, d := range deltas {
		fmt.Fprintf(&b, "- %s (%s)", d.Title, d.PublishedAt.Format("2006-01-02"))
		if d.Summary != "" {
			fmt.Fprintf(&b, ": %s", d.Summary)
		}
		b.WriteString("\n")
	}

	return model.ContextPart{
		Type:          model.PartKBDocs,
		Content:       strings.TrimRight(b.String(), "\n"),
		PriorityScore: 0.95,
		Metadata:      map[string]string{"origin": "reference_deltas"},
	}
}

// buildPrompt assembles the final generation prompt
func buildPrompt(query, contextText string) string {
	return fmt.Sprintf("Domanda:\n%s\n\nContesto:\n%s\n\nRispondi alla domanda basandoti sul contesto.", query, contextText)
}
