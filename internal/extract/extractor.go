package extract

import (
	"time"

	"go.uber.org/zap"

	"github.com/dmarchetti/responsa/internal/model"
)

// Extractor parses raw query text into typed, canonicalized atomic
// facts. It never fails: an internal matcher error is logged and the
// affected category yields no facts.
type Extractor struct {
	matchers map[model.FactKind][]matcher
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes an Extractor
type Option func(*Extractor)

// WithLogger sets the logger used for degraded-extraction warnings
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// WithClock overrides the clock used to default missing date years
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// NewExtractor creates an extractor over the shared compiled pattern
// tables. The tables are read-only; extractors are safe for concurrent
// use.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		matchers: defaultMatchers,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// extractionOrder fixes the category order so output is deterministic
var extractionOrder = []model.FactKind{
	model.KindMonetaryAmount,
	model.KindDate,
	model.KindLegalEntity,
	model.KindProfessionalCategory,
	model.KindGeographic,
}

// Extract parses the query into an AtomicFactSet. Matchers run most
// specific first; a match whose span overlaps a previously accepted
// match in the same category is skipped. Cross-category overlap is
// permitted.
func (e *Extractor) Extract(query string) model.AtomicFactSet {
	started := e.now()
	set := model.AtomicFactSet{OriginalQuery: query}
	if query == "" {
		return set
	}

	now := started
	for _, kind := range extractionOrder {
		var accepted []model.Span
		for _, m := range e.matchers[kind] {
			candidates := e.findSafely(m, query, now)
			for _, c := range candidates {
				span := model.Span{Start: c.start, End: c.end}
				if overlapsAny(span, accepted) {
					continue
				}
				accepted = append(accepted, span)
				set.Facts = append(set.Facts, c.fact)
			}
		}
	}

	set.ExtractionDurationMs = time.Since(started).Milliseconds()
	return set
}

// findSafely runs one matcher, recovering from panics so a defective
// pattern degrades to zero facts instead of failing the request.
func (e *Extractor) findSafely(m matcher, text string, now time.Time) (out []candidate) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("matcher failed, category degraded",
				zap.String("matcher", m.Name()),
				zap.Any("panic", r))
			out = nil
		}
	}()
	return m.Find(text, now)
}

func overlapsAny(span model.Span, accepted []model.Span) bool {
	for _, a := range accepted {
		if span.Overlaps(a) {
			return true
		}
	}
	return false
}
