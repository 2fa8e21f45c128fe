package model

import "fmt"

// FactKind identifies the variant of an AtomicFact
type FactKind string

const (
	KindMonetaryAmount       FactKind = "monetary_amount"
	KindDate                 FactKind = "date"
	KindLegalEntity          FactKind = "legal_entity"
	KindProfessionalCategory FactKind = "professional_category"
	KindGeographic           FactKind = "geographic"
)

// Span marks the character range a fact was extracted from
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share at least one character
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// FactBase carries the fields common to every fact variant.
// Facts are immutable once extracted; construct them only via NewFactBase
// so confidence is clamped to [0,1].
type FactBase struct {
	OriginalText string  `json:"original_text"`
	TextSpan     Span    `json:"span"`
	Confidence   float64 `json:"confidence"`
}

// NewFactBase builds a FactBase with confidence clamped to [0,1]
func NewFactBase(text string, start, end int, confidence float64) FactBase {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return FactBase{
		OriginalText: text,
		TextSpan:     Span{Start: start, End: end},
		Confidence:   confidence,
	}
}

// Base returns the common fields
func (b FactBase) Base() FactBase { return b }

func (b FactBase) sealed() {}

// AtomicFact is the closed union over the five fact variants.
// Only types in this package implement it.
type AtomicFact interface {
	// Kind returns the variant tag
	Kind() FactKind

	// Base returns the common fields (text, span, confidence)
	Base() FactBase

	// CanonicalValue returns a stable serialization of the variant's
	// normalized fields, used for signature hashing and deduplication
	CanonicalValue() string

	sealed()
}

// MonetaryAmount is a normalized money or percentage value
type MonetaryAmount struct {
	FactBase
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency,omitempty"`
	IsPercentage bool    `json:"is_percentage"`
}

func (f MonetaryAmount) Kind() FactKind { return KindMonetaryAmount }

func (f MonetaryAmount) CanonicalValue() string {
	return fmt.Sprintf("amount=%.4f|currency=%s|pct=%t", f.Amount, f.Currency, f.IsPercentage)
}

// DateFact is a normalized temporal value: an ISO date, a tax year,
// a duration, or a relative expression. Exactly one group is populated
// per extraction.
type DateFact struct {
	FactBase
	ISODate            string  `json:"iso_date,omitempty"` // YYYY-MM-DD
	TaxYear            int     `json:"tax_year,omitempty"`
	DurationValue      float64 `json:"duration_value,omitempty"`
	DurationUnit       string  `json:"duration_unit,omitempty"`
	RelativeExpression string  `json:"relative_expression,omitempty"`
}

func (f DateFact) Kind() FactKind { return KindDate }

func (f DateFact) CanonicalValue() string {
	return fmt.Sprintf("iso=%s|year=%d|dur=%.2f%s|rel=%s",
		f.ISODate, f.TaxYear, f.DurationValue, f.DurationUnit, f.RelativeExpression)
}

// LegalEntity is a normalized legal form, document type or identifier
type LegalEntity struct {
	FactBase
	EntityType    string `json:"entity_type"` // company_type, document_type, identifier
	CanonicalForm string `json:"canonical_form"`
	Identifier    string `json:"identifier,omitempty"`
}

func (f LegalEntity) Kind() FactKind { return KindLegalEntity }

func (f LegalEntity) CanonicalValue() string {
	return fmt.Sprintf("type=%s|form=%s|id=%s", f.EntityType, f.CanonicalForm, f.Identifier)
}

// ProfessionalCategory is a normalized fiscal/professional regime or category
type ProfessionalCategory struct {
	FactBase
	Category      string `json:"category"`
	CanonicalForm string `json:"canonical_form"`
}

func (f ProfessionalCategory) Kind() FactKind { return KindProfessionalCategory }

func (f ProfessionalCategory) CanonicalValue() string {
	return fmt.Sprintf("cat=%s|form=%s", f.Category, f.CanonicalForm)
}

// GeographicInfo is a normalized region, city or country reference
type GeographicInfo struct {
	FactBase
	Scope         string `json:"scope"` // region, city, country
	CanonicalForm string `json:"canonical_form"`
}

func (f GeographicInfo) Kind() FactKind { return KindGeographic }

func (f GeographicInfo) CanonicalValue() string {
	return fmt.Sprintf("scope=%s|form=%s", f.Scope, f.CanonicalForm)
}

// AtomicFactSet is the ordered result of one extraction pass.
// Spans never overlap within the same fact category (the extractor
// suppresses same-category overlaps); cross-category overlap is allowed.
type AtomicFactSet struct {
	Facts                []AtomicFact `json:"facts"`
	OriginalQuery        string       `json:"original_query"`
	ExtractionDurationMs int64        `json:"extraction_duration_ms"`
}

// IsEmpty reports whether no facts were extracted
func (s AtomicFactSet) IsEmpty() bool { return len(s.Facts) == 0 }

// FactCount returns the number of extracted facts
func (s AtomicFactSet) FactCount() int { return len(s.Facts) }

// OfKind returns all facts of the given variant, in extraction order
func (s AtomicFactSet) OfKind(kind FactKind) []AtomicFact {
	var out []AtomicFact
	for _, f := range s.Facts {
		if f.Kind() == kind {
			out = append(out, f)
		}
	}
	return out
}
