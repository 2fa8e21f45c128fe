package model

// ContextPartType classifies the origin of a context part
type ContextPartType string

const (
	PartFacts         ContextPartType = "facts"
	PartKBDocs        ContextPartType = "kb_docs"
	PartDocumentFacts ContextPartType = "document_facts"
)

// ContextPart is one candidate block of supporting material for a
// generation request. Produced by upstream collaborators, consumed
// (never mutated) by the merge engine.
type ContextPart struct {
	Type          ContextPartType   `json:"type"`
	Content       string            `json:"content"`
	TokenCount    int               `json:"token_count"`
	PriorityScore float64           `json:"priority_score"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// IncludedPart records a part accepted into the merged context,
// possibly truncated to fit the remaining budget.
type IncludedPart struct {
	Part       ContextPart `json:"part"`
	Truncated  bool        `json:"truncated"`
	TokensUsed int         `json:"tokens_used"`
}

// ExcludedPart records a part left out of the merged context and why
type ExcludedPart struct {
	Part   ContextPart `json:"part"`
	Reason string      `json:"reason"`
}

// MergedContext is the token-budgeted output of the merge engine.
// Invariant: len(IncludedParts)+len(ExcludedParts) equals the number
// of input parts — no part may vanish unaccounted.
type MergedContext struct {
	Text           string         `json:"text"`
	IncludedParts  []IncludedPart `json:"included_parts"`
	ExcludedParts  []ExcludedPart `json:"excluded_parts"`
	TokenCount     int            `json:"token_count"`
	BudgetExceeded bool           `json:"budget_exceeded"`
	QualityScore   float64        `json:"quality_score"`
}
