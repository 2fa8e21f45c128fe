package model

// RoutingStrategy selects how a provider is chosen from the candidates
type RoutingStrategy string

const (
	StrategyCostOptimized RoutingStrategy = "cost_optimized" // minimize cost subject to a quality floor
	StrategyQualityFirst  RoutingStrategy = "quality_first"  // maximize quality subject to a cost ceiling
	StrategyBalanced      RoutingStrategy = "balanced"       // weighted blend of cost and quality
	StrategyFailover      RoutingStrategy = "failover"       // strict preferred-provider-first ordering
)

// ProviderCandidate describes one configured generation backend with
// its cost/quality metadata.
type ProviderCandidate struct {
	Name         string  `json:"name"`
	Model        string  `json:"model"`
	CostPerCall  float64 `json:"cost_per_call"`
	Quality      float64 `json:"quality"` // 0-1
	MaxTokens    int     `json:"max_tokens"`
}

// AttemptRecord logs one provider call attempt during failover
type AttemptRecord struct {
	Provider string `json:"provider"`
	Attempt  int    `json:"attempt"`
	Error    string `json:"error,omitempty"`
}

// RoutingDecision records the chosen provider, the strategy used, and
// the ordered failover sequence actually attempted.
type RoutingDecision struct {
	Chosen   ProviderCandidate `json:"chosen"`
	Strategy RoutingStrategy   `json:"strategy"`
	Failover []string          `json:"failover,omitempty"` // candidate order after the chosen one
	Attempts []AttemptRecord   `json:"attempts,omitempty"`
}

// Answer is the final response produced by the pipeline, either served
// from the golden cache or generated by a provider.
type Answer struct {
	Text       string   `json:"text"`
	Citations  []string `json:"citations,omitempty"`
	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	TokensUsed int      `json:"tokens_used,omitempty"`
	FromGolden bool     `json:"from_golden"`
	GoldenID   string   `json:"golden_id,omitempty"`
}
