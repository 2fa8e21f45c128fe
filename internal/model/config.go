package model

import "time"

// Config is the complete runtime configuration.
// Hierarchy (highest to lowest priority): CLI flags, RESPONSA_* env
// vars, ~/.responsa/config.yaml, the defaults below.
type Config struct {
	Golden      GoldenConfig      `yaml:"golden"`
	Gate        GateConfig        `yaml:"gate"`
	Merge       MergeConfig       `yaml:"merge"`
	Routing     RoutingConfig     `yaml:"routing"`
	Search      SearchConfig      `yaml:"search"`
	Epochs      EpochConfig       `yaml:"epochs"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// GoldenConfig controls the golden cache and decision chain
type GoldenConfig struct {
	Enabled             bool          `yaml:"enabled"`
	SeedFile            string        `yaml:"seed_file"`             // optional YAML golden set
	ReferencesFile      string        `yaml:"references_file"`       // optional YAML reference feed
	DiskDir             string        `yaml:"disk_dir"`              // optional persistent store
	MemoryTTL           time.Duration `yaml:"memory_ttl"`
	DiskTTL             time.Duration `yaml:"disk_ttl"`
	ConfidenceThreshold float64       `yaml:"confidence_threshold"`  // serve threshold, inclusive
	ApprovalThreshold   float64       `yaml:"approval_threshold"`    // put-back gate, independent of serve threshold
	LookupTimeout       time.Duration `yaml:"lookup_timeout"`
	FreshnessTimeout    time.Duration `yaml:"freshness_timeout"`
}

// GateConfig holds the fast-path gate thresholds
type GateConfig struct {
	ComplexityThreshold  float64 `yaml:"complexity_threshold"`
	EligibilityThreshold float64 `yaml:"eligibility_threshold"`
}

// MergeConfig controls the context budget merge engine
type MergeConfig struct {
	BaseBudgetTokens   int                `yaml:"base_budget_tokens"`
	PerDocumentTokens  int                `yaml:"per_document_tokens"`  // budget growth per substantial document part
	MaxBudgetTokens    int                `yaml:"max_budget_tokens"`    // hard ceiling regardless of part count
	SubstantialTokens  int                `yaml:"substantial_tokens"`   // parts at or above this count scale the budget
	DuplicateThreshold float64            `yaml:"duplicate_threshold"`  // content similarity above this suppresses a part
	PriorityWeights    map[string]float64 `yaml:"priority_weights"`     // by part type
}

// RoutingConfig controls provider selection and failover
type RoutingConfig struct {
	Strategy          string           `yaml:"strategy"`
	PreferredProvider string           `yaml:"preferred_provider"`
	MaxCost           float64          `yaml:"max_cost"`
	QualityFloor      float64          `yaml:"quality_floor"`
	MaxRetries        int              `yaml:"max_retries"` // per provider
	Environment       string           `yaml:"environment"` // "production" tightens the retry policy
	RequestsPerSecond float64          `yaml:"requests_per_second"`
	Providers         []ProviderConfig `yaml:"providers"`
}

// ProviderConfig configures one generation backend
type ProviderConfig struct {
	Name        string  `yaml:"name"` // openai, anthropic, ollama
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	Timeout     int     `yaml:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens"`
	CostPerCall float64 `yaml:"cost_per_call"`
	Quality     float64 `yaml:"quality"`
	HTTPProxy   string  `yaml:"http_proxy,omitempty"`
	HTTPSProxy  string  `yaml:"https_proxy,omitempty"`
	NoProxy     string  `yaml:"no_proxy,omitempty"`
}

// SearchConfig points the in-process search service at a local
// knowledge base directory.
type SearchConfig struct {
	KBDir      string `yaml:"kb_dir"`
	MaxResults int    `yaml:"max_results"`
}

// EpochConfig configures the freshness sources
type EpochConfig struct {
	Timeout       time.Duration `yaml:"timeout"` // shared deadline for all source lookups
	ParserVersion string        `yaml:"parser_version"`
}

// ConcurrencyConfig bounds the worker pools
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers"`
}

// OutputConfig controls CLI rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Golden: GoldenConfig{
			Enabled:             true,
			MemoryTTL:           30 * time.Minute,
			DiskTTL:             24 * time.Hour,
			ConfidenceThreshold: 0.90,
			ApprovalThreshold:   0.80,
			LookupTimeout:       5 * time.Second,
			FreshnessTimeout:    5 * time.Second,
		},
		Gate: GateConfig{
			ComplexityThreshold:  0.60,
			EligibilityThreshold: 0.40,
		},
		Merge: MergeConfig{
			BaseBudgetTokens:   4000,
			PerDocumentTokens:  3000,
			MaxBudgetTokens:    30000,
			SubstantialTokens:  500,
			DuplicateThreshold: 0.85,
			PriorityWeights: map[string]float64{
				string(PartFacts):         1.5,
				string(PartKBDocs):        1.0,
				string(PartDocumentFacts): 1.2,
			},
		},
		Routing: RoutingConfig{
			Strategy:          string(StrategyBalanced),
			MaxCost:           1.0,
			QualityFloor:      0.5,
			MaxRetries:        2,
			Environment:       "development",
			RequestsPerSecond: 2,
		},
		Search: SearchConfig{
			MaxResults: 5,
		},
		Epochs: EpochConfig{
			Timeout:       3 * time.Second,
			ParserVersion: "v1",
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{},
	}
}
