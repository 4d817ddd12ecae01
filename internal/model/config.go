package model

import "time"

// Config is the complete runtime configuration, assembled from flags,
// environment, and the config file (in that priority order)
type Config struct {
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	SLM         SLMConfig         `yaml:"slm" json:"slm"`
	Search      SearchConfig      `yaml:"search" json:"search"`
	Index       IndexConfig       `yaml:"index" json:"index"`
	Governance  GovernanceConfig  `yaml:"governance" json:"governance"`
	Thresholds  Thresholds        `yaml:"thresholds" json:"thresholds"`
	Policy      PolicyConfig      `yaml:"policy" json:"policy"`
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// LLMConfig configures the frontier chat model (OpenAI-compatible,
// including Azure OpenAI deployments)
type LLMConfig struct {
	Provider          string `yaml:"provider" json:"provider"` // openai, azure, groq
	Model             string `yaml:"model" json:"model"`
	APIKey            string `yaml:"api_key" json:"-"`
	BaseURL           string `yaml:"base_url" json:"base_url,omitempty"`
	AzureEndpoint     string `yaml:"azure_endpoint" json:"azure_endpoint,omitempty"`
	EmbeddingModel    string `yaml:"embedding_model" json:"embedding_model"`
	TimeoutSeconds    int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	FastTimeoutMillis int    `yaml:"fast_timeout_ms" json:"fast_timeout_ms"`
	MaxTokens         int    `yaml:"max_tokens" json:"max_tokens"`
}

// Timeout returns the frontier-path timeout budget
func (c LLMConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 6 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// FastTimeout returns the primary-path timeout budget
func (c LLMConfig) FastTimeout() time.Duration {
	if c.FastTimeoutMillis <= 0 {
		return 2500 * time.Millisecond
	}
	return time.Duration(c.FastTimeoutMillis) * time.Millisecond
}

// SLMConfig configures the cheap primary classifier used by the risk
// and policy agents before falling back to the frontier model
type SLMConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	BaseURL          string `yaml:"base_url" json:"base_url"`
	APIKey           string `yaml:"api_key" json:"-"`
	LabelerID        string `yaml:"labeler_id" json:"labeler_id,omitempty"`
	LabelerVersionID string `yaml:"labeler_version_id" json:"labeler_version_id,omitempty"`
}

// SearchConfig configures external search enrichment
type SearchConfig struct {
	AllowExternalSearch     bool     `yaml:"allow_external_search" json:"allow_external_search"`
	AllowEnrichmentPersist  bool     `yaml:"allow_enrichment_persist" json:"allow_enrichment_persist"`
	SerperAPIKey            string   `yaml:"serper_api_key" json:"-"`
	Allowlist               []string `yaml:"allowlist" json:"allowlist"`
	MaxResultsPerQuery      int      `yaml:"max_results_per_query" json:"max_results_per_query"`
	RequestsPerSecond       float64  `yaml:"requests_per_second" json:"requests_per_second"`
	FetchFullPages          bool     `yaml:"fetch_full_pages" json:"fetch_full_pages"`
	FetchMaxBytes           int64    `yaml:"fetch_max_bytes" json:"fetch_max_bytes"`
	RespectRobots           bool     `yaml:"respect_robots" json:"respect_robots"`
	TimeoutSeconds          int      `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Timeout returns the external search timeout budget
func (c SearchConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 6 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IndexConfig configures the evidence index
type IndexConfig struct {
	Path            string `yaml:"path" json:"path"`
	ResultsPerClaim int    `yaml:"results_per_claim" json:"results_per_claim"`
}

// GovernanceConfig configures the decision/review/config store
type GovernanceConfig struct {
	DBPath string `yaml:"db_path" json:"db_path"`
}

// PolicyConfig points at the policy document the policy agent
// interprets. The text is collaborator input, not control flow.
type PolicyConfig struct {
	FilePath string `yaml:"file_path" json:"file_path"`
}

// HTTPConfig configures outbound HTTP behavior
type HTTPConfig struct {
	UserAgent  string `yaml:"user_agent" json:"user_agent"`
	HTTPProxy  string `yaml:"http_proxy" json:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy" json:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy" json:"no_proxy,omitempty"`
}

// CacheConfig configures the embedding/search caches
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Dir     string `yaml:"dir" json:"dir"`
}

// ConcurrencyConfig configures worker counts for batch analysis
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" json:"batch_workers"`
}

// OutputConfig configures operator-facing output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Thresholds are the operator-tunable routing and escalation gates,
// including the external-search toggles. The governance store can
// override any of them at runtime; the orchestrator resolves the
// active set once per analyze call. The boolean gates are seeded from
// the search config section at startup.
type Thresholds struct {
	ClaimConfidence        float64 `yaml:"claim_confidence" json:"claim_confidence_threshold"`
	RiskConfidence         float64 `yaml:"risk_confidence" json:"risk_confidence_threshold"`
	PolicyConfidence       float64 `yaml:"policy_confidence" json:"policy_confidence_threshold"`
	NoveltySimilarity      float64 `yaml:"novelty_similarity" json:"novelty_similarity_threshold"`
	EvidenceSimilarity     float64 `yaml:"evidence_similarity" json:"evidence_similarity_cutoff"`
	AllowExternalSearch    bool    `yaml:"-" json:"allow_external_search"`
	AllowEnrichmentPersist bool    `yaml:"-" json:"allow_external_enrichment"`
}

// DefaultThresholds returns the stock gates
func DefaultThresholds() Thresholds {
	return Thresholds{
		ClaimConfidence:     0.65,
		RiskConfidence:      0.6,
		PolicyConfidence:    0.7,
		NoveltySimilarity:   0.35,
		EvidenceSimilarity:  0.3,
		AllowExternalSearch: true,
	}
}

// Merge applies override values on top of the receiver. Boolean gates
// take 0 (off) or any non-zero value (on), so one override vocabulary
// covers the whole configuration surface.
func (t Thresholds) Merge(overrides map[string]float64) Thresholds {
	merged := t
	for key, val := range overrides {
		switch key {
		case "claim_confidence_threshold":
			merged.ClaimConfidence = val
		case "risk_confidence_threshold":
			merged.RiskConfidence = val
		case "policy_confidence_threshold":
			merged.PolicyConfidence = val
		case "novelty_similarity_threshold":
			merged.NoveltySimilarity = val
		case "evidence_similarity_cutoff":
			merged.EvidenceSimilarity = val
		case "allow_external_search":
			merged.AllowExternalSearch = val != 0
		case "allow_external_enrichment":
			merged.AllowEnrichmentPersist = val != 0
		}
	}
	return merged
}

// DefaultConfig returns the stock configuration
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "gpt-4o-mini",
			EmbeddingModel:    "text-embedding-3-small",
			TimeoutSeconds:    6,
			FastTimeoutMillis: 2500,
			MaxTokens:         2000,
		},
		SLM: SLMConfig{
			Enabled: false,
			BaseURL: "https://api.zentropi.ai/v1/label",
		},
		Search: SearchConfig{
			AllowExternalSearch:    true,
			AllowEnrichmentPersist: false,
			Allowlist: []string{
				"wikipedia.org", "who.int", "cdc.gov", "nih.gov",
				"reuters.com", "apnews.com", "factcheck.org", "snopes.com",
			},
			MaxResultsPerQuery: 5,
			RequestsPerSecond:  2.0,
			FetchFullPages:     false,
			FetchMaxBytes:      1_000_000,
			RespectRobots:      true,
			TimeoutSeconds:     6,
		},
		Index: IndexConfig{
			Path:            "./data/evidence_index.json",
			ResultsPerClaim: 10,
		},
		Governance: GovernanceConfig{
			DBPath: "./data/decisions.db",
		},
		Thresholds: DefaultThresholds(),
		Policy: PolicyConfig{
			FilePath: "./policies/misinformation_policy.txt",
		},
		HTTP: HTTPConfig{
			UserAgent: "decisionflow/0.1 (+https://github.com/cynthialmy/llm-decision-flow)",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "./data/cache",
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{},
	}
}
