package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/cynthialmy/llm-decision-flow/internal/agents"
	"github.com/cynthialmy/llm-decision-flow/internal/cache"
	"github.com/cynthialmy/llm-decision-flow/internal/governance"
	"github.com/cynthialmy/llm-decision-flow/internal/llm"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
	"github.com/cynthialmy/llm-decision-flow/internal/orchestrator"
	"github.com/cynthialmy/llm-decision-flow/internal/rag"
)

// runtime bundles the wired pipeline for a single command invocation
type runtime struct {
	cfg   *model.Config
	store *governance.Store
	index *rag.Index
	orch  *orchestrator.Orchestrator
}

// Close releases long-lived resources
func (r *runtime) Close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}

// loadConfig assembles configuration from defaults, config file, and
// environment. Secrets come from the environment only.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	applyString := func(key string, dst *string) {
		if viper.IsSet(key) {
			*dst = viper.GetString(key)
		}
	}
	applyBool := func(key string, dst *bool) {
		if viper.IsSet(key) {
			*dst = viper.GetBool(key)
		}
	}
	applyInt := func(key string, dst *int) {
		if viper.IsSet(key) {
			*dst = viper.GetInt(key)
		}
	}
	applyFloat := func(key string, dst *float64) {
		if viper.IsSet(key) {
			*dst = viper.GetFloat64(key)
		}
	}

	applyString("llm.provider", &cfg.LLM.Provider)
	applyString("llm.model", &cfg.LLM.Model)
	applyString("llm.base_url", &cfg.LLM.BaseURL)
	applyString("llm.azure_endpoint", &cfg.LLM.AzureEndpoint)
	applyString("llm.embedding_model", &cfg.LLM.EmbeddingModel)
	applyInt("llm.timeout_seconds", &cfg.LLM.TimeoutSeconds)
	applyInt("llm.fast_timeout_ms", &cfg.LLM.FastTimeoutMillis)
	applyInt("llm.max_tokens", &cfg.LLM.MaxTokens)

	applyBool("slm.enabled", &cfg.SLM.Enabled)
	applyString("slm.base_url", &cfg.SLM.BaseURL)
	applyString("slm.labeler_id", &cfg.SLM.LabelerID)
	applyString("slm.labeler_version_id", &cfg.SLM.LabelerVersionID)

	applyBool("search.allow_external_search", &cfg.Search.AllowExternalSearch)
	applyBool("search.allow_enrichment_persist", &cfg.Search.AllowEnrichmentPersist)
	applyInt("search.max_results_per_query", &cfg.Search.MaxResultsPerQuery)
	applyFloat("search.requests_per_second", &cfg.Search.RequestsPerSecond)
	applyBool("search.fetch_full_pages", &cfg.Search.FetchFullPages)
	applyBool("search.respect_robots", &cfg.Search.RespectRobots)
	applyInt("search.timeout_seconds", &cfg.Search.TimeoutSeconds)
	if viper.IsSet("search.allowlist") {
		cfg.Search.Allowlist = viper.GetStringSlice("search.allowlist")
	}

	applyString("index.path", &cfg.Index.Path)
	applyInt("index.results_per_claim", &cfg.Index.ResultsPerClaim)
	applyString("governance.db_path", &cfg.Governance.DBPath)
	applyString("policy.file_path", &cfg.Policy.FilePath)
	applyString("http.user_agent", &cfg.HTTP.UserAgent)
	applyBool("cache.enabled", &cfg.Cache.Enabled)
	applyString("cache.dir", &cfg.Cache.Dir)
	applyInt("concurrency.batch_workers", &cfg.Concurrency.BatchWorkers)

	applyFloat("thresholds.claim_confidence", &cfg.Thresholds.ClaimConfidence)
	applyFloat("thresholds.risk_confidence", &cfg.Thresholds.RiskConfidence)
	applyFloat("thresholds.policy_confidence", &cfg.Thresholds.PolicyConfidence)
	applyFloat("thresholds.novelty_similarity", &cfg.Thresholds.NoveltySimilarity)
	applyFloat("thresholds.evidence_similarity", &cfg.Thresholds.EvidenceSimilarity)

	// Secrets come from the environment, never from config files
	switch cfg.LLM.Provider {
	case "azure":
		cfg.LLM.APIKey = os.Getenv("AZURE_OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("AZURE_API_KEY")
		}
	case "groq":
		cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	default:
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	cfg.SLM.APIKey = os.Getenv("ZENTROPI_API_KEY")
	cfg.Search.SerperAPIKey = os.Getenv("SERPER_API_KEY")

	cfg.Output.Verbose = verbose
	return cfg
}

// buildRuntime wires the full pipeline from configuration
func buildRuntime() (*runtime, error) {
	cfg := loadConfig()

	frontier, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("configure language model: %w", err)
	}

	var sharedCache cache.Cache
	if cfg.Cache.Enabled {
		sharedCache = cache.NewLayeredCache(30*time.Minute, cfg.Cache.Dir, 24*time.Hour)
	}

	var embedder llm.Embedder
	if embedClient, err := llm.NewEmbeddingClient(cfg.LLM); err == nil {
		embedder = embedClient
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Embeddings unavailable, using lexical similarity: %v\n", err)
	}

	index := rag.NewIndex(cfg.Index.Path, embedder, sharedCache)
	if err := index.Load(); err != nil {
		return nil, fmt.Errorf("load evidence index: %w", err)
	}

	prompts := agents.NewRegistry()

	var labeler *llm.LabelClient
	if cfg.SLM.Enabled {
		labeler, err = llm.NewLabelClient(cfg.SLM, cfg.LLM.FastTimeout())
		if err != nil {
			return nil, fmt.Errorf("configure labeler: %w", err)
		}
	}

	searcher := rag.NewExternalSearcher(cfg.Search, cfg.HTTP, sharedCache)

	var fetcher *rag.PageFetcher
	if cfg.Search.FetchFullPages {
		fetcher = rag.NewPageFetcher(cfg.Search, cfg.HTTP)
	}

	enricher := rag.NewEnricher(
		searcher, frontier, prompts.Get(agents.PromptSnippetClassify),
		index, fetcher, cfg.Search.FetchFullPages,
	)

	store, err := governance.NewStore(cfg.Governance.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open governance store: %w", err)
	}

	var resolver orchestrator.ConfigResolver
	if store != nil {
		resolver = store
	}

	// The search gates ride along with the thresholds so governance
	// overrides can flip them per call
	thresholds := cfg.Thresholds
	thresholds.AllowExternalSearch = cfg.Search.AllowExternalSearch
	thresholds.AllowEnrichmentPersist = cfg.Search.AllowEnrichmentPersist

	orch := orchestrator.New(
		agents.NewClaimExtractor(frontier, prompts),
		agents.NewRiskScorer(labeler, frontier, prompts),
		rag.NewRetriever(index),
		enricher,
		agents.NewFactualityAssessor(frontier, prompts),
		agents.NewPolicyInterpreter(labeler, frontier, prompts, cfg.Policy.FilePath),
		resolver,
		prompts,
		orchestrator.Options{
			Thresholds:      thresholds,
			ResultsPerClaim: cfg.Index.ResultsPerClaim,
		},
	)

	return &runtime{
		cfg:   cfg,
		store: store,
		index: index,
		orch:  orch,
	}, nil
}

// progressPrinter reports stage transitions to stderr in verbose mode
func progressPrinter() orchestrator.ProgressFunc {
	if !verbose {
		return nil
	}
	return func(stage, status string) {
		fmt.Fprintf(os.Stderr, "  [%s] %s\n", status, stage)
	}
}
