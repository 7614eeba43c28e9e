package bootstrap

import (
	"log"

	"marketing-assistant-be/internal/config"
	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/ai/router"
	"marketing-assistant-be/pkg/embedding"
	"marketing-assistant-be/pkg/llm"
	"marketing-assistant-be/pkg/llm/factory"
	"marketing-assistant-be/pkg/llm/ollama"
	"marketing-assistant-be/pkg/llm/openai"
	"marketing-assistant-be/pkg/orchestrator"
	"marketing-assistant-be/pkg/rag/embedder"
	"marketing-assistant-be/pkg/rag/enrich"
	"marketing-assistant-be/pkg/rag/retrieval"
	"marketing-assistant-be/pkg/scraper"
	"marketing-assistant-be/pkg/specialist"
	"marketing-assistant-be/pkg/textproc"
)

// Core is the request-independent AI pipeline shared by every front door.
type Core struct {
	LLM          llm.LLMProvider
	Embedding    embedding.EmbeddingProvider
	Index        *retrieval.Index
	Scraper      *scraper.Client
	Specialists  *specialist.Registry
	Router       *router.Router
	Orchestrator *orchestrator.Orchestrator
}

// NewCore wires providers, retrieval, specialists, router and orchestrator.
// store persists documents for the retrieval index.
func NewCore(cfg *config.Config, store retrieval.DocumentStore, sysLogger logger.ILogger) (*Core, error) {
	// Providers
	llmProvider, err := factory.NewLLMProvider(factory.Settings{
		Provider:          cfg.Ai.LLMProvider,
		Model:             cfg.Ai.LLMModel,
		BaseURL:           llmBaseURL(cfg.Ai),
		APIKey:            cfg.Ai.OpenAIKey,
		Project:           cfg.Ai.OpenAIProject,
		Organization:      cfg.Ai.OpenAIOrg,
		KeepAlive:         cfg.Ai.OllamaKeepAlive,
		RequestsPerSecond: cfg.Ai.RequestsPerSecond,
		Timeout:           cfg.Ai.Timeout,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	embeddingProvider, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		openai.Config{
			APIKey:            cfg.Ai.OpenAIKey,
			BaseURL:           cfg.Ai.OpenAIBaseURL,
			Model:             cfg.Ai.EmbeddingModel,
			Project:           cfg.Ai.OpenAIProject,
			Organization:      cfg.Ai.OpenAIOrg,
			RequestsPerSecond: cfg.Ai.RequestsPerSecond,
			Timeout:           cfg.Ai.Timeout,
		},
		ollama.Config{
			BaseURL:           cfg.Ai.OllamaBaseURL,
			Model:             cfg.Ai.EmbeddingModel,
			KeepAlive:         cfg.Ai.OllamaKeepAlive,
			RequestsPerSecond: cfg.Ai.RequestsPerSecond,
			Timeout:           cfg.Ai.Timeout,
		},
	)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s, %d dims)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDims)

	// Retrieval
	segmenter := textproc.NewSegmenter(newEstimator(cfg.Retrieval, embeddingProvider, sysLogger))
	normalizer := textproc.NewNormalizer(textproc.NormalizeOptions{
		PreserveCase:        cfg.Retrieval.PreserveCase,
		PreserveNumbers:     cfg.Retrieval.PreserveNumbers,
		PreservePunctuation: cfg.Retrieval.PreservePunctuation,
		DomainTerms:         domainTerms(cfg.Retrieval),
		MaxTextLength:       cfg.Retrieval.MaxTextLength,
	})
	builder := embedder.NewBuilder(embeddingProvider, segmenter, normalizer, embedder.Config{
		Dimensions:    cfg.Ai.EmbeddingDims,
		MaxTokens:     cfg.Retrieval.MaxTokens,
		OverlapTokens: cfg.Retrieval.OverlapTokens,
	}, sysLogger)
	index := retrieval.NewIndex(builder, store, sysLogger)

	pageScraper := scraper.NewClient(cfg.Scraper.Endpoint, cfg.Scraper.Timeout, sysLogger)

	// Specialists
	defs, err := loadDefinitions(cfg.Specialists.File)
	if err != nil {
		return nil, err
	}
	registry := specialist.BuildRegistry(defs, llmProvider, sysLogger)
	log.Printf("[INFO] Registered %d specialists: %v", registry.Len(), registry.IDs())

	queryRouter := router.NewRouter(llmProvider, registry, router.Options{
		KeywordShortCircuit: cfg.Specialists.KeywordShortCircuit,
	}, sysLogger)

	// Interface values stay nil when a step is disabled
	var enrichScraper enrich.Scraper
	if pageScraper.Enabled() {
		enrichScraper = pageScraper
	} else {
		log.Printf("[WARN] SCRAPER_ENDPOINT not set, URL scraping disabled")
	}
	var enrichRetriever enrich.Retriever
	if cfg.Retrieval.Enabled {
		enrichRetriever = index
	}
	enricher := enrich.NewEnricher(enrichScraper, enrichRetriever, enrich.Options{
		TopK: cfg.Retrieval.TopK,
	}, sysLogger)

	return &Core{
		LLM:          llmProvider,
		Embedding:    embeddingProvider,
		Index:        index,
		Scraper:      pageScraper,
		Specialists:  registry,
		Router:       queryRouter,
		Orchestrator: orchestrator.NewOrchestrator(enricher, queryRouter, registry, llmProvider, cfg.Ai.Temperature, sysLogger),
	}, nil
}

func llmBaseURL(ai config.AIConfig) string {
	if ai.LLMBaseURL != "" {
		return ai.LLMBaseURL
	}
	if ai.LLMProvider == "ollama" {
		return ai.OllamaBaseURL
	}
	return ai.OpenAIBaseURL
}

func newEstimator(cfg config.RetrievalConfig, provider embedding.EmbeddingProvider, sysLogger logger.ILogger) textproc.TokenEstimator {
	counter, ok := provider.(embedding.TokenCounter)
	if cfg.TokenCounter != "provider" || !ok {
		return textproc.HeuristicEstimator{}
	}

	estimator, err := textproc.NewProviderEstimator(counter, cfg.TokenCacheSize, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to create token cache: %v. Using heuristic token estimates", err)
		return textproc.HeuristicEstimator{}
	}
	return estimator
}

func domainTerms(cfg config.RetrievalConfig) []string {
	if len(cfg.DomainTerms) > 0 {
		return cfg.DomainTerms
	}
	return textproc.DefaultDomainTerms
}

func loadDefinitions(path string) ([]specialist.Definition, error) {
	if path == "" {
		return nil, nil
	}
	defs, err := specialist.LoadDefinitions(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Loaded specialist definitions from %s", path)
	return defs, nil
}
