package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketing-assistant-be/internal/bootstrap"
	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/internal/repository/unitofwork"
	"marketing-assistant-be/internal/service"
	"marketing-assistant-be/pkg/database"
	"marketing-assistant-be/pkg/llm"
	"marketing-assistant-be/pkg/rag/retrieval"
	"marketing-assistant-be/pkg/scraper"
	"marketing-assistant-be/pkg/store"
	"marketing-assistant-be/pkg/urlutil"

	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("DB_CONNECTION_STRING is not set")

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Send one completion and one embedding request",
	RunE:  runProviders,
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Ping the database and check the vector extension",
	RunE:  runDB,
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape one page through the configured scraper",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Run one message through the full orchestration pipeline",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(providersCmd, dbCmd, scrapeCmd, chatCmd)

	chatCmd.Flags().Bool("no-retrieval", false, "skip document retrieval even when a database is configured")
}

func runProviders(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg.Retrieval.Enabled = false
	core, err := bootstrap.NewCore(cfg, offlineStore{}, logger.Nop())
	if err != nil {
		return err
	}

	printer.Header("LLM %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	start := time.Now()
	reply, err := core.LLM.Generate(ctx, "Reply with the single word: pong", llm.WithMaxTokens(5))
	if err != nil {
		printer.Fail("completion failed: %v", err)
	} else {
		printer.OK("completion in %s", time.Since(start).Round(time.Millisecond))
		printer.Detail("reply", strings.TrimSpace(reply))
	}

	printer.Header("Embedding %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)
	start = time.Now()
	resp, embErr := core.Embedding.Generate(ctx, "marketing assistant health check")
	switch {
	case embErr != nil:
		printer.Fail("embedding failed: %v", embErr)
	case len(resp.Embedding.Values) != cfg.Ai.EmbeddingDims:
		printer.Warn("embedding has %d dimensions, EMBEDDING_DIMENSIONS is %d", len(resp.Embedding.Values), cfg.Ai.EmbeddingDims)
	default:
		printer.OK("embedding in %s", time.Since(start).Round(time.Millisecond))
		printer.Detail("dimensions", fmt.Sprint(len(resp.Embedding.Values)))
		printer.Detail("tokens", fmt.Sprint(resp.Usage.TotalTokens))
	}

	return errors.Join(err, embErr)
}

func runDB(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	printer.Header("Database")
	if cfg.Database.Connection == "" {
		return errNoDatabase
	}
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return err
	}
	if err := database.Ping(ctx, db); err != nil {
		return err
	}
	printer.OK("connected")

	var version string
	if err := db.WithContext(ctx).Raw("SELECT extversion FROM pg_extension WHERE extname = 'vector'").Scan(&version).Error; err != nil || version == "" {
		printer.Warn("pgvector extension is not installed, run cmd/migrate")
		return nil
	}
	printer.OK("pgvector %s", version)

	var documents int64
	if err := db.WithContext(ctx).Table("documents").Count(&documents).Error; err != nil {
		printer.Warn("documents table missing: %v", err)
		return nil
	}
	printer.Detail("documents", fmt.Sprint(documents))
	return nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	target := urlutil.Normalize(urlutil.Preprocess(args[0]))
	printer.Header("Scrape %s", target)
	if !urlutil.IsValid(target) {
		return fmt.Errorf("%q is not a valid URL", args[0])
	}

	client := scraper.NewClient(cfg.Scraper.Endpoint, cfg.Scraper.Timeout, logger.Nop())
	if !client.Enabled() {
		return errors.New("SCRAPER_ENDPOINT is not set")
	}

	start := time.Now()
	page, err := client.Scrape(ctx, target)
	if err != nil {
		return err
	}
	printer.OK("scraped in %s", time.Since(start).Round(time.Millisecond))
	printer.Detail("title", page.Title)
	printer.Detail("description", page.Description)
	printer.Detail("content", fmt.Sprintf("%d chars", len(page.Content)))
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	noRetrieval, _ := cmd.Flags().GetBool("no-retrieval")

	var docStore retrieval.DocumentStore = offlineStore{}
	if cfg.Database.Connection != "" && !noRetrieval {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			return err
		}
		docStore = service.NewDocumentStore(unitofwork.NewRepositoryFactory(db))
	} else {
		cfg.Retrieval.Enabled = false
	}

	core, err := bootstrap.NewCore(cfg, docStore, logger.Nop())
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	printer.Header("Chat")
	printer.Detail("query", query)
	printer.Detail("routed to", strings.Join(core.Router.Route(ctx, query), ", "))

	start := time.Now()
	result := core.Orchestrator.Process(ctx, query, nil)
	if result.Failed() {
		printer.Fail("orchestration failed in %s", time.Since(start).Round(time.Millisecond))
		printer.Detail("error", result.Error)
		return errors.New(result.Error)
	}

	printer.OK("answered in %s", time.Since(start).Round(time.Millisecond))
	if len(result.Sources) > 0 {
		printer.Detail("sources", strings.Join(result.Sources, ", "))
	}
	fmt.Println()
	fmt.Println(result.Content)
	return nil
}

// offlineStore backs the retrieval index when no database is configured.
type offlineStore struct{}

func (offlineStore) Insert(context.Context, *store.Document) (string, error) {
	return "", errNoDatabase
}

func (offlineStore) QueryNearest(context.Context, []float32, int, map[string]interface{}) ([]store.Document, error) {
	return nil, errNoDatabase
}
