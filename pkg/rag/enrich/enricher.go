// Package enrich builds the per-request context: scraped pages for URLs
// mentioned in the query and, optionally, documents retrieved by similarity.
package enrich

import (
	"context"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/store"
	"marketing-assistant-be/pkg/urlutil"

	"golang.org/x/sync/errgroup"
)

type Scraper interface {
	Scrape(ctx context.Context, url string) (*store.ScrapedPage, error)
}

type Retriever interface {
	Query(ctx context.Context, text string, k int, filter map[string]interface{}) []store.Document
}

type Options struct {
	// TopK is the number of documents retrieved; zero disables retrieval.
	TopK   int
	Filter map[string]interface{}
}

type Enricher struct {
	scraper   Scraper
	retriever Retriever
	opts      Options
	logger    logger.ILogger
}

// NewEnricher accepts a nil scraper or retriever; the matching enrichment step is skipped.
func NewEnricher(scraper Scraper, retriever Retriever, opts Options, log logger.ILogger) *Enricher {
	if log == nil {
		log = logger.Nop()
	}
	return &Enricher{scraper: scraper, retriever: retriever, opts: opts, logger: log}
}

// Enrich returns a fresh context holding priorTurns plus whatever scraping
// and retrieval produced. Individual failures are logged and skipped.
func (e *Enricher) Enrich(ctx context.Context, query string, priorTurns []store.Turn) *store.Context {
	c := &store.Context{PriorTurns: priorTurns}

	var urls []string
	if e.scraper != nil {
		urls = urlutil.Extract(query)
	}
	pages := make([]*store.ScrapedPage, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			page, err := e.scraper.Scrape(gctx, u)
			if err != nil {
				e.logger.Warn("ENRICH", "Scrape failed, skipping URL", map[string]interface{}{
					"url":   u,
					"error": err.Error(),
				})
				return nil
			}
			pages[i] = page
			return nil
		})
	}

	if e.retriever != nil && e.opts.TopK > 0 {
		g.Go(func() error {
			c.RelevantDocuments = e.retriever.Query(gctx, query, e.opts.TopK, e.opts.Filter)
			return nil
		})
	}

	// Workers never return errors.
	_ = g.Wait()

	for _, page := range pages {
		if page != nil {
			c.ScrapedPages = append(c.ScrapedPages, *page)
		}
	}

	if len(urls) > 0 || len(c.RelevantDocuments) > 0 {
		e.logger.Info("ENRICH", "Context enriched", map[string]interface{}{
			"urls":      len(urls),
			"pages":     len(c.ScrapedPages),
			"documents": len(c.RelevantDocuments),
		})
	}
	return c
}
