package service

import (
	"context"
	"errors"
	"time"

	"marketing-assistant-be/internal/dto"
	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/apperror"
	"marketing-assistant-be/pkg/store"
	"marketing-assistant-be/pkg/urlutil"
)

const sourceTypeWebScrape = "web_scrape"

// ErrNothingScraped means the scrape service answered without a page.
var ErrNothingScraped = errors.New("scrape returned no content")

type PageScraper interface {
	Scrape(ctx context.Context, url string) (*store.ScrapedPage, error)
}

type IScrapeService interface {
	Scrape(ctx context.Context, request *dto.ScrapeRequest) (*dto.ScrapeResponse, error)
}

type scrapeService struct {
	scraper         PageScraper
	documentService IDocumentService
	logger          logger.ILogger
}

func NewScrapeService(scraper PageScraper, documentService IDocumentService, log logger.ILogger) IScrapeService {
	if log == nil {
		log = logger.Nop()
	}
	return &scrapeService{
		scraper:         scraper,
		documentService: documentService,
		logger:          log,
	}
}

func (s *scrapeService) Scrape(ctx context.Context, request *dto.ScrapeRequest) (*dto.ScrapeResponse, error) {
	target := urlutil.Normalize(urlutil.Preprocess(request.Url))
	if !urlutil.IsValid(target) {
		return nil, apperror.NewInputError("url", "must be a valid URL")
	}

	page, err := s.scraper.Scrape(ctx, target)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrNothingScraped
	}

	res := &dto.ScrapeResponse{
		Url:         page.URL,
		Title:       page.Title,
		Description: page.Description,
		Content:     page.Content,
		Metadata: dto.ScrapeMetadata{
			ScrapeTimestamp: time.Now().UTC(),
			SourceType:      sourceTypeWebScrape,
		},
	}
	if res.Url == "" {
		res.Url = target
	}

	if request.Index && s.documentService != nil && page.Content != "" {
		_, err := s.documentService.Create(ctx, &dto.CreateDocumentRequest{
			Content: page.Content,
			Metadata: map[string]interface{}{
				"url":        res.Url,
				"title":      page.Title,
				"sourceType": sourceTypeWebScrape,
			},
			Async: true,
		})
		if err != nil {
			s.logger.Warn("SCRAPE", "Failed to queue scraped page for ingestion", map[string]interface{}{
				"url":   res.Url,
				"error": err.Error(),
			})
		}
	}

	return res, nil
}
