// Package scraper calls the external page-scraping service.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/store"
)

// ErrScraperDisabled is returned when no valid scraper endpoint is configured.
var ErrScraperDisabled = errors.New("web scraping is disabled: scraper endpoint not configured")

const DefaultTimeout = 30 * time.Second

type scrapeRequest struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

type scrapeResponse struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.ILogger
}

// NewClient builds a scraper client. An empty or malformed endpoint yields a
// disabled client whose Scrape always returns ErrScraperDisabled.
func NewClient(endpoint string, timeout time.Duration, log logger.ILogger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	if endpoint != "" {
		if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			log.Error("SCRAPER", "Invalid scraper endpoint, scraping disabled", map[string]interface{}{"endpoint": endpoint})
			endpoint = ""
		}
	} else {
		log.Warn("SCRAPER", "Scraper endpoint not configured, scraping disabled", nil)
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// Scrape fetches one page. It returns (nil, nil) when the service answers
// without a page body.
func (c *Client) Scrape(ctx context.Context, pageURL string) (*store.ScrapedPage, error) {
	if !c.Enabled() {
		return nil, ErrScraperDisabled
	}

	body, err := json.Marshal(scrapeRequest{URL: pageURL, Format: "json"})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read scrape response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return nil, fmt.Errorf("scraper returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.logger.Warn("SCRAPER", "Scraper returned no page", map[string]interface{}{"url": pageURL})
		return nil, nil
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode scrape response: %w", err)
	}

	page := &store.ScrapedPage{
		URL:         pageURL,
		Title:       deref(parsed.Title),
		Description: deref(parsed.Description),
		Content:     deref(parsed.Content),
	}

	c.logger.Info("SCRAPER", "Page scraped", map[string]interface{}{
		"url":         pageURL,
		"content_len": len(page.Content),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return page, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
