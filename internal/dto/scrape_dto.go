package dto

import "time"

type ScrapeRequest struct {
	Url   string `json:"url" validate:"required"`
	Index bool   `json:"index,omitempty"` // also queue the page for ingestion
}

type ScrapeMetadata struct {
	ScrapeTimestamp time.Time `json:"scrapeTimestamp"`
	SourceType      string    `json:"sourceType"`
}

type ScrapeResponse struct {
	Url         string         `json:"url"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Metadata    ScrapeMetadata `json:"metadata"`
}
