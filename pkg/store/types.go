package store

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// SourceDatabase is the source marker for answers that used retrieved documents.
	SourceDatabase = "Database documents"
)

// Document is a piece of reference content in the retrieval index.
// SimilarityScore is only set on query results.
type Document struct {
	ID              string                 `json:"id"`
	Content         string                 `json:"content"`
	Metadata        map[string]interface{} `json:"metadata"`
	Embedding       []float32              `json:"-"`
	SimilarityScore *float64               `json:"similarityScore,omitempty"`
}

// ScrapedPage fields are never nil; missing values default to "".
type ScrapedPage struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

type Turn struct {
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type Session struct {
	ID             string    `json:"id"`
	ExternalUserID string    `json:"externalUserId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Context is the per-request accumulator built by the enricher.
// It belongs to one in-flight request and is never shared.
type Context struct {
	RelevantDocuments []Document
	ScrapedPages      []ScrapedPage
	PriorTurns        []Turn
}

// Result is produced by one specialist (or the generic path) and, once
// combined, is the response returned to the front door.
type Result struct {
	Content string   `json:"content"`
	Sources []string `json:"sources,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func (r Result) Failed() bool {
	return r.Error != ""
}

// Sources lists "Database documents" when documents were retrieved, then every scraped URL.
func (c *Context) Sources() []string {
	if c == nil {
		return nil
	}
	var sources []string
	if len(c.RelevantDocuments) > 0 {
		sources = append(sources, SourceDatabase)
	}
	for _, page := range c.ScrapedPages {
		sources = append(sources, page.URL)
	}
	return sources
}
