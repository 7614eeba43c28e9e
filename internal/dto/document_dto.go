package dto

type CreateDocumentRequest struct {
	Content   string                 `json:"content" validate:"required"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Embedding []float32              `json:"embedding,omitempty"`
	Async     bool                   `json:"async,omitempty"`
}

type CreateDocumentResponse struct {
	Id     string `json:"id"`
	Queued bool   `json:"queued"`
}

type SearchDocumentsRequest struct {
	Query  string                 `json:"query" validate:"required"`
	Limit  int                    `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	Filter map[string]interface{} `json:"filter,omitempty"`
}

type DocumentResponse struct {
	Id              string                 `json:"id"`
	Content         string                 `json:"content"`
	Metadata        map[string]interface{} `json:"metadata"`
	SimilarityScore *float64               `json:"similarityScore,omitempty"`
}

// PublishIngestDocumentMessage is the payload on the ingestion topic.
type PublishIngestDocumentMessage struct {
	Id       string                 `json:"id"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
