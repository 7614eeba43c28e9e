package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) (*EmbeddingResponse, error)
}

// TokenCounter is implemented by providers that report token usage.
// The text segmenter uses it for token estimates.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
	Usage     Usage                      `json:"usage"`
}
