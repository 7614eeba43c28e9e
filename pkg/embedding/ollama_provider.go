package embedding

import (
	"context"
	"fmt"

	"marketing-assistant-be/pkg/llm/ollama"
)

const defaultOllamaEmbeddingModel = "nomic-embed-text"

// OllamaProvider embeds text with a local model through /api/embed. The
// model must produce vectors of the configured dimensionality or the
// embedding builder rejects them.
type OllamaProvider struct {
	client *ollama.Client
	model  string
}

var (
	_ EmbeddingProvider = (*OllamaProvider)(nil)
	_ TokenCounter      = (*OllamaProvider)(nil)
)

func NewOllamaProvider(client *ollama.Client) *OllamaProvider {
	model := client.Model()
	if model == "" {
		model = defaultOllamaEmbeddingModel
	}
	return &OllamaProvider{client: client, model: model}
}

type ollamaEmbedRequest struct {
	Model     string `json:"model"`
	Input     string `json:"input"`
	KeepAlive string `json:"keep_alive,omitempty"`
}

type ollamaEmbedResponse struct {
	Embeddings      [][]float32 `json:"embeddings"`
	PromptEvalCount int         `json:"prompt_eval_count"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string) (*EmbeddingResponse, error) {
	var res ollamaEmbedResponse
	if err := p.client.Post(ctx, "/api/embed", ollamaEmbedRequest{
		Model:     p.model,
		Input:     text,
		KeepAlive: p.client.KeepAlive(),
	}, &res); err != nil {
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama embedding returned no vectors")
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: res.Embeddings[0]},
		Usage: Usage{
			PromptTokens: res.PromptEvalCount,
			TotalTokens:  res.PromptEvalCount,
		},
	}, nil
}

// CountTokens embeds the text and reports the prompt evaluation count.
func (p *OllamaProvider) CountTokens(ctx context.Context, text string) (int, error) {
	res, err := p.Generate(ctx, text)
	if err != nil {
		return 0, err
	}
	if res.Usage.TotalTokens <= 0 {
		return 0, fmt.Errorf("provider reported no token usage")
	}
	return res.Usage.TotalTokens, nil
}
