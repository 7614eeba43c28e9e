package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"marketing-assistant-be/pkg/llm/openai"

	"golang.org/x/time/rate"
)

// OpenAIProvider calls the /embeddings endpoint (text-embedding-3-small, 1536 dims by default).
type OpenAIProvider struct {
	cfg     openai.Config
	client  *http.Client
	limiter *rate.Limiter
}

var (
	_ EmbeddingProvider = &OpenAIProvider{}
	_ TokenCounter      = &OpenAIProvider{}
)

func NewOpenAIProvider(cfg openai.Config) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openai.DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &OpenAIProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}
}

type openAIEmbeddingRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage Usage `json:"usage"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string) (*EmbeddingResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	jsonBody, err := json.Marshal(openAIEmbeddingRequest{
		Model:          p.cfg.Model,
		Input:          text,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/embeddings", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	openai.SetHeaders(req, p.cfg)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai embedding error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var embResp openAIEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &embResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding returned no data")
	}

	values := make([]float32, len(embResp.Data[0].Embedding))
	for i, v := range embResp.Data[0].Embedding {
		values[i] = float32(v)
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: values},
		Usage:     embResp.Usage,
	}, nil
}

// CountTokens embeds the text and reports the provider's token usage.
func (p *OpenAIProvider) CountTokens(ctx context.Context, text string) (int, error) {
	res, err := p.Generate(ctx, text)
	if err != nil {
		return 0, err
	}
	if res.Usage.TotalTokens <= 0 {
		return 0, fmt.Errorf("provider reported no token usage")
	}
	return res.Usage.TotalTokens, nil
}
