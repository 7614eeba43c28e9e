package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketing-assistant-be/pkg/llm/openai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerateAndCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		w.Write([]byte(`{"data":[{"embedding":[0.5,0.25,-1]}],"usage":{"prompt_tokens":7,"total_tokens":7}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(openai.Config{APIKey: "k", BaseURL: srv.URL})

	res, err := p.Generate(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25, -1}, res.Embedding.Values)

	n, err := p.CountTokens(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestOpenAIGenerateNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(openai.Config{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "x")
	assert.Error(t, err)
}
