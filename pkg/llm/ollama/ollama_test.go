package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketing-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSendsOptions(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"message":{"role":"assistant","content":"[\"none\"]"},"done":true}`))
	}))
	defer srv.Close()

	p := NewProvider(NewClient(Config{BaseURL: srv.URL + "/", Model: "llama3", KeepAlive: "5m"}))
	out, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}},
		llm.WithTemperature(0), llm.WithMaxTokens(5))

	require.NoError(t, err)
	assert.Equal(t, `["none"]`, out)
	assert.Equal(t, "llama3", captured["model"])
	assert.Equal(t, false, captured["stream"])
	assert.Equal(t, "5m", captured["keep_alive"])
	options := captured["options"].(map[string]interface{})
	assert.Equal(t, float64(0), options["temperature"])
	assert.Equal(t, float64(5), options["num_predict"])
}

func TestChatSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"llama3\" not found"}`))
	}))
	defer srv.Close()

	p := NewProvider(NewClient(Config{BaseURL: srv.URL, Model: "llama3"}))
	_, err := p.Generate(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "not found")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"role":"assistant","content":""},"done":true}`))
	}))
	defer srv.Close()

	p := NewProvider(NewClient(Config{BaseURL: srv.URL}))
	_, err := p.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, errEmptyReply)
}
