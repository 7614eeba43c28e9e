package embedding

import (
	"fmt"

	"marketing-assistant-be/pkg/llm/ollama"
	"marketing-assistant-be/pkg/llm/openai"
)

func NewEmbeddingProvider(provider string, openaiCfg openai.Config, ollamaCfg ollama.Config) (EmbeddingProvider, error) {
	switch provider {
	case "openai", "":
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an API key")
		}
		return NewOpenAIProvider(openaiCfg), nil
	case "ollama":
		return NewOllamaProvider(ollama.NewClient(ollamaCfg)), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}
}
