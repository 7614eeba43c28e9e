package factory

import (
	"fmt"
	"time"

	"marketing-assistant-be/pkg/llm"
	"marketing-assistant-be/pkg/llm/ollama"
	"marketing-assistant-be/pkg/llm/openai"
)

// Settings is the provider-neutral subset of configuration the factory needs.
type Settings struct {
	Provider          string
	Model             string
	BaseURL           string
	APIKey            string
	Project           string
	Organization      string
	KeepAlive         string // ollama only
	RequestsPerSecond float64
	Timeout           time.Duration
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "openai", "":
		if s.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(openai.Config{
			APIKey:            s.APIKey,
			BaseURL:           s.BaseURL,
			Model:             s.Model,
			Project:           s.Project,
			Organization:      s.Organization,
			RequestsPerSecond: s.RequestsPerSecond,
			Timeout:           s.Timeout,
		}), nil
	case "ollama":
		return ollama.NewProvider(ollama.NewClient(ollama.Config{
			BaseURL:           s.BaseURL,
			Model:             s.Model,
			KeepAlive:         s.KeepAlive,
			RequestsPerSecond: s.RequestsPerSecond,
			Timeout:           s.Timeout,
		})), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
