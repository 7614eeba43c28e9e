package router

import (
	"context"
	"fmt"
	"strings"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/llm"
	"marketing-assistant-be/pkg/specialist"
)

// Router asks the completion provider which specialists should answer a query.
// The provider's classification is authoritative. With KeywordShortCircuit on,
// a query that matches no specialist keyword skips the provider call entirely.
type Router struct {
	provider            llm.LLMProvider
	registry            *specialist.Registry
	keywordShortCircuit bool
	logger              logger.ILogger
}

type Options struct {
	KeywordShortCircuit bool
}

func NewRouter(provider llm.LLMProvider, registry *specialist.Registry, opts Options, log logger.ILogger) *Router {
	if log == nil {
		log = logger.Nop()
	}
	return &Router{
		provider:            provider,
		registry:            registry,
		keywordShortCircuit: opts.KeywordShortCircuit,
		logger:              log,
	}
}

// Route returns the selected specialist ids, or ["none"]. It never fails.
func (r *Router) Route(ctx context.Context, query string) []string {
	if r.keywordShortCircuit && len(r.registry.Matching(query)) == 0 {
		r.logger.Debug("ROUTER", "No keyword triggers matched, skipping classification", nil)
		return []string{NoneSentinel}
	}

	messages := []llm.Message{
		{Role: "system", Content: BuildPrompt(r.registry.IDs())},
		{Role: "user", Content: query},
	}

	response, err := r.provider.Chat(ctx, messages, llm.WithTemperature(0))
	if err != nil {
		r.logger.Error("ROUTER", "Error routing request", map[string]interface{}{"error": err.Error()})
		return []string{NoneSentinel}
	}
	if strings.TrimSpace(response) == "" {
		return []string{NoneSentinel}
	}

	ids, err := ParseResponse(response)
	if err != nil {
		r.logger.Error("ROUTER", "Failed to parse router response", map[string]interface{}{"error": err.Error()})
		return []string{NoneSentinel}
	}

	r.logger.Info("ROUTER", "Request routed", map[string]interface{}{"specialists": ids})
	return ids
}

// BuildPrompt is the fixed routing instruction for the registered ids.
func BuildPrompt(ids []string) string {
	return fmt.Sprintf(`You are a routing assistant that determines which specialist agents should handle a user's request.
Available specialists: %s
Respond with a JSON array of specialist names, or ["none"] if no specialist is needed.
Consider the user's query carefully and only select relevant specialists.`, strings.Join(ids, ", "))
}
