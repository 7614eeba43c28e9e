// Package specialist defines the domain experts the orchestrator dispatches to.
package specialist

import (
	"context"
	"fmt"
	"strings"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/llm"
	"marketing-assistant-be/pkg/store"
)

type Specialist interface {
	ID() string
	Name() string
	Expertise() []string
	// CanHandle reports whether any keyword trigger occurs in the lower-cased query.
	CanHandle(query string) bool
	// Answer never returns an error; provider failures land in Result.Error.
	Answer(ctx context.Context, query string, c *store.Context) store.Result
}

// Definition is the configuration of one expert. It can be loaded from YAML.
type Definition struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Expertise    []string `yaml:"expertise"`
	SystemPrompt string   `yaml:"system_prompt"`
	Keywords     []string `yaml:"keywords"`
	Temperature  *float64 `yaml:"temperature,omitempty"`
}

// Expert is the prompt-driven Specialist implementation.
type Expert struct {
	def      Definition
	keywords []string
	provider llm.LLMProvider
	logger   logger.ILogger
}

var _ Specialist = &Expert{}

func NewExpert(def Definition, provider llm.LLMProvider, log logger.ILogger) *Expert {
	keywords := make([]string, 0, len(def.Keywords))
	for _, k := range def.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Expert{def: def, keywords: keywords, provider: provider, logger: log}
}

func (e *Expert) ID() string          { return e.def.ID }
func (e *Expert) Name() string        { return e.def.Name }
func (e *Expert) Expertise() []string { return e.def.Expertise }

func (e *Expert) CanHandle(query string) bool {
	lower := strings.ToLower(query)
	for _, k := range e.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (e *Expert) Answer(ctx context.Context, query string, c *store.Context) (result store.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("SPECIALIST", "Specialist panicked", map[string]interface{}{
				"specialist": e.def.ID,
				"panic":      fmt.Sprint(r),
			})
			result = store.Result{Content: "", Error: fmt.Sprintf("%s failed to process request", e.def.Name)}
		}
	}()

	messages := BuildMessages(BuildSystemMessage(e.def.SystemPrompt, c), query, c)

	e.logger.Info("SPECIALIST", "Processing request with specialist", map[string]interface{}{
		"specialist": e.def.ID,
		"messages":   len(messages),
	})

	temperature := llm.DefaultTemperature
	if e.def.Temperature != nil {
		temperature = *e.def.Temperature
	}

	content, err := e.provider.Chat(ctx, messages, llm.WithTemperature(temperature))
	if err != nil {
		e.logger.Error("SPECIALIST", "Completion failed", map[string]interface{}{
			"specialist": e.def.ID,
			"error":      err.Error(),
		})
		return store.Result{Content: "", Error: fmt.Sprintf("%s failed to process request: %v", e.def.Name, err)}
	}

	return store.Result{Content: content, Sources: c.Sources()}
}

// BuildSystemMessage appends retrieved documents and scraped pages to the prompt.
func BuildSystemMessage(prompt string, c *store.Context) string {
	var b strings.Builder
	b.WriteString(prompt)
	if c == nil {
		return b.String()
	}

	if len(c.RelevantDocuments) > 0 {
		docs := make([]string, len(c.RelevantDocuments))
		for i, d := range c.RelevantDocuments {
			docs[i] = d.Content
		}
		b.WriteString("\n\nRelevant documents:\n")
		b.WriteString(strings.Join(docs, "\n---\n"))
	}

	if len(c.ScrapedPages) > 0 {
		pages := make([]string, len(c.ScrapedPages))
		for i, p := range c.ScrapedPages {
			title := p.Title
			if title == "" {
				title = "N/A"
			}
			pages[i] = fmt.Sprintf("URL: %s\nTitle: %s\nContent: %s", p.URL, title, p.Content)
		}
		b.WriteString("\n\nScraped content:\n")
		b.WriteString(strings.Join(pages, "\n---\n"))
	}

	return b.String()
}

// BuildMessages returns [system, prior turns..., user].
func BuildMessages(system, query string, c *store.Context) []llm.Message {
	messages := []llm.Message{{Role: store.RoleSystem, Content: system}}
	if c != nil {
		for _, turn := range c.PriorTurns {
			messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
		}
	}
	return append(messages, llm.Message{Role: store.RoleUser, Content: query})
}
