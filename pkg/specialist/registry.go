package specialist

import (
	"fmt"
	"os"
	"strings"

	"marketing-assistant-be/internal/pkg/logger"
	"marketing-assistant-be/pkg/llm"

	"gopkg.in/yaml.v3"
)

// Registry keeps specialists in registration order, keyed by id.
type Registry struct {
	order []string
	byID  map[string]Specialist
}

func NewRegistry(specialists ...Specialist) *Registry {
	r := &Registry{byID: make(map[string]Specialist)}
	for _, s := range specialists {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a specialist. Ids are matched case-insensitively.
func (r *Registry) Register(s Specialist) {
	id := strings.ToLower(s.ID())
	if _, exists := r.byID[id]; !exists {
		r.order = append(r.order, id)
	}
	r.byID[id] = s
}

func (r *Registry) Get(id string) (Specialist, bool) {
	s, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	return s, ok
}

func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Matching returns the specialists whose keyword triggers fire for query.
func (r *Registry) Matching(query string) []Specialist {
	var out []Specialist
	for _, id := range r.order {
		if s := r.byID[id]; s.CanHandle(query) {
			out = append(out, s)
		}
	}
	return out
}

type definitionsFile struct {
	Specialists []Definition `yaml:"specialists"`
}

// LoadDefinitions reads specialist definitions from a YAML file.
func LoadDefinitions(path string) ([]Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read specialists file: %w", err)
	}
	return ParseDefinitions(raw)
}

func ParseDefinitions(raw []byte) ([]Definition, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse specialists file: %w", err)
	}

	seen := make(map[string]bool)
	for i, def := range file.Specialists {
		id := strings.ToLower(strings.TrimSpace(def.ID))
		if id == "" {
			return nil, fmt.Errorf("specialist #%d: id is required", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("specialist %q: duplicate id", id)
		}
		if strings.TrimSpace(def.SystemPrompt) == "" {
			return nil, fmt.Errorf("specialist %q: system_prompt is required", id)
		}
		seen[id] = true
		file.Specialists[i].ID = id
		if def.Name == "" {
			file.Specialists[i].Name = id
		}
	}
	return file.Specialists, nil
}

// BuildRegistry creates the experts from defs, or from DefaultDefinitions when defs is empty.
func BuildRegistry(defs []Definition, provider llm.LLMProvider, log logger.ILogger) *Registry {
	if len(defs) == 0 {
		defs = DefaultDefinitions()
	}
	r := NewRegistry()
	for _, def := range defs {
		r.Register(NewExpert(def, provider, log))
	}
	return r
}
