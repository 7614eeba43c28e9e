package router

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NoneSentinel is the route meaning "no specialist applies".
const NoneSentinel = "none"

// ParseResponse lower-cases the model output and decodes it as a JSON array
// of specialist ids. A surrounding markdown code fence is tolerated.
func ParseResponse(raw string) ([]string, error) {
	text := strings.ToLower(strings.TrimSpace(raw))
	text = stripCodeFence(text)

	var ids []string
	if err := json.Unmarshal([]byte(text), &ids); err != nil {
		return nil, fmt.Errorf("invalid router response %q: %w", truncateLog(raw, 200), err)
	}

	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// IsGeneric reports whether a route selects the generic path: empty, or containing "none".
func IsGeneric(ids []string) bool {
	if len(ids) == 0 {
		return true
	}
	for _, id := range ids {
		if id == NoneSentinel {
			return true
		}
	}
	return false
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
