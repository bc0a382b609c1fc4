package vertex

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers a JSON object from model output that may wrap it in
// prose or markdown fences. It tries a whole-string parse first, then the
// first brace-matched span (first "{" through last "}"), and returns an empty
// map when neither parses. It never fails.
func ExtractJSON(raw string) map[string]any {
	text := strings.TrimSpace(raw)

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj != nil {
		return obj
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		obj = nil
		if err := json.Unmarshal([]byte(text[start:end+1]), &obj); err == nil && obj != nil {
			return obj
		}
	}

	return map[string]any{}
}
