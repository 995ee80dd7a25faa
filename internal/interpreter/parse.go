package interpreter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrMalformedOutput reports that the model's structured output could
// not be parsed even after repair. Callers recover with their own
// deterministic fallback; this is never surfaced to the user.
var ErrMalformedOutput = errors.New("interpreter: malformed structured output")

// ExtractJSONObject pulls a JSON object out of model output: code fences
// are stripped, then plain unmarshal, then the jsonrepair library as a
// last attempt before giving up.
func ExtractJSONObject(content string, v any) error {
	candidate := stripFences(content)

	if err := json.Unmarshal([]byte(candidate), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return nil
}

func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if idx := strings.Index(s, "```json"); idx >= 0 {
		s = s[idx+len("```json"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	} else if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+len("```"):]
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}
