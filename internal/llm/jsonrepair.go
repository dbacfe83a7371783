package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	objectRe        = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
	newlineInString = regexp.MustCompile(`:\s*"([^"]*)\n([^"]*)"`)
)

// DecodeObject parses model output into dst, repairing near-valid JSON before
// giving up: code fences are stripped, a truncated trailing string value is
// completed, a JSON object is extracted from surrounding prose, and unescaped
// newlines inside string values are escaped. One repair ladder, then a hard
// parse failure.
func DecodeObject(raw string, dst interface{}) error {
	cleaned := stripCodeFence(raw)

	if err := json.Unmarshal([]byte(cleaned), dst); err == nil {
		return nil
	}

	// Model wrapped the object in prose.
	if match := objectRe.FindString(cleaned); match != "" {
		if err := json.Unmarshal([]byte(match), dst); err == nil {
			return nil
		}
	}

	// Literal newlines inside string values.
	fixed := newlineInString.ReplaceAllString(cleaned, `: "$1\n$2"`)
	if err := json.Unmarshal([]byte(fixed), dst); err == nil {
		return nil
	}

	// Truncated output, tried last because it drops the incomplete trailing
	// field: cut back to the last complete field and close the object.
	if idx := strings.LastIndex(cleaned, `",`); idx > 0 {
		truncated := cleaned[:idx+2]
		truncated = strings.TrimRight(truncated, ", \n\t") + "\n}"
		if err := json.Unmarshal([]byte(truncated), dst); err == nil {
			return nil
		}
	}

	return fmt.Errorf("parsing model JSON output: not repairable (raw: %s)", truncate(cleaned, 300))
}

func stripCodeFence(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
