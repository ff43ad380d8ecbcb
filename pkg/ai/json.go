package ai

import (
	"encoding/json"
	"strings"
)

// responseText post-processes provider output for one request. Requests
// expecting a bare JSON object get the extracted object when one can be
// recovered; anything else, including unrecoverable output, passes through
// unchanged for the validator to flag.
func responseText(req GenerateRequest, text string) string {
	if !req.JSONOutput {
		return text
	}
	if object, ok := ExtractJSONObject(text); ok {
		return object
	}
	return text
}

// ExtractJSONObject extracts the first top-level JSON object from a text
// blob, tolerating markdown code fences and surrounding prose. Returns the
// JSON string and true when a valid object was found.
func ExtractJSONObject(text string) (string, bool) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "", false
	}

	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
	}

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	for i := start; i < len(cleaned); i++ {
		switch cleaned[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := cleaned[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}

	return "", false
}
