package grok

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// strictJSONInstruction is appended as an extra user turn when the first
// JSON-mode response does not parse.
const strictJSONInstruction = "Respond with a single valid JSON object only. No prose, no markdown, no code fences."

// decodeJSONObject reports whether content is exactly one JSON object and
// returns it verbatim, preserving every key.
func decodeJSONObject(content string) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(content)
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}

// extractJSONObject slices from the first '{' to the last '}' and validates
// the result. Catches objects wrapped in prose or markdown fences.
func extractJSONObject(content string) (json.RawMessage, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, false
	}
	return decodeJSONObject(content[start : end+1])
}

var scorePattern = regexp.MustCompile(`(?i)"?score"?\s*[:=]\s*(-?\d+(?:\.\d+)?)`)

// extractScore pulls a bare numeric "score" field out of free text, the last
// rung of the recovery ladder.
func extractScore(content string) (int, bool) {
	m := scorePattern.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
