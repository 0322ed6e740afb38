package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// sampleLimit caps how much of the offending text a MalformedOutputError carries.
const sampleLimit = 500

// MalformedOutputError reports model output from which no valid top-level
// JSON object could be recovered. Sample holds a truncated copy of the raw
// text for debugging.
type MalformedOutputError struct {
	Reason string
	Sample string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %s (sample: %q)", e.Reason, e.Sample)
}

func malformed(reason, raw string) *MalformedOutputError {
	if len(raw) > sampleLimit {
		raw = raw[:sampleLimit]
	}
	return &MalformedOutputError{Reason: reason, Sample: raw}
}

// ExtractJSON isolates the first top-level JSON object inside raw text.
// Models routinely wrap the answer in prose or markdown fences; the greedy
// first-`{` to last-`}` span is taken and must parse as valid JSON.
func ExtractJSON(raw string) (string, error) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "{")
	if start < 0 {
		return "", malformed("no JSON object found", raw)
	}
	end := strings.LastIndex(cleaned, "}")
	if end < start {
		return "", malformed("unterminated JSON object", raw)
	}

	candidate := cleaned[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", malformed("extracted text is not valid JSON", raw)
	}
	return candidate, nil
}

// DecodeObject extracts the JSON object from raw and unmarshals it into dst.
func DecodeObject(raw string, dst any) error {
	candidate, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(candidate), dst); err != nil {
		return malformed(fmt.Sprintf("decode: %v", err), raw)
	}
	return nil
}

// ExtractObject extracts and parses the JSON object as a generic map.
func ExtractObject(raw string) (map[string]any, error) {
	var out map[string]any
	if err := DecodeObject(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// stripFences removes markdown code blocks if present (e.g. ```json ... ```)
func stripFences(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
