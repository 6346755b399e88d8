package gateway

import (
	"encoding/json"
	"regexp"
)

var (
	fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	braceSpan   = regexp.MustCompile(`(?s)\{.*\}`)
)

// ExtractJSON recovers a structured object from a free-text completion that
// may be wrapped in prose or code fences. Direct parse is tried first: it is
// the fastest and covers well-behaved responses. Then the interior of a
// fenced code block, then the first balanced-looking {...} span.
func ExtractJSON(content string, dst interface{}) error {
	if err := json.Unmarshal([]byte(content), dst); err == nil {
		return nil
	}
	if m := fencedBlock.FindStringSubmatch(content); m != nil {
		if err := json.Unmarshal([]byte(m[1]), dst); err == nil {
			return nil
		}
	}
	if m := braceSpan.FindString(content); m != "" {
		if err := json.Unmarshal([]byte(m), dst); err == nil {
			return nil
		}
	}
	return ErrNoJSON
}
