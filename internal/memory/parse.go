package memory

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// extracted is the structured output of the extraction call.
type extracted struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

var numberPattern = regexp.MustCompile(`\d+`)

const defaultImportance = 5

// parseImportance pulls a 1-10 rating out of a model reply. Anything
// unparseable falls back to the middle of the scale.
func parseImportance(raw string) int {
	match := numberPattern.FindString(raw)
	if match == "" {
		return defaultImportance
	}
	importance, err := strconv.Atoi(match)
	if err != nil {
		return defaultImportance
	}
	if importance < 1 {
		return 1
	}
	if importance > 10 {
		return 10
	}
	return importance
}

// parseExtracted decodes the extraction JSON, tolerating prose around the
// object the way models tend to wrap it.
func parseExtracted(raw string) (extracted, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var out extracted
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return extracted{}, fmt.Errorf("failed to parse extraction output: %w", err)
	}
	return out, nil
}
