package ai

import (
	"encoding/json"
	"strings"
)

// FootageResult is one stock-footage hit.
type FootageResult struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

const (
	placeholderURL = "#"
	defaultSource  = "Web"
)

// ExtractDirectives returns the text unchanged and the follow-up titles of every line carrying the directive marker,
// in the order they appear.
func ExtractDirectives(text string) (string, []string) {
	var titles []string
	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, DirectivePrefix)
		if idx == -1 {
			continue
		}
		title := strings.TrimSpace(line[idx+len(DirectivePrefix):])
		if title == "" {
			continue
		}
		titles = append(titles, title)
	}
	return text, titles
}

// StripDirectives removes directive lines and the blank lines left trailing after them.
func StripDirectives(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.Contains(line, DirectivePrefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimRight(strings.Join(kept, "\n"), " \t\r\n")
}

// ExtractJSONArray parses the span from the first '[' to the last ']' of text as footage results. Any failure yields
// an empty list. Missing fields default to query for the title, a placeholder URL and a generic source.
func ExtractJSONArray(text, query string) []FootageResult {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return []FootageResult{}
	}

	var raw []map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return []FootageResult{}
	}

	results := make([]FootageResult, 0, len(raw))
	for _, item := range raw {
		if item == nil {
			return []FootageResult{}
		}
		results = append(results, FootageResult{
			Title:  stringField(item, "title", query),
			URL:    stringField(item, "url", placeholderURL),
			Source: stringField(item, "source", defaultSource),
		})
	}
	return results
}

func stringField(item map[string]any, key, fallback string) string {
	s, ok := item[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
