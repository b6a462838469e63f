package worker

import (
	"encoding/json"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/core"
)

const maxSourcesPerTool = 3

// titleFields are tried in order when naming a source document.
var titleFields = []string{"title", "korean_name", "ingredient_name_ko", "english_name"}

// extractSources scans invoked-tool results for document-shaped records and
// maps them to citation sources, at most three per tool result.
func extractSources(calls []agent.InvokedTool) []core.Source {
	var sources []core.Source

	for _, call := range calls {
		var result struct {
			Documents []map[string]any `json:"documents"`
		}
		if err := json.Unmarshal([]byte(call.Result), &result); err != nil {
			continue
		}

		count := 0
		for _, doc := range result.Documents {
			if count >= maxSourcesPerTool {
				break
			}

			sources = append(sources, core.Source{
				Title: documentTitle(doc),
				ID:    stringField(doc, "id"),
				Score: documentScore(doc),
				URL:   stringField(doc, "url"),
			})
			count++
		}
	}

	return sources
}

func documentTitle(doc map[string]any) string {
	for _, field := range titleFields {
		if title := stringField(doc, field); title != "" {
			return title
		}
	}
	return "Unknown"
}

// documentScore accepts either a raw "score" field or the search engine's
// "@search.score" key.
func documentScore(doc map[string]any) float64 {
	if score, ok := doc["@search.score"].(float64); ok {
		return score
	}
	if score, ok := doc["score"].(float64); ok {
		return score
	}
	return 0
}

func stringField(doc map[string]any, field string) string {
	value, _ := doc[field].(string)
	return value
}
