package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/search"
)

const defaultTopK = 10

// selectFields are the document fields requested from the index.
var selectFields = []string{"id", "korean_name", "english_name", "cas_no", "order_status"}

// searchResult is the JSON shape handed back to the model. Failures are
// reported inside the result rather than as tool errors, so the model can
// recover by rephrasing or retrying.
type searchResult struct {
	Documents []search.Document `json:"documents"`
	Count     int               `json:"count"`
	Error     string            `json:"error,omitempty"`
}

func (r searchResult) encode() string {
	payload, _ := json.Marshal(r)
	return string(payload)
}

// SearchTools builds the retrieval tools over the client registry:
// search_documents (keyword search) and search_with_filter (keyword search
// plus a `field eq 'value'` filter).
func SearchTools(registry *search.Registry, defaultIndex string) []agent.Tool {
	return []agent.Tool{
		{
			Def: agent.ToolDef{
				Name:        "search_documents",
				Description: "Search the document index by keyword. Returns ranked documents as JSON.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query":      map[string]any{"type": "string", "description": "search query text"},
						"index_name": map[string]any{"type": "string", "description": "index to search"},
						"top_k":      map[string]any{"type": "integer", "description": "maximum results to return"},
					},
					"required": []string{"query"},
				},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return runSearch(ctx, registry, defaultIndex, args, ""), nil
			},
		},
		{
			Def: agent.ToolDef{
				Name:        "search_with_filter",
				Description: "Search the document index with a filter expression like: order_status eq 'ordered'.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query":       map[string]any{"type": "string", "description": "search query text"},
						"filter_expr": map[string]any{"type": "string", "description": "filter expression, field eq 'value'"},
						"index_name":  map[string]any{"type": "string", "description": "index to search"},
						"top_k":       map[string]any{"type": "integer", "description": "maximum results to return"},
					},
					"required": []string{"query"},
				},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				filter, _ := args["filter_expr"].(string)
				return runSearch(ctx, registry, defaultIndex, args, filter), nil
			},
		},
	}
}

func runSearch(ctx context.Context, registry *search.Registry, defaultIndex string, args map[string]any, filter string) string {
	query, _ := args["query"].(string)

	index, _ := args["index_name"].(string)
	if index == "" {
		index = defaultIndex
	}

	topK := defaultTopK
	if value, ok := args["top_k"].(float64); ok && value > 0 {
		topK = int(value)
	}

	client, ok := registry.Get(index)
	if !ok {
		slog.Error("search index not registered", "index", index)
		return searchResult{Documents: []search.Document{}, Error: "index '" + index + "' is not initialized"}.encode()
	}

	if err := search.ValidateFilter(filter); err != nil {
		slog.Warn("rejected filter expression", "filter", filter, "error", err)
		return searchResult{Documents: []search.Document{}, Error: err.Error()}.encode()
	}

	documents, err := client.Search(ctx, query, topK, filter, selectFields)
	if err != nil {
		slog.Error("search failed", "index", index, "query", query, "error", err)
		return searchResult{Documents: []search.Document{}, Error: err.Error()}.encode()
	}

	slog.Info("search completed", "index", index, "query", query, "results", len(documents))

	return searchResult{Documents: documents, Count: len(documents)}.encode()
}
