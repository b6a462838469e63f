package supervisor

import (
	"context"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/core"
	"github.com/yunseol/ingrid/internal/worker"
)

var workerToolMeta = []struct {
	label       core.WorkerLabel
	name        string
	description string
}{
	{core.WorkerIngredient, "search_ingredient", "Search cosmetic ingredient information: names, CAS numbers, specs, ordering status."},
	{core.WorkerFormula, "search_formula", "Search formula information: composition, ingredient percentages, product formulas."},
	{core.WorkerRegulation, "search_regulation", "Search regulation information: allowed/banned substances per country, concentration limits, labeling rules."},
}

// WorkerTools exposes each registered worker as a tool for the supervisor
// agent. Worker.Process never fails, so neither do these tools.
func WorkerTools(workers map[core.WorkerLabel]worker.Worker) []agent.Tool {
	var tools []agent.Tool

	for _, meta := range workerToolMeta {
		w, ok := workers[meta.label]
		if !ok {
			continue
		}

		tools = append(tools, agent.Tool{
			Def: agent.ToolDef{
				Name:        meta.name,
				Description: meta.description,
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{"type": "string", "description": "the search query"},
					},
					"required": []string{"query"},
				},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				query, _ := args["query"].(string)
				response := w.Process(ctx, query, nil)
				if response.Content == "" {
					return "No information found.", nil
				}
				return response.Content, nil
			},
		})
	}

	return tools
}
