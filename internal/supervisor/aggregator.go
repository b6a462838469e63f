package supervisor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/yunseol/ingrid/internal/core"
)

const maxSources = 3

// Aggregator turns a raw worker answer into user-facing display text.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// FormatResponse renders the worker's content, a references section when
// sources exist, and an attribution line unless the turn was general
// conversation.
func (a *Aggregator) FormatResponse(label core.WorkerLabel, response core.WorkerResponse, query string) string {
	var b strings.Builder
	b.WriteString(response.Content)

	if len(response.Sources) > 0 {
		b.WriteString("\n\n📚 **References**:\n")
		for i, source := range response.Sources {
			if i >= maxSources {
				break
			}

			title := source.Title
			if title == "" {
				title = "Unknown"
			}

			b.WriteString(fmt.Sprintf("%d. %s", i+1, title))
			if source.URL != "" {
				b.WriteString(fmt.Sprintf(" ([link](%s))", source.URL))
			}
			b.WriteString("\n")
		}
	}

	if label != core.WorkerGeneral {
		b.WriteString(fmt.Sprintf("\n\n_🤖 Answered by the %s agent._", label))
	}

	slog.Debug("response formatted", "worker", label, "query_length", len(query))

	return b.String()
}

// CombineMultipleResponses is the reserved fan-in point for multi-worker
// queries. Single-worker dispatch is the only mode today, so it is a
// documented no-op returning the empty string.
func (a *Aggregator) CombineMultipleResponses(responses []core.WorkerResponse) string {
	slog.Warn("CombineMultipleResponses is not implemented", "responses", len(responses))
	return ""
}
