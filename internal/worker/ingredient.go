package worker

import (
	"fmt"
	"strings"
	"time"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/search"
)

const ingredientInstructions = `You are an expert agent for cosmetic raw-material search.

Responsibilities:
- Look up ingredient basics (INCI name, Korean/English names, CAS number).
- Check ingredient specs (viscosity, pH, concentration).
- Report ordering status (ordered, under review, discontinued).

Search strategy:
1. Start with search_documents for keyword search.
2. Use search_with_filter when a filter condition is needed.
3. If nothing matches, retry with different terms.
4. Prefer the most relevant hit when several match.

Answer rules:
- Say clearly when no results were found.
- Include ingredient code, name, CAS number, and ordering status.
- Always cite the source document name or id.`

// NewIngredientWorker builds the ingredient-search worker over the given
// search tools.
func NewIngredientWorker(completer agent.ChatCompleter, tools []agent.Tool, timeout time.Duration) *AgentWorker {
	return newAgentWorker(completer, "ingredient", ingredientInstructions, tools, timeout)
}

// FormatIngredientDocuments renders search hits as a short user-facing
// summary, used by the demo CLI path.
func FormatIngredientDocuments(documents []search.Document) string {
	if len(documents) == 0 {
		return "No results found."
	}

	if len(documents) == 1 {
		return formatSingleIngredient(documents[0])
	}

	lines := []string{fmt.Sprintf("Found %d ingredients:", len(documents))}
	for i, doc := range documents {
		if i >= 5 {
			break
		}

		line := fmt.Sprintf("%d. %s", i+1, docString(doc, "korean_name", "unknown"))
		if name := docString(doc, "english_name", ""); name != "" {
			line += fmt.Sprintf(" (%s)", name)
		}
		if cas := docString(doc, "cas_no", ""); cas != "" {
			line += " - CAS: " + cas
		}
		if status := docString(doc, "order_status", ""); status != "" {
			line += " - " + status
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func formatSingleIngredient(doc search.Document) string {
	var b strings.Builder

	b.WriteString(docString(doc, "korean_name", "unknown"))
	if name := docString(doc, "english_name", ""); name != "" {
		b.WriteString(fmt.Sprintf(" (%s)", name))
	}
	b.WriteString(" found.\n")

	if cas := docString(doc, "cas_no", ""); cas != "" {
		b.WriteString("- CAS number: " + cas + "\n")
	}
	if status := docString(doc, "order_status", ""); status != "" {
		b.WriteString("- Ordering status: " + status + "\n")
	}

	return b.String()
}

func docString(doc search.Document, field, fallback string) string {
	if value, ok := doc[field].(string); ok && value != "" {
		return value
	}
	return fallback
}
