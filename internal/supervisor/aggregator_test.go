package supervisor

import (
	"strings"
	"testing"

	"github.com/yunseol/ingrid/internal/core"
)

func TestFormatResponseWithSources(t *testing.T) {
	a := NewAggregator()
	response := core.WorkerResponse{
		Content: "Glycerin is a humectant.",
		Sources: []core.Source{
			{Title: "Glycerin Spec", URL: "https://docs/ing-001"},
			{Title: ""},
			{Title: "Ingredient List"},
		},
	}

	got := a.FormatResponse(core.WorkerIngredient, response, "what is glycerin?")

	if !strings.HasPrefix(got, "Glycerin is a humectant.") {
		t.Errorf("content: got %q", got)
	}
	if !strings.Contains(got, "📚 **References**:") {
		t.Error("expected a references section")
	}
	if !strings.Contains(got, "1. Glycerin Spec ([link](https://docs/ing-001))") {
		t.Errorf("expected a linked source line, got %q", got)
	}
	if !strings.Contains(got, "2. Unknown") {
		t.Errorf("expected an Unknown placeholder title, got %q", got)
	}
	if !strings.Contains(got, "_🤖 Answered by the ingredient agent._") {
		t.Errorf("expected an attribution line, got %q", got)
	}
}

func TestFormatResponseCapsSources(t *testing.T) {
	a := NewAggregator()
	response := core.WorkerResponse{
		Content: "answer",
		Sources: []core.Source{
			{Title: "a"}, {Title: "b"}, {Title: "c"}, {Title: "d"},
		},
	}

	got := a.FormatResponse(core.WorkerIngredient, response, "q")

	if strings.Contains(got, "4. d") {
		t.Errorf("expected at most %d sources, got %q", maxSources, got)
	}
	if !strings.Contains(got, "3. c") {
		t.Errorf("expected the third source, got %q", got)
	}
}

func TestFormatResponseGeneralHasNoExtras(t *testing.T) {
	a := NewAggregator()

	got := a.FormatResponse(core.WorkerGeneral, core.WorkerResponse{Content: "Hello!"}, "hi")

	if got != "Hello!" {
		t.Errorf("got %q, want bare content", got)
	}
}

func TestFormatResponseNoSources(t *testing.T) {
	a := NewAggregator()

	got := a.FormatResponse(core.WorkerIngredient, core.WorkerResponse{Content: "answer"}, "q")

	if strings.Contains(got, "References") {
		t.Errorf("expected no references section, got %q", got)
	}
	if !strings.Contains(got, "Answered by the ingredient agent") {
		t.Errorf("expected attribution, got %q", got)
	}
}

func TestCombineMultipleResponsesIsNoop(t *testing.T) {
	a := NewAggregator()

	got := a.CombineMultipleResponses([]core.WorkerResponse{{Content: "a"}, {Content: "b"}})
	if got != "" {
		t.Errorf("got %q, want empty string", got)
	}
}
