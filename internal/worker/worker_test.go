package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/core"
)

type stubCompleter struct {
	turns []agent.ChatResponse
	err   error
	calls int
}

func (c *stubCompleter) GenerateChat(ctx context.Context, _ []agent.ChatMessage, _ []agent.ToolDef) (agent.ChatResponse, error) {
	if c.err != nil {
		return agent.ChatResponse{}, c.err
	}
	turn := c.turns[c.calls]
	c.calls++
	return turn, nil
}

// blockingCompleter waits for cancellation, standing in for a slow upstream.
type blockingCompleter struct{}

func (blockingCompleter) GenerateChat(ctx context.Context, _ []agent.ChatMessage, _ []agent.ToolDef) (agent.ChatResponse, error) {
	<-ctx.Done()
	return agent.ChatResponse{}, ctx.Err()
}

func TestProcessSuccess(t *testing.T) {
	completer := &stubCompleter{turns: []agent.ChatResponse{{Content: "glycerin found"}}}
	w := NewIngredientWorker(completer, nil, time.Second)

	response := w.Process(context.Background(), "what is glycerin?", nil)

	if response.Content != "glycerin found" {
		t.Errorf("Content: got %q", response.Content)
	}
	if response.Metadata["worker_type"] != "ingredient" {
		t.Errorf("worker_type: got %v", response.Metadata["worker_type"])
	}
	if w.Label() != core.WorkerIngredient {
		t.Errorf("Label: got %s", w.Label())
	}
}

func TestProcessTimeout(t *testing.T) {
	w := NewIngredientWorker(blockingCompleter{}, nil, 20*time.Millisecond)

	response := w.Process(context.Background(), "slow query", nil)

	if !strings.Contains(response.Content, "timed out") {
		t.Errorf("Content: got %q, want a timeout apology", response.Content)
	}
	if response.Metadata["error"] != "timeout" {
		t.Errorf("error metadata: got %v, want timeout", response.Metadata["error"])
	}
	if response.Metadata["timeout_seconds"] != 0 {
		// 20ms rounds down to 0 whole seconds; the field must still be set.
		t.Errorf("timeout_seconds: got %v", response.Metadata["timeout_seconds"])
	}
}

func TestProcessUpstreamError(t *testing.T) {
	completer := &stubCompleter{err: errors.New("model unavailable")}
	w := NewIngredientWorker(completer, nil, time.Second)

	response := w.Process(context.Background(), "query", nil)

	if !strings.Contains(response.Content, "model unavailable") {
		t.Errorf("Content: got %q, want the upstream error folded in", response.Content)
	}
	if response.Metadata["error"] != "model unavailable" {
		t.Errorf("error metadata: got %v", response.Metadata["error"])
	}
}

func TestProcessRecordsToolsUsed(t *testing.T) {
	completer := &stubCompleter{turns: []agent.ChatResponse{
		{ToolCalls: []agent.ToolCall{
			{ID: "c1", Name: "lookup", Arguments: map[string]any{"query": "a"}},
			{ID: "c2", Name: "lookup", Arguments: map[string]any{"query": "b"}},
		}},
		{Content: "done"},
	}}
	tool := agent.Tool{
		Def: agent.ToolDef{Name: "lookup"},
		Invoke: func(_ context.Context, _ map[string]any) (string, error) {
			return `{"documents": [{"title": "doc"}], "count": 1}`, nil
		},
	}
	w := NewIngredientWorker(completer, []agent.Tool{tool}, time.Second)

	response := w.Process(context.Background(), "query", nil)

	toolsUsed, ok := response.Metadata["tools_used"].([]string)
	if !ok || len(toolsUsed) != 1 || toolsUsed[0] != "lookup" {
		// Repeated calls to the same tool are reported once.
		t.Errorf("tools_used: got %v, want [lookup]", response.Metadata["tools_used"])
	}
	if len(response.Sources) != 2 {
		t.Errorf("Sources: got %d, want 2 (one per tool call)", len(response.Sources))
	}
}

func TestStatus(t *testing.T) {
	w := NewIngredientWorker(&stubCompleter{}, nil, time.Second)

	status := w.Status()
	if status.WorkerType != "ingredient" {
		t.Errorf("WorkerType: got %s", status.WorkerType)
	}
	if status.ToolCount != 0 {
		t.Errorf("ToolCount: got %d, want 0", status.ToolCount)
	}
	if status.InstructionsLength == 0 {
		t.Error("expected non-empty instructions")
	}
}

func TestStubWorkers(t *testing.T) {
	cases := []struct {
		worker Worker
		label  core.WorkerLabel
	}{
		{NewFormulaWorker(), core.WorkerFormula},
		{NewRegulationWorker(), core.WorkerRegulation},
	}
	for _, tc := range cases {
		if tc.worker.Label() != tc.label {
			t.Errorf("Label: got %s, want %s", tc.worker.Label(), tc.label)
		}

		response := tc.worker.Process(context.Background(), "anything", nil)
		if !strings.Contains(response.Content, "not available yet") {
			t.Errorf("%s Content: got %q", tc.label, response.Content)
		}
		if response.Metadata["stub"] != true {
			t.Errorf("%s metadata: got %v", tc.label, response.Metadata)
		}
	}
}
