package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// turnCompleter replays one ChatResponse per call and records the message
// history it was handed.
type turnCompleter struct {
	turns    []ChatResponse
	err      error
	calls    int
	lastSeen []ChatMessage
}

func (c *turnCompleter) GenerateChat(_ context.Context, messages []ChatMessage, _ []ToolDef) (ChatResponse, error) {
	c.lastSeen = messages
	if c.err != nil {
		return ChatResponse{}, c.err
	}
	turn := c.turns[c.calls]
	c.calls++
	return turn, nil
}

func echoTool(name string) Tool {
	return Tool{
		Def: ToolDef{Name: name, Description: "echoes its query argument"},
		Invoke: func(_ context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			return "echo: " + query, nil
		},
	}
}

func TestRunPlainCompletion(t *testing.T) {
	completer := &turnCompleter{turns: []ChatResponse{{Content: "direct answer"}}}
	a := NewChatAgent(completer, "you are a test agent", nil)

	response, err := a.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if response.Text != "direct answer" {
		t.Errorf("Text: got %q", response.Text)
	}
	if len(response.ToolCalls) != 0 {
		t.Errorf("ToolCalls: got %d, want 0", len(response.ToolCalls))
	}
	if completer.calls != 1 {
		t.Errorf("calls: got %d, want 1", completer.calls)
	}

	// System instructions lead the conversation, then the prompt.
	if completer.lastSeen[0].Role != "system" || completer.lastSeen[1].Content != "hello" {
		t.Errorf("messages: got %+v", completer.lastSeen[:2])
	}
}

func TestRunToolLoop(t *testing.T) {
	completer := &turnCompleter{turns: []ChatResponse{
		{ToolCalls: []ToolCall{{ID: "c1", Name: "lookup", Arguments: map[string]any{"query": "glycerin"}}}},
		{Content: "final answer"},
	}}
	a := NewChatAgent(completer, "instructions", []Tool{echoTool("lookup")})

	response, err := a.Run(context.Background(), "what is glycerin?")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if response.Text != "final answer" {
		t.Errorf("Text: got %q", response.Text)
	}
	if len(response.ToolCalls) != 1 {
		t.Fatalf("ToolCalls: got %d, want 1", len(response.ToolCalls))
	}
	if response.ToolCalls[0].Name != "lookup" || response.ToolCalls[0].Result != "echo: glycerin" {
		t.Errorf("invoked: got %+v", response.ToolCalls[0])
	}

	// The tool output went back to the model on the second call.
	var sawOutput bool
	for _, msg := range completer.lastSeen {
		if msg.Role == "tool" && msg.ToolOutput != nil && msg.ToolOutput.Output == "echo: glycerin" {
			sawOutput = true
		}
	}
	if !sawOutput {
		t.Error("expected the tool output to be fed back to the model")
	}
}

func TestRunUnknownTool(t *testing.T) {
	completer := &turnCompleter{turns: []ChatResponse{
		{ToolCalls: []ToolCall{{ID: "c1", Name: "missing_tool"}}},
		{Content: "recovered"},
	}}
	a := NewChatAgent(completer, "instructions", []Tool{echoTool("lookup")})

	response, err := a.Run(context.Background(), "query")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if response.Text != "recovered" {
		t.Errorf("Text: got %q", response.Text)
	}
	if !strings.Contains(response.ToolCalls[0].Result, "unknown tool") {
		t.Errorf("Result: got %q, want unknown-tool notice", response.ToolCalls[0].Result)
	}
}

func TestRunFailingToolFeedsErrorBack(t *testing.T) {
	failing := Tool{
		Def: ToolDef{Name: "broken"},
		Invoke: func(_ context.Context, _ map[string]any) (string, error) {
			return "", errors.New("index offline")
		},
	}
	completer := &turnCompleter{turns: []ChatResponse{
		{ToolCalls: []ToolCall{{ID: "c1", Name: "broken"}}},
		{Content: "done"},
	}}
	a := NewChatAgent(completer, "instructions", []Tool{failing})

	response, err := a.Run(context.Background(), "query")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(response.ToolCalls[0].Result, "index offline") {
		t.Errorf("Result: got %q, want the tool error inline", response.ToolCalls[0].Result)
	}
}

func TestRunProviderError(t *testing.T) {
	completer := &turnCompleter{err: errors.New("connection refused")}
	a := NewChatAgent(completer, "instructions", nil)

	if _, err := a.Run(context.Background(), "query"); err == nil {
		t.Error("expected the provider error to propagate")
	}
}

func TestRunIterationBound(t *testing.T) {
	// A model that never stops calling tools is cut off at the bound.
	turns := make([]ChatResponse, defaultMaxIterations)
	for i := range turns {
		turns[i] = ChatResponse{
			Content:   "still working",
			ToolCalls: []ToolCall{{ID: "c", Name: "lookup", Arguments: map[string]any{"query": "again"}}},
		}
	}
	completer := &turnCompleter{turns: turns}
	a := NewChatAgent(completer, "instructions", []Tool{echoTool("lookup")})

	response, err := a.Run(context.Background(), "query")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if completer.calls != defaultMaxIterations {
		t.Errorf("calls: got %d, want %d", completer.calls, defaultMaxIterations)
	}
	if response.Text != "still working" {
		t.Errorf("Text: got %q", response.Text)
	}
	if len(response.ToolCalls) != defaultMaxIterations {
		t.Errorf("invoked tools: got %d, want %d", len(response.ToolCalls), defaultMaxIterations)
	}
}
