// Package agent defines the normalized boundary to a chat-completion
// collaborator: a provider-agnostic Agent that runs a prompt through an
// iterative tool loop and returns a flat {text, invoked tools} response.
package agent

import (
	"context"
	"fmt"
	"log/slog"
)

// ToolDef describes a tool to the model.
type ToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Tool pairs a definition with its executable body.
type Tool struct {
	Def    ToolDef
	Invoke func(ctx context.Context, args map[string]any) (string, error)
}

// ToolCall is a model-initiated tool invocation request.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolOutput carries a tool's result back to the model.
type ToolOutput struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`
	Output string `json:"output"`
}

// ChatMessage is one entry in a provider conversation.
type ChatMessage struct {
	Role       string      `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
	ToolOutput *ToolOutput `json:"tool_output,omitempty"`
}

// ChatResponse is a single normalized model turn.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// ChatCompleter is the contract a provider adapter implements.
type ChatCompleter interface {
	GenerateChat(ctx context.Context, messages []ChatMessage, tools []ToolDef) (ChatResponse, error)
}

// InvokedTool records one executed tool call during a run.
type InvokedTool struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args,omitempty"`
	Result string         `json:"-"`
}

// Response is the normalized result of an agent run.
type Response struct {
	Text      string
	ToolCalls []InvokedTool
}

// Agent runs a single prompt to completion.
type Agent interface {
	Run(ctx context.Context, prompt string) (Response, error)
}

const defaultMaxIterations = 5

// ChatAgent drives a ChatCompleter through the tool loop: prompt the model,
// execute any requested tools, feed results back, repeat until the model
// answers in plain text or the iteration bound is hit. An agent constructed
// with no tools degrades to a single plain-text completion.
type ChatAgent struct {
	provider      ChatCompleter
	instructions  string
	tools         map[string]Tool
	defs          []ToolDef
	maxIterations int
}

func NewChatAgent(provider ChatCompleter, instructions string, tools []Tool) *ChatAgent {
	byName := make(map[string]Tool, len(tools))
	defs := make([]ToolDef, 0, len(tools))
	for _, tool := range tools {
		byName[tool.Def.Name] = tool
		defs = append(defs, tool.Def)
	}

	return &ChatAgent{
		provider:      provider,
		instructions:  instructions,
		tools:         byName,
		defs:          defs,
		maxIterations: defaultMaxIterations,
	}
}

func (a *ChatAgent) Run(ctx context.Context, prompt string) (Response, error) {
	messages := []ChatMessage{
		{Role: "system", Content: a.instructions},
		{Role: "user", Content: prompt},
	}

	var invoked []InvokedTool
	lastContent := ""

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		chatResponse, err := a.provider.GenerateChat(ctx, messages, a.defs)
		if err != nil {
			return Response{}, fmt.Errorf("chat completion: %w", err)
		}

		lastContent = chatResponse.Content

		if len(chatResponse.ToolCalls) == 0 {
			return Response{Text: chatResponse.Content, ToolCalls: invoked}, nil
		}

		messages = append(messages, ChatMessage{
			Role:      "assistant",
			Content:   chatResponse.Content,
			ToolCalls: chatResponse.ToolCalls,
		})

		for _, call := range chatResponse.ToolCalls {
			output := a.executeTool(ctx, call)
			invoked = append(invoked, InvokedTool{Name: call.Name, Args: call.Arguments, Result: output})
			messages = append(messages, ChatMessage{
				Role:       "tool",
				ToolOutput: &ToolOutput{CallID: call.ID, Name: call.Name, Output: output},
			})
		}
	}

	slog.Warn("agent hit iteration bound", "iterations", a.maxIterations)

	return Response{Text: lastContent, ToolCalls: invoked}, nil
}

func (a *ChatAgent) executeTool(ctx context.Context, call ToolCall) string {
	tool, ok := a.tools[call.Name]
	if !ok {
		slog.Warn("model requested unknown tool", "tool", call.Name)
		return fmt.Sprintf("unknown tool: %s", call.Name)
	}

	output, err := tool.Invoke(ctx, call.Arguments)
	if err != nil {
		slog.Error("tool execution failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("tool %s failed: %v", call.Name, err)
	}

	return output
}
