// Package worker implements the domain retrieval workers. A worker answers
// one query through a tool-augmented agent run bounded by a wall-clock
// timeout, and never returns an error: failures become structured responses.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/core"
)

type Worker interface {
	// Process answers the query. It never fails: timeouts and upstream
	// errors are folded into the response content and metadata.
	Process(ctx context.Context, query string, chatContext []core.ChatEntry) core.WorkerResponse
	Label() core.WorkerLabel
}

// Status is a diagnostic snapshot of a worker.
type Status struct {
	WorkerType         string    `json:"worker_type"`
	ToolCount          int       `json:"tool_count"`
	InstructionsLength int       `json:"instructions_length"`
	Timestamp          time.Time `json:"timestamp"`
}

// AgentWorker is the agent-backed worker shared by the concrete domains.
type AgentWorker struct {
	agent        agent.Agent
	label        core.WorkerLabel
	instructions string
	toolCount    int
	timeout      time.Duration
}

const defaultTimeout = 30 * time.Second

func newAgentWorker(completer agent.ChatCompleter, label core.WorkerLabel, instructions string, tools []agent.Tool, timeout time.Duration) *AgentWorker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &AgentWorker{
		agent:        agent.NewChatAgent(completer, instructions, tools),
		label:        label,
		instructions: instructions,
		toolCount:    len(tools),
		timeout:      timeout,
	}
}

func (w *AgentWorker) Label() core.WorkerLabel {
	return w.label
}

func (w *AgentWorker) Process(ctx context.Context, query string, chatContext []core.ChatEntry) core.WorkerResponse {
	slog.Info("worker processing", "worker", w.label, "query_length", len(query))

	runCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	response, err := w.agent.Run(runCtx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || runCtx.Err() != nil {
			seconds := int(w.timeout.Seconds())
			slog.Error("worker timed out", "worker", w.label, "timeout_seconds", seconds)
			return core.WorkerResponse{
				Content:   fmt.Sprintf("Sorry, the response timed out after %d seconds.", seconds),
				Timestamp: time.Now(),
				Metadata:  map[string]any{"error": "timeout", "timeout_seconds": seconds},
			}
		}

		slog.Error("worker run failed", "worker", w.label, "error", err)
		return core.WorkerResponse{
			Content:   fmt.Sprintf("Sorry, an error occurred while processing: %v", err),
			Timestamp: time.Now(),
			Metadata:  map[string]any{"error": err.Error()},
		}
	}

	toolsUsed := toolNames(response.ToolCalls)

	return core.WorkerResponse{
		Content:   response.Text,
		Sources:   extractSources(response.ToolCalls),
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"iterations":  1,
			"tools_used":  toolsUsed,
			"worker_type": string(w.label),
		},
	}
}

// Status reports the worker's shape for diagnostics.
func (w *AgentWorker) Status() Status {
	return Status{
		WorkerType:         string(w.label),
		ToolCount:          w.toolCount,
		InstructionsLength: len(w.instructions),
		Timestamp:          time.Now(),
	}
}

func toolNames(calls []agent.InvokedTool) []string {
	seen := make(map[string]bool, len(calls))
	names := make([]string, 0, len(calls))
	for _, call := range calls {
		if !seen[call.Name] {
			seen[call.Name] = true
			names = append(names, call.Name)
		}
	}
	return names
}
