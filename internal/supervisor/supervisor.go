// Package supervisor dispatches a turn to the right worker and aggregates
// the answer. Two dispatch modes exist: the default agent-as-tool mode, in
// which a single agent call autonomously picks a worker-backed tool, and the
// routed mode, which asks the router for a decision and invokes that worker
// directly.
package supervisor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/core"
	"github.com/yunseol/ingrid/internal/router"
	"github.com/yunseol/ingrid/internal/worker"
)

// DispatchMode selects how a turn reaches its worker.
type DispatchMode string

const (
	DispatchAgent  DispatchMode = "agent"
	DispatchRouter DispatchMode = "router"
)

const supervisorInstructions = `You are the supervisor of a cosmetic R&D assistant.
Use the available search tools to answer domain questions about ingredients,
formulas, or regulations. Answer small talk directly without any tool.`

type Supervisor struct {
	agent      agent.Agent
	router     *router.Router
	workers    map[core.WorkerLabel]worker.Worker
	aggregator *Aggregator
	mode       DispatchMode
}

func New(completer agent.ChatCompleter, aggregator *Aggregator, workers map[core.WorkerLabel]worker.Worker, mode DispatchMode) *Supervisor {
	if mode == "" {
		mode = DispatchAgent
	}

	s := &Supervisor{
		agent:      agent.NewChatAgent(completer, supervisorInstructions, WorkerTools(workers)),
		router:     router.New(completer),
		workers:    workers,
		aggregator: aggregator,
		mode:       mode,
	}

	slog.Info("supervisor initialized", "workers", len(workers), "mode", mode)

	return s
}

// Process answers one turn. It never fails: any upstream error becomes an
// error-labeled response.
func (s *Supervisor) Process(ctx context.Context, query string, chatContext []core.ChatEntry, sessionID core.SessionID) core.SupervisorResponse {
	slog.Info("processing query", "session_id", sessionID, "mode", s.mode, "query_length", len(query))

	if s.mode == DispatchRouter {
		return s.processRouted(ctx, query, chatContext)
	}

	return s.processAgent(ctx, query)
}

func (s *Supervisor) processAgent(ctx context.Context, query string) core.SupervisorResponse {
	response, err := s.agent.Run(ctx, query)
	if err != nil {
		slog.Error("supervisor agent run failed", "error", err)
		return errorResponse(err.Error())
	}

	label := workerLabelFromCalls(response.ToolCalls)
	formatted := s.aggregator.FormatResponse(label, core.WorkerResponse{Content: response.Text}, query)

	now := time.Now()
	return core.SupervisorResponse{
		Content:   formatted,
		Worker:    label,
		Timestamp: &now,
		Metadata:  map[string]any{"tool_calls": response.ToolCalls},
	}
}

func (s *Supervisor) processRouted(ctx context.Context, query string, chatContext []core.ChatEntry) core.SupervisorResponse {
	decision := s.router.Route(ctx, query, chatContext)

	w, ok := s.workers[decision.Worker]
	if !ok {
		slog.Error("no worker registered for label", "worker", decision.Worker)
		return errorResponse("no worker registered for " + string(decision.Worker))
	}

	workerResponse := w.Process(ctx, query, chatContext)
	formatted := s.aggregator.FormatResponse(decision.Worker, workerResponse, query)

	now := time.Now()
	return core.SupervisorResponse{
		Content:   formatted,
		Worker:    decision.Worker,
		Timestamp: &now,
		Metadata: map[string]any{
			"routing":    decision,
			"tools_used": workerResponse.Metadata["tools_used"],
		},
	}
}

// workerLabelFromCalls maps the first invoked tool to its worker label.
// No tool call means the model answered directly: general conversation.
func workerLabelFromCalls(calls []agent.InvokedTool) core.WorkerLabel {
	if len(calls) == 0 {
		slog.Info("no tool invoked, treating as general conversation")
		return core.WorkerGeneral
	}

	name := strings.ToLower(calls[0].Name)
	switch {
	case strings.Contains(name, "ingredient"):
		return core.WorkerIngredient
	case strings.Contains(name, "formula"):
		return core.WorkerFormula
	case strings.Contains(name, "regulation"):
		return core.WorkerRegulation
	default:
		slog.Warn("unknown tool invoked, treating as general conversation", "tool", calls[0].Name)
		return core.WorkerGeneral
	}
}

func errorResponse(message string) core.SupervisorResponse {
	now := time.Now()
	return core.SupervisorResponse{
		Content:   "Sorry, an error occurred while processing your request: " + message,
		Worker:    core.WorkerError,
		Timestamp: &now,
		Metadata:  map[string]any{"error": message},
	}
}
