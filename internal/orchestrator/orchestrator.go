// Package orchestrator is the system entry point: it resolves the session,
// records the user turn, runs the supervisor pipeline, records the assistant
// turn, and contains every failure into a structured error response.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/config"
	"github.com/yunseol/ingrid/internal/conversation"
	"github.com/yunseol/ingrid/internal/core"
	"github.com/yunseol/ingrid/internal/search"
	"github.com/yunseol/ingrid/internal/session"
	"github.com/yunseol/ingrid/internal/supervisor"
	"github.com/yunseol/ingrid/internal/worker"
)

// SupervisorService is the routing+worker pipeline the orchestrator invokes.
type SupervisorService interface {
	Process(ctx context.Context, query string, chatContext []core.ChatEntry, sessionID core.SessionID) core.SupervisorResponse
}

// QueryResult is the structured result of one turn.
type QueryResult struct {
	SessionID core.SessionID          `json:"session_id"`
	Response  core.SupervisorResponse `json:"response"`
}

type Orchestrator struct {
	sessions   *session.Store
	window     *conversation.Manager
	supervisor SupervisorService
}

func New(sessions *session.Store, window *conversation.Manager, supervisorService SupervisorService) *Orchestrator {
	return &Orchestrator{
		sessions:   sessions,
		window:     window,
		supervisor: supervisorService,
	}
}

// NewDefault wires the full pipeline from configuration: session store,
// context window, search-backed ingredient worker, stub formula and
// regulation workers, and the supervisor.
func NewDefault(cfg config.Config, completer agent.ChatCompleter, registry *search.Registry, mode supervisor.DispatchMode) *Orchestrator {
	sessions := session.NewStore(time.Duration(cfg.Session.TTLMinutes) * time.Minute)
	window := conversation.NewManager(sessions, conversation.Settings{
		MaxTurns:  cfg.Context.MaxTurns,
		MaxTokens: cfg.Context.MaxTokens,
		Model:     cfg.Context.Model,
		Enforce:   cfg.Context.Enforce,
	})

	searchTools := worker.SearchTools(registry, cfg.Search.Index)
	workerTimeout := time.Duration(cfg.Worker.TimeoutSeconds) * time.Second

	workers := map[core.WorkerLabel]worker.Worker{
		core.WorkerIngredient: worker.NewIngredientWorker(completer, searchTools, workerTimeout),
		core.WorkerFormula:    worker.NewFormulaWorker(),
		core.WorkerRegulation: worker.NewRegulationWorker(),
	}

	supervisorService := supervisor.New(completer, supervisor.NewAggregator(), workers, mode)

	slog.Info("orchestrator assembled",
		"ttl_minutes", cfg.Session.TTLMinutes,
		"max_turns", cfg.Context.MaxTurns,
		"max_tokens", cfg.Context.MaxTokens)

	return New(sessions, window, supervisorService)
}

// ProcessQuery handles one user turn. It never fails: any error anywhere in
// the pipeline yields an error-labeled response. Callers must read the
// returned session id — an invalid or expired inbound id is silently
// replaced by a fresh session.
func (o *Orchestrator) ProcessQuery(ctx context.Context, userID, query string, sessionID core.SessionID) QueryResult {
	if sessionID == "" {
		sessionID = o.sessions.Create(userID)
	} else if _, ok := o.sessions.Get(sessionID); !ok {
		slog.Warn("unknown or expired session, creating a new one", "session_id", sessionID)
		sessionID = o.sessions.Create(userID)
	} else {
		o.sessions.Touch(sessionID)
	}

	if err := o.window.AddMessage(sessionID, core.RoleUser, query, nil); err != nil {
		slog.Error("failed to record user turn", "session_id", sessionID, "error", err)
		return errorResult(sessionID, err)
	}

	entries, err := o.window.ContextEntries(sessionID, 0)
	if err != nil {
		slog.Error("failed to fetch context", "session_id", sessionID, "error", err)
		return errorResult(sessionID, err)
	}

	response := o.supervisor.Process(ctx, query, entries, sessionID)

	// The user turn is deliberately not rolled back when the pipeline
	// fails: the next turn can retry against the same context.
	if err := o.window.AddMessage(sessionID, core.RoleAssistant, response.Content, map[string]any{
		"worker":    response.Worker,
		"timestamp": response.Timestamp,
	}); err != nil {
		slog.Error("failed to record assistant turn", "session_id", sessionID, "error", err)
		return errorResult(sessionID, err)
	}

	slog.Info("query processed", "session_id", sessionID, "worker", response.Worker)

	return QueryResult{SessionID: sessionID, Response: response}
}

// ClearSession deletes a session. It returns false when the session does not
// exist and never fails.
func (o *Orchestrator) ClearSession(sessionID core.SessionID) bool {
	if _, ok := o.sessions.Get(sessionID); !ok {
		slog.Warn("clear requested for unknown session", "session_id", sessionID)
		return false
	}

	o.sessions.Delete(sessionID)
	slog.Info("session cleared", "session_id", sessionID)

	return true
}

// Sessions exposes the store for the API surface.
func (o *Orchestrator) Sessions() *session.Store {
	return o.sessions
}

// Window exposes the context window for the API surface.
func (o *Orchestrator) Window() *conversation.Manager {
	return o.window
}

func errorResult(sessionID core.SessionID, err error) QueryResult {
	id := sessionID
	if id == "" {
		id = "error"
	}

	return QueryResult{
		SessionID: id,
		Response: core.SupervisorResponse{
			Content:   "Sorry, an error occurred while processing your request: " + err.Error(),
			Worker:    core.WorkerError,
			Timestamp: nil,
			Metadata:  map[string]any{"error": err.Error()},
		},
	}
}
