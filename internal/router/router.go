// Package router classifies a query into a worker label via a
// language-model call, with strict validation, one retry, and a
// deterministic fallback. Route never fails and never blocks beyond the
// underlying call.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/core"
)

const maxContextMessages = 3

const routerInstructions = `You route user queries for a cosmetic R&D assistant.
Given the conversation context and the latest query, pick the worker that
should handle it and reply with a JSON object only.`

var errMissingWorkerField = errors.New("routing response is missing the worker field")

type Router struct {
	agent agent.Agent
}

func New(completer agent.ChatCompleter) *Router {
	return &Router{agent: agent.NewChatAgent(completer, routerInstructions, nil)}
}

// Route picks a worker for the query. The result always carries a label from
// the valid set and a confidence in [0, 1].
func (r *Router) Route(ctx context.Context, query string, chatContext []core.ChatEntry) core.RoutingResult {
	prompt := buildRoutingPrompt(query, formatContext(chatContext))

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		result, err := r.callAndParse(ctx, prompt)
		if err == nil {
			slog.Info("routing decided", "worker", result.Worker, "confidence", result.Confidence, "attempt", attempt)
			return result
		}

		lastErr = err
		slog.Warn("routing attempt failed", "attempt", attempt, "error", err)
	}

	slog.Error("routing failed, using fallback", "error", lastErr)

	return fallbackResult()
}

func (r *Router) callAndParse(ctx context.Context, prompt string) (core.RoutingResult, error) {
	response, err := r.agent.Run(ctx, prompt)
	if err != nil {
		return core.RoutingResult{}, fmt.Errorf("routing call: %w", err)
	}

	return parseRoutingResponse(response.Text)
}

// formatContext renders at most the last maxContextMessages entries as
// role-labeled lines, or "none" when there is no context.
func formatContext(chatContext []core.ChatEntry) string {
	if len(chatContext) == 0 {
		return "none"
	}

	start := 0
	if len(chatContext) > maxContextMessages {
		start = len(chatContext) - maxContextMessages
	}

	lines := make([]string, 0, maxContextMessages)
	for _, entry := range chatContext[start:] {
		label := "Assistant"
		if entry.Role == core.RoleUser {
			label = "User"
		}
		lines = append(lines, label+": "+entry.Content)
	}

	return strings.Join(lines, "\n")
}

func buildRoutingPrompt(query, contextStr string) string {
	return strings.TrimSpace(fmt.Sprintf(`Analyze the user query and select the worker that should handle it.

<conversation-context>
%s
</conversation-context>

<user-query>
%s
</user-query>

Response format (JSON):
{
  "worker": "ingredient" | "formula" | "regulation",
  "confidence": 0.0 to 1.0,
  "reasoning": "why this worker"
}`, contextStr, query))
}

func parseRoutingResponse(content string) (core.RoutingResult, error) {
	content = stripCodeFences(content)

	var raw struct {
		Worker     *string  `json:"worker"`
		Confidence *float64 `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return core.RoutingResult{}, fmt.Errorf("parse routing response: %w", err)
	}

	if raw.Worker == nil {
		return core.RoutingResult{}, errMissingWorkerField
	}

	worker := core.WorkerLabel(*raw.Worker)
	if !core.ValidWorkers[worker] {
		slog.Warn("invalid worker label, using default", "worker", worker, "default", core.DefaultWorker)
		worker = core.DefaultWorker
	}

	confidence := 0.5
	if raw.Confidence != nil {
		confidence = *raw.Confidence
		if confidence < 0 || confidence > 1 {
			slog.Warn("confidence out of range, clamping", "confidence", confidence)
			confidence = 0.5
		}
	}

	return core.RoutingResult{Worker: worker, Confidence: confidence, Reasoning: raw.Reasoning}, nil
}

// stripCodeFences unwraps an optional ```json or generic ``` fence around
// the payload.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)

	if start := strings.Index(content, "```json"); start >= 0 {
		rest := content[start+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}

	if start := strings.Index(content, "```"); start >= 0 {
		rest := content[start+len("```"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}

	return content
}

func fallbackResult() core.RoutingResult {
	return core.RoutingResult{
		Worker:     core.DefaultWorker,
		Confidence: 0.5,
		Reasoning:  "routing failed, falling back to the default worker",
	}
}
