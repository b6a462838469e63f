// Package provider implements chat-completion adapters. The OpenAI adapter
// speaks the OpenAI-compatible HTTP API and hands every payload to
// agent.Normalize, so no other package inspects provider wire formats.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/config"
)

type OpenAI struct {
	endpoint string
	model    string
	client   *http.Client
}

func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 300 * time.Second
	}

	return &OpenAI{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *OpenAI) GenerateChat(ctx context.Context, messages []agent.ChatMessage, tools []agent.ToolDef) (agent.ChatResponse, error) {
	endpointURL := p.endpoint + "/v1/chat/completions"

	msgJSON := make([]map[string]any, 0, len(messages))
	for _, message := range messages {
		entry := map[string]any{"role": message.Role, "content": message.Content}

		if len(message.ToolCalls) > 0 {
			entry["tool_calls"] = toWireToolCalls(message.ToolCalls)
		}

		if message.ToolOutput != nil {
			entry["role"] = "tool"
			entry["content"] = message.ToolOutput.Output
			if message.ToolOutput.CallID != "" {
				entry["tool_call_id"] = message.ToolOutput.CallID
			}
		}

		msgJSON = append(msgJSON, entry)
	}

	toolJSON := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		toolJSON = append(toolJSON, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        tool.Name,
				"description": tool.Description,
				"parameters":  tool.Parameters,
			},
		})
	}

	requestBody := map[string]any{
		"model":    p.model,
		"messages": msgJSON,
	}
	if len(toolJSON) > 0 {
		requestBody["tools"] = toolJSON
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return agent.ChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(payload))
	if err != nil {
		return agent.ChatResponse{}, fmt.Errorf("build chat request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(request)
	if err != nil {
		return agent.ChatResponse{}, fmt.Errorf("chat request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return agent.ChatResponse{}, fmt.Errorf("read chat response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return agent.ChatResponse{}, fmt.Errorf("chat endpoint returned %d: %s", httpResp.StatusCode, truncate(body, 200))
	}

	return agent.Normalize(body)
}

// CountTokens asks the endpoint's /tokenize route and falls back to a local
// estimate when the route is missing or the payload is unrecognized.
func (p *OpenAI) CountTokens(ctx context.Context, text string) (int, error) {
	endpointURL := p.endpoint + "/tokenize"
	requestBody, _ := json.Marshal(map[string]any{"content": text})

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(requestBody))
	if err != nil {
		return estimateTokens(text), nil
	}
	request.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(request)
	if err != nil {
		return estimateTokens(text), nil
	}
	defer httpResp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return estimateTokens(text), nil
	}

	if tokens, ok := payload["tokens"].([]any); ok {
		return len(tokens), nil
	}

	if count, ok := payload["count"].(float64); ok {
		return int(count), nil
	}

	return estimateTokens(text), nil
}

func estimateTokens(text string) int {
	return len(text) / 4
}

func toWireToolCalls(calls []agent.ToolCall) []map[string]any {
	var toolCalls []map[string]any
	for _, call := range calls {
		argsJSON, _ := json.Marshal(call.Arguments)
		toolCalls = append(toolCalls, map[string]any{
			"id":   call.ID,
			"type": "function",
			"function": map[string]any{
				"name":      call.Name,
				"arguments": string(argsJSON),
			},
		})
	}
	return toolCalls
}

func truncate(body []byte, limit int) string {
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}
