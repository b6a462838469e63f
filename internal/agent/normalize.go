package agent

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Normalize converts a raw chat-completion payload into a ChatResponse. All
// provider shape-probing lives here: OpenAI-style choices, flat
// content/tool_calls maps, bare text fields, and message lists are accepted;
// anything else is an error. Callers never inspect provider payloads
// directly.
func Normalize(payload []byte) (ChatResponse, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil {
		return ChatResponse{}, fmt.Errorf("decode chat payload: %w", err)
	}

	if raw, ok := body["choices"]; ok {
		return normalizeChoices(raw)
	}

	if raw, ok := body["messages"]; ok {
		return normalizeMessageList(raw)
	}

	response := ChatResponse{}
	found := false

	if raw, ok := body["content"]; ok {
		if err := json.Unmarshal(raw, &response.Content); err == nil {
			found = true
		}
	}

	if !found {
		if raw, ok := body["text"]; ok {
			if err := json.Unmarshal(raw, &response.Content); err == nil {
				found = true
			}
		}
	}

	if raw, ok := body["tool_calls"]; ok {
		calls, err := normalizeToolCalls(raw)
		if err != nil {
			return ChatResponse{}, err
		}
		response.ToolCalls = calls
		found = true
	}

	if !found {
		return ChatResponse{}, errors.New("unrecognized chat payload shape")
	}

	return response, nil
}

func normalizeChoices(raw json.RawMessage) (ChatResponse, error) {
	var choices []struct {
		Message struct {
			Content   string          `json:"content"`
			ToolCalls json.RawMessage `json:"tool_calls"`
		} `json:"message"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &choices); err != nil {
		return ChatResponse{}, fmt.Errorf("decode choices: %w", err)
	}

	if len(choices) == 0 {
		return ChatResponse{}, errors.New("empty choices in chat payload")
	}

	choice := choices[0]
	response := ChatResponse{Content: choice.Message.Content}
	if response.Content == "" {
		response.Content = choice.Text
	}

	if len(choice.Message.ToolCalls) > 0 {
		calls, err := normalizeToolCalls(choice.Message.ToolCalls)
		if err != nil {
			return ChatResponse{}, err
		}
		response.ToolCalls = calls
	}

	return response, nil
}

func normalizeMessageList(raw json.RawMessage) (ChatResponse, error) {
	var messages []struct {
		Content string `json:"content"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(raw, &messages); err != nil {
		return ChatResponse{}, fmt.Errorf("decode messages: %w", err)
	}

	if len(messages) == 0 {
		return ChatResponse{}, errors.New("empty messages in chat payload")
	}

	last := messages[len(messages)-1]
	content := last.Content
	if content == "" {
		content = last.Text
	}

	return ChatResponse{Content: content}, nil
}

// normalizeToolCalls accepts both OpenAI function-call records (arguments as
// a JSON-encoded string under "function") and flat {name, arguments} maps.
func normalizeToolCalls(raw json.RawMessage) ([]ToolCall, error) {
	var entries []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Args     any    `json:"arguments"`
		Function *struct {
			Name string `json:"name"`
			Args any    `json:"arguments"`
		} `json:"function"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode tool calls: %w", err)
	}

	calls := make([]ToolCall, 0, len(entries))
	for _, entry := range entries {
		call := ToolCall{ID: entry.ID, Name: entry.Name}
		args := entry.Args
		if entry.Function != nil {
			call.Name = entry.Function.Name
			args = entry.Function.Args
		}

		call.Arguments = decodeArguments(args)
		calls = append(calls, call)
	}

	return calls, nil
}

func decodeArguments(args any) map[string]any {
	switch value := args.(type) {
	case map[string]any:
		return value
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			return decoded
		}
	}
	return nil
}
