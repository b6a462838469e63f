// Package conversation provides token-counted, turn-bounded views over a
// session's message log.
package conversation

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/yunseol/ingrid/internal/core"
	"github.com/yunseol/ingrid/internal/session"
)

// Fixed per-message overhead added to token totals, matching the typical
// chat-format framing cost.
const messageOverheadTokens = 4

// Settings bounds a context window. MaxTurns counts user+assistant pairs.
// With Enforce false (the default) both limits are diagnostic only: overflow
// is logged and the log is left intact, enforcement happening at read time
// via bounded views. With Enforce true the oldest whole turns are dropped
// after each append until both limits hold.
type Settings struct {
	MaxTurns  int
	MaxTokens int
	Model     string
	Enforce   bool
	Tokenizer Tokenizer
}

// Manager wraps a session store with context-window semantics. Absent or
// expired sessions surface as core.ErrSessionNotFound.
type Manager struct {
	store     *session.Store
	tokenizer Tokenizer
	maxTurns  int
	maxTokens int
	enforce   bool
}

func NewManager(store *session.Store, settings Settings) *Manager {
	tokenizer := settings.Tokenizer
	if tokenizer == nil {
		tokenizer = EncodingForModel(settings.Model)
	}

	return &Manager{
		store:     store,
		tokenizer: tokenizer,
		maxTurns:  settings.MaxTurns,
		maxTokens: settings.MaxTokens,
		enforce:   settings.Enforce,
	}
}

// AddMessage appends a message to the session's log and runs the window
// check. The underlying lookup refreshes the session's TTL.
func (m *Manager) AddMessage(id core.SessionID, role core.Role, content string, metadata map[string]any) error {
	msg := core.Message{Role: role, Content: content, Metadata: metadata}

	if ok := m.store.Append(id, msg); !ok {
		return fmt.Errorf("add message: %w", core.ErrSessionNotFound)
	}

	slog.Debug("message added", "session_id", id, "role", role, "length", len(content))

	m.manageWindow(id)

	return nil
}

// Context returns the session's messages in conversational order. When
// maxMessages is positive only the most recent maxMessages entries are
// returned; the truncation is a view, never a mutation of the log.
func (m *Manager) Context(id core.SessionID, maxMessages int) ([]core.Message, error) {
	messages, ok := m.store.Messages(id)
	if !ok {
		return nil, fmt.Errorf("get context: %w", core.ErrSessionNotFound)
	}

	if maxMessages > 0 && len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	return messages, nil
}

// ContextEntries projects the bounded context into role/content records for
// a language-model call.
func (m *Manager) ContextEntries(id core.SessionID, maxMessages int) ([]core.ChatEntry, error) {
	messages, err := m.Context(id, maxMessages)
	if err != nil {
		return nil, err
	}

	entries := make([]core.ChatEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, core.ChatEntry{
			Role:       msg.Role,
			Content:    msg.Content,
			AuthorName: msg.AuthorName,
		})
	}

	return entries, nil
}

// LastN returns the most recent n messages.
func (m *Manager) LastN(id core.SessionID, n int) ([]core.Message, error) {
	return m.Context(id, n)
}

// CountTokens counts tokens in text using the configured tokenizer.
func (m *Manager) CountTokens(text string) int {
	return m.tokenizer.Count(text)
}

// ContextTokens sums CountTokens over every message in the unwindowed log,
// plus the fixed per-message overhead.
func (m *Manager) ContextTokens(id core.SessionID) (int, error) {
	messages, ok := m.store.Messages(id)
	if !ok {
		return 0, fmt.Errorf("count context tokens: %w", core.ErrSessionNotFound)
	}

	return m.tokensOf(messages), nil
}

func (m *Manager) tokensOf(messages []core.Message) int {
	total := 0
	for _, msg := range messages {
		total += m.tokenizer.Count(msg.Content) + messageOverheadTokens
	}

	return total
}

// Clear deletes the session and creates a fresh one for the same user,
// returning the new id. This is the only supported reset; individual
// messages are never deleted.
func (m *Manager) Clear(id core.SessionID) (core.SessionID, error) {
	meta, ok := m.store.Get(id)
	if !ok {
		return "", fmt.Errorf("clear context: %w", core.ErrSessionNotFound)
	}

	m.store.Delete(id)
	newID := m.store.Create(meta.UserID)

	slog.Info("context cleared, session recreated", "old_session_id", id, "new_session_id", newID)

	return newID, nil
}

// Summary is a diagnostic snapshot of a session's window usage.
type Summary struct {
	MessageCount      int     `json:"message_count"`
	TotalTokens       int     `json:"total_tokens"`
	MaxTokens         int     `json:"max_tokens"`
	TokenUsagePercent float64 `json:"token_usage_percent"`
	Turns             int     `json:"turns"`
	MaxTurns          int     `json:"max_turns"`
}

func (m *Manager) Summary(id core.SessionID) (Summary, error) {
	messages, ok := m.store.Messages(id)
	if !ok {
		return Summary{}, fmt.Errorf("context summary: %w", core.ErrSessionNotFound)
	}

	totalTokens := m.tokensOf(messages)
	percent := math.Round(float64(totalTokens)/float64(m.maxTokens)*100*100) / 100

	return Summary{
		MessageCount:      len(messages),
		TotalTokens:       totalTokens,
		MaxTokens:         m.maxTokens,
		TokenUsagePercent: percent,
		Turns:             len(messages) / 2,
		MaxTurns:          m.maxTurns,
	}, nil
}

// manageWindow applies the window policy after an append. In diagnostic mode
// overflow is only logged; in enforce mode the oldest whole turns are
// dropped until the turn and token limits both hold, always retaining the
// most recent turn.
func (m *Manager) manageWindow(id core.SessionID) {
	messages, ok := m.store.Messages(id)
	if !ok {
		return
	}

	maxMessages := m.maxTurns * 2
	drop := 0

	if len(messages) > maxMessages {
		over := len(messages) - maxMessages
		if m.enforce {
			drop = over
			if drop%2 != 0 {
				drop++
			}
		} else {
			slog.Info("context window over turn limit",
				"session_id", id, "messages", len(messages), "max_messages", maxMessages, "over", over)
		}
	}

	if total := m.tokensOf(messages); total > m.maxTokens {
		if m.enforce {
			for drop < len(messages)-2 && m.tokensOf(messages[drop:]) > m.maxTokens {
				drop += 2
			}
		} else {
			slog.Warn("context token limit exceeded",
				"session_id", id, "total_tokens", total, "max_tokens", m.maxTokens)
		}
	}

	if drop > 0 {
		if drop > len(messages) {
			drop = len(messages)
		}
		m.store.DropOldest(id, drop)
		slog.Info("evicted oldest turns", "session_id", id, "messages_dropped", drop)
	}
}
