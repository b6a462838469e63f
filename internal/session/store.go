// Package session owns conversational session identity, metadata, and the
// append-only message log per session, with TTL-based expiry.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/yunseol/ingrid/internal/core"
)

// Session is the metadata for one conversational session. The message log is
// owned by the store; other components hold the SessionID only.
type Session struct {
	ID        core.SessionID `json:"session_id"`
	UserID    string         `json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type record struct {
	meta     Session
	messages []core.Message
}

// Store keeps sessions in memory keyed by session id. A session is expired
// once now - updated_at exceeds the TTL; expired sessions are removed lazily
// on lookup and eagerly by SweepExpired. None of the operations return
// errors: absence is reported as (zero, false).
type Store struct {
	mu      sync.Mutex
	records map[core.SessionID]*record
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return NewStoreWithClock(ttl, time.Now)
}

// NewStoreWithClock injects the clock, for tests that exercise expiry.
func NewStoreWithClock(ttl time.Duration, now func() time.Time) *Store {
	return &Store{
		records: make(map[core.SessionID]*record),
		ttl:     ttl,
		now:     now,
	}
}

// Create registers a new session for the user and returns its id. It never
// fails.
func (s *Store) Create(userID string) core.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := core.NewSessionID()
	now := s.now()
	s.records[id] = &record{
		meta: Session{ID: id, UserID: userID, CreatedAt: now, UpdatedAt: now},
	}

	slog.Info("session created", "session_id", id, "user_id", userID)

	return id
}

// Get returns the session metadata, or false when the id is unknown or the
// session has expired. An expired session is deleted as a side effect. This
// is the single authoritative liveness check; every other lookup in the
// store routes through it.
func (s *Store) Get(id core.SessionID) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.locked(id)
	if !ok {
		return Session{}, false
	}

	return rec.meta, true
}

// locked resolves a live record. Caller must hold s.mu.
func (s *Store) locked(id core.SessionID) (*record, bool) {
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}

	if s.now().Sub(rec.meta.UpdatedAt) > s.ttl {
		delete(s.records, id)
		slog.Info("session expired", "session_id", id)
		return nil, false
	}

	return rec, true
}

// Touch refreshes the session's updated_at. No-op when the session is absent.
func (s *Store) Touch(id core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[id]; ok {
		rec.meta.UpdatedAt = s.now()
	}
}

// Delete removes the session metadata and message log. Idempotent.
func (s *Store) Delete(id core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
}

// SweepExpired removes every expired session and returns how many were
// deleted.
func (s *Store) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, rec := range s.records {
		if now.Sub(rec.meta.UpdatedAt) > s.ttl {
			delete(s.records, id)
			removed++
		}
	}

	if removed > 0 {
		slog.Info("expired sessions removed", "count", removed)
	}

	return removed
}

// CountActive returns the number of live sessions after a sweep.
func (s *Store) CountActive() int {
	s.SweepExpired()

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}

// ListActive returns metadata for every live session after a sweep.
func (s *Store) ListActive() []Session {
	s.SweepExpired()

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]Session, 0, len(s.records))
	for _, rec := range s.records {
		sessions = append(sessions, rec.meta)
	}

	return sessions
}

// Append adds a message to the session's log, refreshing updated_at, and
// reports whether the session was live.
func (s *Store) Append(id core.SessionID, msg core.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.locked(id)
	if !ok {
		return false
	}

	rec.messages = append(rec.messages, msg)
	rec.meta.UpdatedAt = s.now()

	return true
}

// Messages returns a copy of the full message log in insertion order.
func (s *Store) Messages(id core.SessionID) ([]core.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.locked(id)
	if !ok {
		return nil, false
	}

	out := make([]core.Message, len(rec.messages))
	copy(out, rec.messages)

	return out, true
}

// DropOldest discards the n oldest messages from the session's log. Used only
// by the context window's eviction mode.
func (s *Store) DropOldest(id core.SessionID, n int) {
	if n <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.locked(id)
	if !ok {
		return
	}

	if n > len(rec.messages) {
		n = len(rec.messages)
	}

	rec.messages = append([]core.Message(nil), rec.messages[n:]...)
}
