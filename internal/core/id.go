package core

import "github.com/google/uuid"

type SessionID string

// NewSessionID returns a fresh random 128-bit session identifier.
func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}
