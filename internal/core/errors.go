package core

import "errors"

// ErrSessionNotFound reports that the referenced session is unknown or has
// expired. Callers holding a session id they believe valid should treat this
// as a logic error; the orchestrator recovers by creating a fresh session on
// the inbound path only.
var ErrSessionNotFound = errors.New("session not found")
