package session

import (
	"fmt"
	"time"

	"github.com/vk/livysubmit/internal/gateway"
)

// SessionNotFoundError reports that an explicitly requested session does not exist.
type SessionNotFoundError struct {
	ID int
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %d does not exist", e.ID)
}

// SessionFailedError reports that a session reached a state from which it
// can never become ready. Log carries the gateway's log tail when known.
type SessionFailedError struct {
	ID            int
	ObservedState gateway.SessionState
	Log           []string
}

func (e *SessionFailedError) Error() string {
	return fmt.Sprintf("session %d ended up in state %q", e.ID, e.ObservedState)
}

// SessionTimeoutError reports that a session did not become ready in time.
// The session is still running.
type SessionTimeoutError struct {
	ID        int
	Deadline  time.Duration
	LastState gateway.SessionState
}

func (e *SessionTimeoutError) Error() string {
	return fmt.Sprintf("session %d not ready after %s (last state %q)", e.ID, e.Deadline, e.LastState)
}
