package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/vk/livysubmit/internal/gateway"
)

// StatementTimeoutError reports that a statement was still in progress when
// the deadline elapsed.
type StatementTimeoutError struct {
	SessionID   int
	StatementID int
	Deadline    time.Duration
	LastState   gateway.StatementState
	Progress    float64
}

func (e *StatementTimeoutError) Error() string {
	return fmt.Sprintf("statement %d of session %d still %q after %s (%.1f%% complete)",
		e.StatementID, e.SessionID, e.LastState, e.Deadline, e.Progress*100)
}

// RemoteExecutionError carries the exception raised by the submitted code.
type RemoteExecutionError struct {
	Name      string
	Value     string
	Traceback []string
}

func (e *RemoteExecutionError) Error() string {
	if e.Value == "" {
		return "remote execution failed: " + e.Name
	}
	return fmt.Sprintf("remote execution failed: %s: %s", e.Name, strings.TrimSpace(e.Value))
}

// StatementFailedError reports a statement that ended in error or cancelled
// without an error output to explain why.
type StatementFailedError struct {
	StatementID int
	State       gateway.StatementState
}

func (e *StatementFailedError) Error() string {
	return fmt.Sprintf("statement %d ended in state %q", e.StatementID, e.State)
}
