package cli

import (
	"context"
	"errors"

	"github.com/vk/livysubmit/internal/credentials"
	"github.com/vk/livysubmit/internal/gateway"
	"github.com/vk/livysubmit/internal/session"
	"github.com/vk/livysubmit/internal/statement"
)

// Process exit codes.
const (
	ExitOK               = 0
	ExitUnexpected       = 1
	ExitUsage            = 2
	ExitGateway          = 3
	ExitSessionNotFound  = 4
	ExitSessionFailed    = 5
	ExitSessionTimeout   = 6
	ExitStatementTimeout = 7
	ExitRemoteExecution  = 8
	ExitAuthMissing      = 9
	ExitStatementFailed  = 10
	ExitInterrupted      = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		exitErr     *ExitError
		notFound    *session.SessionNotFoundError
		failed      *session.SessionFailedError
		sessTimeout *session.SessionTimeoutError
		stTimeout   *statement.StatementTimeoutError
		remote      *statement.RemoteExecutionError
		stFailed    *statement.StatementFailedError
		missing     *credentials.AuthenticationMissingError
		gwErr       *gateway.GatewayError
	)
	switch {
	case errors.As(err, &exitErr) && exitErr.Code != 0:
		return exitErr.Code
	case errors.As(err, &remote):
		return ExitRemoteExecution
	case errors.As(err, &stFailed):
		return ExitStatementFailed
	case errors.As(err, &stTimeout):
		return ExitStatementTimeout
	case errors.As(err, &sessTimeout):
		return ExitSessionTimeout
	case errors.As(err, &failed):
		return ExitSessionFailed
	case errors.As(err, &notFound):
		return ExitSessionNotFound
	case errors.As(err, &missing):
		return ExitAuthMissing
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &gwErr):
		return ExitGateway
	}
	return ExitUnexpected
}

var errNegativeSessionID = errors.New("--connect-existing-session must be a non-negative session id")
