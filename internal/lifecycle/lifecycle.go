package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vk/livysubmit/internal/ctxlog"
	"github.com/vk/livysubmit/internal/gateway"
	"github.com/vk/livysubmit/internal/session"
	"github.com/vk/livysubmit/internal/statement"
)

// Sessions obtains, awaits and removes sessions.
type Sessions interface {
	Ensure(ctx context.Context, target session.Target) (*session.Handle, error)
	AwaitReady(ctx context.Context, id int, interval, deadline time.Duration, onPoll func(*gateway.Session)) (*gateway.Session, error)
	AwaitIdle(ctx context.Context, id int, interval, deadline time.Duration, onPoll func(*gateway.Session)) (*gateway.Session, error)
	Delete(ctx context.Context, id int)
}

// Statements submits and awaits statements.
type Statements interface {
	Submit(ctx context.Context, sessionID int, code string) (*gateway.Statement, error)
	AwaitCompletion(ctx context.Context, sessionID, statementID int, interval, deadline time.Duration, onProgress func(*gateway.Statement)) (*gateway.Statement, error)
}

// Reporter receives the user-facing events of a submission.
type Reporter interface {
	SessionStarted(id int, attached bool)
	SessionWaiting()
	SessionPolled(s *gateway.Session)
	SessionWaitDone(ok bool)
	StatementSubmitted(taskName string, st *gateway.Statement)
	StatementProgress(st *gateway.Statement)
	StatementDone()
	Result(res *statement.Result) error
	RemoteError(err *statement.RemoteExecutionError)
	SessionDeleting(id int)
}

// Request is one submission.
type Request struct {
	Target   session.Target
	Code     string
	TaskName string
	// KeepAlive leaves a created session running afterwards. Attached
	// sessions are always kept.
	KeepAlive bool
	// NoWait returns as soon as the statement is accepted. Implies KeepAlive.
	NoWait bool
	// SessionIDFile, when set, receives the decimal session id after the
	// outcome is rendered.
	SessionIDFile string

	PollInterval      time.Duration
	SessionDeadline   time.Duration
	StatementDeadline time.Duration
}

// Outcome describes what a submission did. It is returned alongside errors
// as far as it is known.
type Outcome struct {
	SessionID   int
	Attached    bool
	StatementID int
	// Result is set when the statement completed successfully.
	Result *statement.Result
	// Deleted reports whether cleanup was attempted.
	Deleted bool
}

// Orchestrator runs submissions.
type Orchestrator struct {
	sessions   Sessions
	statements Statements
	reporter   Reporter
}

// New returns an Orchestrator.
func New(sessions Sessions, statements Statements, reporter Reporter) *Orchestrator {
	return &Orchestrator{sessions: sessions, statements: statements, reporter: reporter}
}

// Submit runs req to completion. A remote exception is rendered and then
// returned as *statement.RemoteExecutionError.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Outcome, error) {
	h, err := o.sessions.Ensure(ctx, req.Target)
	if err != nil {
		return nil, err
	}
	ctx, logger := ctxlog.With(ctx, "session_id", h.ID)
	out := &Outcome{SessionID: h.ID, Attached: h.Attached}
	o.reporter.SessionStarted(h.ID, h.Attached)

	keep := req.KeepAlive || req.NoWait || h.Attached
	cleaned := false
	defer func() {
		if keep || cleaned {
			logger.Debug("Leaving session running.", "attached", h.Attached)
			return
		}
		o.reporter.SessionDeleting(h.ID)
		o.sessions.Delete(ctx, h.ID)
		out.Deleted = true
	}()

	// An attached session may still be starting or busy with another
	// statement, so it is awaited too, but never removed on failure.
	await := o.sessions.AwaitReady
	if h.Attached {
		await = o.sessions.AwaitIdle
	}
	o.reporter.SessionWaiting()
	_, err = await(ctx, h.ID, req.PollInterval, req.SessionDeadline, o.reporter.SessionPolled)
	o.reporter.SessionWaitDone(err == nil)
	if err != nil {
		var failed *session.SessionFailedError
		if errors.As(err, &failed) && !h.Attached {
			// AwaitReady already removed it.
			cleaned = true
			out.Deleted = true
		}
		return out, err
	}

	st, err := o.statements.Submit(ctx, h.ID, req.Code)
	if err != nil {
		return out, err
	}
	out.StatementID = st.ID
	o.reporter.StatementSubmitted(req.TaskName, st)

	if req.NoWait {
		logger.Info("Not waiting for the statement to finish.", "statement_id", st.ID)
		return out, o.persistSessionID(ctx, req.SessionIDFile, h.ID)
	}

	final, err := o.statements.AwaitCompletion(ctx, h.ID, st.ID, req.PollInterval, req.StatementDeadline, o.reporter.StatementProgress)
	o.reporter.StatementDone()
	if err != nil {
		return out, err
	}

	res, err := statement.Classify(final)
	var remote *statement.RemoteExecutionError
	switch {
	case errors.As(err, &remote):
		o.reporter.RemoteError(remote)
	case err != nil:
		return out, err
	default:
		if err := o.reporter.Result(res); err != nil {
			return out, err
		}
		out.Result = res
	}

	if perr := o.persistSessionID(ctx, req.SessionIDFile, h.ID); perr != nil && err == nil {
		return out, perr
	}
	return out, err
}

func (o *Orchestrator) persistSessionID(ctx context.Context, path string, id int) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(id)), 0o644); err != nil {
		return fmt.Errorf("writing session id file: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Session id written.", "path", path)
	return nil
}
