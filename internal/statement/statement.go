package statement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/livysubmit/internal/ctxlog"
	"github.com/vk/livysubmit/internal/gateway"
	"github.com/vk/livysubmit/internal/poll"
	"k8s.io/utils/clock"
)

// Gateway is the subset of the gateway client the executor needs.
type Gateway interface {
	PostStatement(ctx context.Context, sessionID int, code string) (*gateway.Statement, error)
	GetStatement(ctx context.Context, sessionID, id int) (*gateway.Statement, error)
}

// Result is a statement that completed successfully.
type Result struct {
	Statement gateway.Statement
	// Data is in the order the gateway reported it; empty when the
	// statement produced no output.
	Data gateway.MimeBundle
}

// Executor submits statements and waits for them.
type Executor struct {
	gw    Gateway
	clock clock.Clock
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock sets the clock used for polling.
func WithClock(clk clock.Clock) Option {
	return func(e *Executor) { e.clock = clk }
}

// NewExecutor returns an Executor backed by gw.
func NewExecutor(gw Gateway, opts ...Option) *Executor {
	e := &Executor{gw: gw, clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit posts code to the session and returns the created statement.
func (e *Executor) Submit(ctx context.Context, sessionID int, code string) (*gateway.Statement, error) {
	st, err := e.gw.PostStatement(ctx, sessionID, code)
	if err != nil {
		return nil, fmt.Errorf("submitting statement to session %d: %w", sessionID, err)
	}
	ctxlog.FromContext(ctx).Info("Statement submitted.", "session_id", sessionID, "statement_id", st.ID)
	return st, nil
}

// AwaitCompletion polls the statement until it leaves the in-progress
// states and returns the final snapshot. onProgress, when set, sees every
// snapshot including the last one.
func (e *Executor) AwaitCompletion(ctx context.Context, sessionID, statementID int, interval, deadline time.Duration, onProgress func(*gateway.Statement)) (*gateway.Statement, error) {
	ctx, logger := ctxlog.With(ctx, "session_id", sessionID, "statement_id", statementID)

	var last *gateway.Statement
	err := poll.Until(ctx, poll.Options{Interval: interval, Deadline: deadline, Clock: e.clock}, func(ctx context.Context) (bool, error) {
		st, err := e.gw.GetStatement(ctx, sessionID, statementID)
		if err != nil {
			return false, err
		}
		last = st
		if onProgress != nil {
			onProgress(st)
		}
		logger.Debug("Statement polled.", "state", st.State, "progress", st.Progress)
		return !st.State.InProgress(), nil
	})
	if err == nil {
		return last, nil
	}
	var gwErr *gateway.GatewayError
	if errors.As(err, &gwErr) {
		return nil, err
	}
	if poll.IsTimeout(ctx, err) {
		te := &StatementTimeoutError{SessionID: sessionID, StatementID: statementID, Deadline: deadline}
		if last != nil {
			te.LastState = last.State
			te.Progress = last.Progress
		}
		return nil, te
	}
	return nil, err
}

// Classify maps a settled statement to a Result or an error. An error
// output always wins, whatever the statement state.
func Classify(st *gateway.Statement) (*Result, error) {
	if st.State.InProgress() {
		return nil, fmt.Errorf("statement %d is still %q", st.ID, st.State)
	}
	if out := st.Output; out != nil && out.Status == gateway.OutputError {
		return nil, &RemoteExecutionError{
			Name:      out.ErrorName,
			Value:     out.ErrorValue,
			Traceback: append([]string(nil), out.Traceback...),
		}
	}
	if st.State != gateway.StatementAvailable {
		return nil, &StatementFailedError{StatementID: st.ID, State: st.State}
	}

	res := &Result{Statement: *st}
	if st.Output != nil {
		res.Data = append(gateway.MimeBundle(nil), st.Output.Data...)
	}
	return res, nil
}
