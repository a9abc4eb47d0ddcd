package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vk/livysubmit/internal/gateway"
	"github.com/vk/livysubmit/internal/render"
	"github.com/vk/livysubmit/internal/session"
	"github.com/vk/livysubmit/internal/statement"
)

// Sessions lists the sessions known to the gateway.
func (a *App) Sessions(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	gw, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()

	list, err := gw.ListSessions(ctx)
	if err != nil {
		return err
	}
	a.renderer().Sessions(list)
	return nil
}

// Info shows one session, its statements and its log.
func (a *App) Info(ctx context.Context, id int) error {
	ctx = a.withLogger(ctx)
	gw, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()

	s, err := gw.GetSession(ctx, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			return &session.SessionNotFoundError{ID: id}
		}
		return err
	}
	statements, err := gw.ListStatements(ctx, id)
	if err != nil {
		return err
	}
	a.renderer().SessionInfo(s, statements)
	return nil
}

// Delete removes a session on request. Unlike cleanup, failures are
// returned.
func (a *App) Delete(ctx context.Context, id int) error {
	ctx = a.withLogger(ctx)
	gw, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()

	list, err := gw.ListSessions(ctx)
	if err != nil {
		return err
	}
	if _, ok := list.Find(id); !ok {
		return &session.SessionNotFoundError{ID: id}
	}
	if err := gw.DeleteSession(ctx, id); err != nil {
		return err
	}
	a.renderer().SessionDeleted(id)
	return nil
}

// Status follows a statement's progress until it settles.
func (a *App) Status(ctx context.Context, sessionID, statementID int) error {
	ctx = a.withLogger(ctx)
	gw, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()

	r := a.renderer()
	fmt.Fprintf(a.outW, "Statement progress for statement %d in session %d\n", statementID, sessionID)
	exec := statement.NewExecutor(gw, statement.WithClock(a.clock))
	_, err = exec.AwaitCompletion(ctx, sessionID, statementID, a.config.PollInterval, a.config.StatementDeadline, r.StatementProgress)
	r.StatementDone()
	return err
}

// Code prints the source of a statement, or stores it in outputFile.
func (a *App) Code(ctx context.Context, sessionID, statementID int, outputFile string) error {
	st, err := a.statement(ctx, sessionID, statementID)
	if err != nil {
		return err
	}
	if st.Code == "" {
		return fmt.Errorf("no code in statement %d of session %d", statementID, sessionID)
	}
	if outputFile == "" {
		a.renderer().Code(st)
		return nil
	}
	fmt.Fprintf(a.outW, "\nStoring code of statement %d of session %d in file %s\n", statementID, sessionID, outputFile)
	if err := os.WriteFile(outputFile, []byte(st.Code), 0o644); err != nil {
		return fmt.Errorf("writing code file: %w", err)
	}
	return nil
}

// Output renders the outcome of a settled statement, exactly as a
// submission would.
func (a *App) Output(ctx context.Context, sessionID, statementID int, outputFile string) error {
	st, err := a.statement(ctx, sessionID, statementID)
	if err != nil {
		return err
	}

	r := a.renderer()
	res, err := statement.Classify(st)
	var remote *statement.RemoteExecutionError
	if errors.As(err, &remote) {
		r.RemoteError(remote)
		return err
	}
	if err != nil {
		return err
	}
	if outputFile == "" {
		return r.Result(res)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	r.Sink = f
	r.SinkName = outputFile
	if err := r.Result(res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *App) statement(ctx context.Context, sessionID, statementID int) (*gateway.Statement, error) {
	ctx = a.withLogger(ctx)
	gw, err := a.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer gw.Close()
	return gw.GetStatement(ctx, sessionID, statementID)
}

func (a *App) renderer() *render.Renderer {
	return render.New(a.outW, a.config.Interactive)
}
