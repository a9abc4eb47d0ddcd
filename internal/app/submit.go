package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/livysubmit/internal/config"
	"github.com/vk/livysubmit/internal/lifecycle"
	"github.com/vk/livysubmit/internal/render"
	"github.com/vk/livysubmit/internal/session"
	"github.com/vk/livysubmit/internal/statement"
)

// TaskNamePrefix starts the name of every session the tool creates.
const TaskNamePrefix = "LivySubmit - "

// SubmitOptions selects what to run and where.
type SubmitOptions struct {
	ScriptPath string
	// TaskName defaults to the script's base name.
	TaskName string
	// AttachID runs the script in an existing session instead of a new one.
	AttachID      *int
	KeepAlive     bool
	NoWait        bool
	OutputFile    string
	SessionIDFile string
	// Overrides holds settings given on the command line. They win over
	// the selected profile.
	Overrides *config.Profile
}

// Submit runs a script in a session and renders its outcome.
func (a *App) Submit(ctx context.Context, opts SubmitOptions) error {
	ctx = a.withLogger(ctx)

	code, err := os.ReadFile(opts.ScriptPath)
	if err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	taskName := opts.TaskName
	if taskName == "" {
		taskName = filepath.Base(opts.ScriptPath)
	}
	taskName = TaskNamePrefix + taskName

	target := session.Target{AttachID: opts.AttachID}
	if opts.AttachID == nil {
		spec, err := a.sessionSpec(taskName, opts.Overrides)
		if err != nil {
			return err
		}
		target.Spec = spec
	}

	gw, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer gw.Close()

	r := render.New(a.outW, a.config.Interactive)
	var sink bytes.Buffer
	if opts.OutputFile != "" {
		r.Sink = &sink
		r.SinkName = opts.OutputFile
	}

	orch := lifecycle.New(
		session.NewManager(gw, session.WithClock(a.clock)),
		statement.NewExecutor(gw, statement.WithClock(a.clock)),
		r,
	)
	out, err := orch.Submit(ctx, lifecycle.Request{
		Target:            target,
		Code:              string(code),
		TaskName:          taskName,
		KeepAlive:         opts.KeepAlive,
		NoWait:            opts.NoWait,
		SessionIDFile:     opts.SessionIDFile,
		PollInterval:      a.config.PollInterval,
		SessionDeadline:   a.config.SessionDeadline,
		StatementDeadline: a.config.StatementDeadline,
	})
	if out != nil && out.Result != nil && opts.OutputFile != "" {
		if werr := os.WriteFile(opts.OutputFile, sink.Bytes(), 0o644); werr != nil && err == nil {
			err = fmt.Errorf("writing output file: %w", werr)
		}
	}
	return err
}

// sessionSpec layers defaults, the selected profile and command-line
// overrides, in that order, and validates the result.
func (a *App) sessionSpec(taskName string, overrides *config.Profile) (*config.SessionSpec, error) {
	spec := config.DefaultSessionSpec()
	spec.ProxyUser = a.config.User
	spec.Name = taskName
	spec = a.profile.Apply(spec)
	spec = overrides.Apply(spec)
	return config.NewSessionSpec(spec)
}
