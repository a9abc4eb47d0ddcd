package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/vk/livysubmit/internal/gateway"
	"github.com/vk/livysubmit/internal/statement"
)

const (
	resultHeader = "Output of the application on the driver:"
	waitMessage  = "Waiting for session to become idle before sending statements"
	barWidth     = 50
)

// Renderer writes user-facing output. Console receives all human-readable
// text. When Sink is set, successful payloads go there verbatim instead of
// to the console.
type Renderer struct {
	Console io.Writer
	Sink    io.Writer
	// SinkName is shown when payloads are redirected to Sink.
	SinkName string
	// Interactive enables the spinner and colors. Leave it off when Console
	// is not a terminal.
	Interactive bool

	mu      sync.Mutex
	spinner *spinner.Spinner
	inBar   bool
}

// New returns a renderer writing to console.
func New(console io.Writer, interactive bool) *Renderer {
	return &Renderer{Console: console, Interactive: interactive}
}

func (r *Renderer) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.Interactive {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// SessionStarted announces a session the invocation created or attached to.
func (r *Renderer) SessionStarted(id int, attached bool) {
	if attached {
		fmt.Fprintf(r.Console, "Connecting to existing session %d\n", id)
		return
	}
	fmt.Fprintf(r.Console, "Started session with id = %d\n", id)
}

// SessionWaiting starts the waiting indicator. It is a spinner on a terminal
// and a single line otherwise.
func (r *Renderer) SessionWaiting() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.Interactive {
		fmt.Fprintf(r.Console, "%s ...\n", waitMessage)
		return
	}
	if r.spinner != nil {
		return
	}
	r.spinner = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(r.Console))
	r.spinner.Prefix = waitMessage + " "
	r.spinner.Start()
}

// SessionPolled updates the waiting indicator with the observed state.
func (r *Renderer) SessionPolled(s *gateway.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.spinner != nil {
		r.spinner.Suffix = " (" + string(s.State) + ")"
	}
}

// SessionWaitDone stops the waiting indicator.
func (r *Renderer) SessionWaitDone(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spinner == nil {
		return
	}
	r.spinner.Stop()
	r.spinner = nil
	status := r.paint(color.FgGreen).Sprint("DONE")
	if !ok {
		status = r.paint(color.FgRed).Sprint("FAILED")
	}
	fmt.Fprintf(r.Console, "%s %s\n", waitMessage, status)
}

// StatementSubmitted announces the statement that is about to be tracked.
func (r *Renderer) StatementSubmitted(taskName string, st *gateway.Statement) {
	fmt.Fprintf(r.Console, "Now executing the contents of the script %s (statement id=%d)\n", taskName, st.ID)
}

// StatementProgress redraws the progress bar in place.
func (r *Renderer) StatementProgress(st *gateway.Statement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.Console, ProgressBar(st.State, st.Progress))
	r.inBar = true
}

// StatementDone terminates the progress bar line.
func (r *Renderer) StatementDone() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inBar {
		fmt.Fprintln(r.Console)
		r.inBar = false
	}
}

// ProgressBar formats a carriage-return-led bar such as
// "\rrunning |#####-----| 50.0% Complete".
func ProgressBar(state gateway.StatementState, progress float64) string {
	switch {
	case progress < 0:
		progress = 0
	case progress > 1:
		progress = 1
	}
	filled := int(progress*barWidth + 0.5)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled)
	return fmt.Sprintf("\r%s |%s| %.1f%% Complete", state, bar, progress*100)
}

// Result writes a successful statement's payloads. With a sink, payloads are
// written verbatim and separated by a single newline. On the console each
// payload is preceded by its mime type.
func (r *Renderer) Result(res *statement.Result) error {
	if r.Sink != nil {
		if r.SinkName != "" {
			fmt.Fprintf(r.Console, "\nStoring output in file %s\n", r.SinkName)
		}
		for i, e := range res.Data {
			if i > 0 {
				if _, err := io.WriteString(r.Sink, "\n"); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			if _, err := io.WriteString(r.Sink, e.Value); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
		return nil
	}

	fmt.Fprintf(r.Console, "\n%s\n", resultHeader)
	for _, e := range res.Data {
		fmt.Fprintf(r.Console, "--------------- %s ---------------\n", e.Type)
		fmt.Fprintln(r.Console, e.Value)
	}
	return nil
}

// RemoteError writes the exception raised by the submitted code. Traceback
// lines are concatenated unchanged; a single newline terminates the output
// when the last line lacks one.
func (r *Renderer) RemoteError(e *statement.RemoteExecutionError) {
	var b strings.Builder
	b.WriteString(r.paint(color.FgRed, color.Bold).Sprintf("ERROR %s while executing application on the driver:", e.Name))
	b.WriteString("\n\n")
	b.WriteString(e.Value)
	b.WriteString("\n\nTraceback:\n")
	for _, line := range e.Traceback {
		b.WriteString(line)
	}
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteString("\n")
	}
	fmt.Fprint(r.Console, b.String())
}

// SessionDeleting announces that the session is being removed.
func (r *Renderer) SessionDeleting(id int) {
	fmt.Fprintf(r.Console, "\nFinished executing script, now removing session %d\n", id)
}
