package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/vk/livysubmit/internal/gateway"
)

// Sessions writes the session table.
func (r *Renderer) Sessions(list *gateway.SessionList) {
	if list == nil || len(list.Sessions) == 0 {
		fmt.Fprintln(r.Console, "Currently no active sessions")
		return
	}
	fmt.Fprintf(r.Console, "%-5s %-15s %-10s\n", "ID", "USER", "STATE")
	fmt.Fprintln(r.Console, strings.Repeat("-", 30))
	for _, s := range list.Sessions {
		fmt.Fprintf(r.Console, "%-5d %-15s %s\n", s.ID, s.ProxyUser, r.state(s.State))
	}
}

func (r *Renderer) state(s gateway.SessionState) string {
	switch {
	case s.IsReady():
		return r.paint(color.FgGreen).Sprint(s)
	case s.IsTerminalFailure():
		return r.paint(color.FgRed).Sprint(s)
	}
	return string(s)
}

// SessionInfo writes a session's details, its statements and its log.
func (r *Renderer) SessionInfo(s *gateway.Session, statements *gateway.StatementList) {
	fmt.Fprintf(r.Console, "Information for session %d:\n", s.ID)
	fmt.Fprintf(r.Console, "    User : %s\n", s.ProxyUser)
	fmt.Fprintf(r.Console, "    Kind : %s\n", s.Kind)
	fmt.Fprintf(r.Console, "    State: %s\n", r.state(s.State))
	if s.AppID != "" {
		fmt.Fprintf(r.Console, "    App  : %s\n", s.AppID)
	}

	fmt.Fprintln(r.Console, "\nStatements:")
	if statements != nil {
		for _, st := range statements.Statements {
			if st.State == gateway.StatementRunning {
				fmt.Fprintf(r.Console, "    Statement %d (state: running, progress = %.2f%%)\n", st.ID, st.Progress*100)
				continue
			}
			fmt.Fprintf(r.Console, "    Statement %d (state: %s)\n", st.ID, st.State)
		}
	}

	fmt.Fprintln(r.Console, "\nlog:")
	for _, line := range s.Log {
		fmt.Fprintln(r.Console, line)
	}
}

// SessionDeleted confirms a delete requested by the user.
func (r *Renderer) SessionDeleted(id int) {
	fmt.Fprintf(r.Console, "Session %d deleted\n", id)
}

// Code writes the source of a statement.
func (r *Renderer) Code(st *gateway.Statement) {
	fmt.Fprint(r.Console, st.Code)
	if !strings.HasSuffix(st.Code, "\n") {
		fmt.Fprintln(r.Console)
	}
}
