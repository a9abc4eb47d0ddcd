package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/livysubmit/internal/gateway"
)

func TestSessions(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer
	r := New(&console, false)

	r.Sessions(&gateway.SessionList{Sessions: []gateway.Session{
		{ID: 1, ProxyUser: "alice", State: gateway.SessionIdle},
		{ID: 12, State: gateway.SessionDead},
	}})

	want := "ID    USER            STATE     \n" +
		"------------------------------\n" +
		"1     alice           idle\n" +
		"12                    dead\n"
	require.Equal(t, want, console.String())
}

func TestSessions_Empty(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer
	New(&console, false).Sessions(&gateway.SessionList{})

	require.Equal(t, "Currently no active sessions\n", console.String())
}

func TestSessionInfo(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var console bytes.Buffer
	r := New(&console, false)
	s := &gateway.Session{ID: 3, ProxyUser: "bob", Kind: "pyspark", State: gateway.SessionBusy, Log: []string{"stdout: hi"}}
	statements := &gateway.StatementList{Statements: []gateway.Statement{
		{ID: 0, State: gateway.StatementAvailable},
		{ID: 1, State: gateway.StatementRunning, Progress: 0.5},
	}}

	// --- Act ---
	r.SessionInfo(s, statements)

	// --- Assert ---
	out := console.String()
	require.Contains(t, out, "Information for session 3:\n    User : bob\n    Kind : pyspark\n    State: busy\n")
	require.Contains(t, out, "    Statement 0 (state: available)\n")
	require.Contains(t, out, "    Statement 1 (state: running, progress = 50.00%)\n")
	require.Contains(t, out, "\nlog:\nstdout: hi\n")
}

func TestCode(t *testing.T) {
	t.Parallel()

	var console bytes.Buffer
	New(&console, false).Code(&gateway.Statement{Code: "print(1)"})

	require.Equal(t, "print(1)\n", console.String())
}
