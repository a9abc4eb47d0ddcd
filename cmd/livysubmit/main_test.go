package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/livysubmit/internal/cli"
)

func TestRun_Help(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"--help"})

	// --- Assert ---
	require.NoError(t, err, "help is not an error")
	require.Contains(t, out.String(), "Usage:")
	require.Contains(t, out.String(), "submit")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, errOut, []string{"sessions", "--this-is-not-a-valid-flag"})

	// --- Assert ---
	require.Error(t, err)
	require.Equal(t, cli.ExitUsage, cli.ExitCode(err))
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestReport(t *testing.T) {
	t.Parallel()

	var errOut bytes.Buffer

	require.Equal(t, 0, report(&errOut, nil))
	require.Empty(t, errOut.String())

	require.Equal(t, 1, report(&errOut, errors.New("boom")))
	require.Equal(t, "livysubmit: boom\n", errOut.String())
}
