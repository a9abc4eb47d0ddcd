package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/livysubmit/internal/cli"
	"golang.org/x/term"
)

// main is the entrypoint for the livysubmit application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	os.Exit(report(os.Stderr, err))
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string) error {
	return cli.Execute(ctx, args, cli.Env{
		Stdout:      outW,
		Stderr:      errW,
		Stdin:       os.Stdin,
		Interactive: isTerminal(outW),
	})
}

// report prints err and returns the exit code for it.
func report(errW io.Writer, err error) int {
	if err == nil {
		return cli.ExitOK
	}
	code := cli.ExitCode(err)
	fmt.Fprintf(errW, "livysubmit: %v\n", err)
	return code
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
