// Package render writes everything the user sees on the terminal: the
// waiting indicator, statement progress, statement results, remote
// tracebacks and the session listings. Logs are not written here; they go to
// stderr through slog.
package render
