// Package statement submits code to a ready session, waits for the
// statement to settle and classifies its outcome into a Result or one of
// the package's error types.
package statement
