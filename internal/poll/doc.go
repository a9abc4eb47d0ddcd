// Package poll implements the fixed-interval wait used by the session and
// statement state machines. Each round runs a condition once and then
// suspends on a clock timer, so callers can bound the wait with an explicit
// deadline, abort it through a context, and drive it from a fake clock in
// tests.
package poll
