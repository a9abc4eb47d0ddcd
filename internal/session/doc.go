// Package session creates, attaches to and deletes remote interactive
// sessions, and drives the readiness state machine:
//
//	starting -> {starting, busy, idle}* -> idle         ready
//	any      -> dead | error | killed                  terminal failure
//	idle|busy -> shutting_down -> dead                 teardown after delete
//
// A session that fails while being awaited is deleted on a best-effort basis
// before the failure is returned. A session that is still starting when the
// deadline passes is left running for the caller to decide on.
package session
