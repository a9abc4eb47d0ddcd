// Package lifecycle drives one submission end to end: obtain a session,
// wait until it is ready, run the code, render the outcome and remove the
// session again unless the caller keeps it.
//
// Cleanup is attempted on every exit path once a session id is known, at
// most once, and never for attached or kept-alive sessions.
package lifecycle
