// Package app contains the core application logic. It wires the gateway
// client, the session and statement machinery, profiles and the renderer
// together, and exposes one method per user-facing command, decoupled from
// any specific entrypoint like a CLI.
package app
