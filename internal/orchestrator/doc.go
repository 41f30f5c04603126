// Package orchestrator is the single entry point the UI talks to. It
// wraps the session, profile, and theme registries, the command
// history, and the connection supervisor behind one surface and one
// outbound event stream.
//
// The orchestrator is an explicitly constructed, dependency-injected
// instance: the application's composition root creates exactly one and
// passes it down. There is no package-level singleton.
package orchestrator
