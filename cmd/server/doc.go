// Command server runs the terminal core as a standalone service:
// the orchestrator plus its WebSocket/REST surfaces, backed by either
// the in-process PTY host or a remote process host.
package main
