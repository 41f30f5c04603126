// Package transport defines the byte-channel boundary between the
// terminal core and the external process host, plus the WebSocket
// client implementation of it.
package transport

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by send paths when no transport has
// ever been configured. It is distinct from "disconnected but
// queuing", which is not an error.
var ErrNotConfigured = errors.New("transport not configured")

// Handler receives inbound messages and connection lifecycle
// callbacks from a Conn.
type Handler interface {
	HandleMessage(data []byte)
	HandleClose(err error)
}

// Conn is one established connection to the process host.
type Conn interface {
	Send(data []byte) error
	Close() error
}

// Dialer establishes connections to the process host. Each reconnect
// attempt is a fresh Dial.
type Dialer interface {
	Dial(ctx context.Context, h Handler) (Conn, error)
}
