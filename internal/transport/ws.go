package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultHandshakeTimeout = 10 * time.Second

// WSDialer connects to a process host over WebSocket.
type WSDialer struct {
	URL              string
	HandshakeTimeout time.Duration
	Logger           *zap.Logger
}

// NewWSDialer creates a dialer for the given host URL.
func NewWSDialer(url string, logger *zap.Logger) *WSDialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSDialer{
		URL:              url,
		HandshakeTimeout: defaultHandshakeTimeout,
		Logger:           logger,
	}
}

// Dial establishes a connection and starts its read loop. Inbound
// messages and the eventual close are delivered through h.
func (d *WSDialer) Dial(ctx context.Context, h Handler) (Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.HandshakeTimeout}

	c, _, err := dialer.DialContext(ctx, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial host %s: %w", d.URL, err)
	}

	conn := &wsConn{c: c, logger: d.Logger}
	go conn.readLoop(h)
	return conn, nil
}

type wsConn struct {
	c       *websocket.Conn
	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
	logger  *zap.Logger
}

func (w *wsConn) Send(data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.c.WriteMessage(websocket.TextMessage, data)
}

func (w *wsConn) Close() error {
	w.closeMu.Lock()
	defer w.closeMu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.c.Close()
}

func (w *wsConn) readLoop(h Handler) {
	for {
		_, data, err := w.c.ReadMessage()
		if err != nil {
			w.closeMu.Lock()
			wasClosed := w.closed
			w.closeMu.Unlock()

			if !wasClosed {
				w.logger.Debug("host connection read failed", zap.Error(err))
				h.HandleClose(err)
			}
			return
		}
		h.HandleMessage(data)
	}
}
