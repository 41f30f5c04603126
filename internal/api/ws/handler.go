// Package ws streams the terminal core's event feed to UI clients and
// accepts their commands over a single WebSocket connection.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/glyphide/termcore/internal/infrastructure/monitoring"
	"github.com/glyphide/termcore/internal/orchestrator"
	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in dev
	},
}

// writeTimeout bounds one outbound write. Events are forwarded from
// the publisher's goroutine; a stalled client must not block it.
const writeTimeout = 10 * time.Second

// Message is the JSON envelope for both directions.
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	ClientID  string          `json:"client_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`

	// write
	Data []byte `json:"data,omitempty"`

	// resize
	Cols int `json:"cols,omitempty"`
	Rows int `json:"rows,omitempty"`

	// create_session
	Options *types.CreateOptions `json:"options,omitempty"`

	// create_split
	Direction types.SplitDirection `json:"direction,omitempty"`

	// append_history
	Command string `json:"command,omitempty"`

	// error responses
	Error string `json:"error,omitempty"`
}

// Handler manages UI WebSocket connections.
type Handler struct {
	core    *orchestrator.Orchestrator
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler.
func NewHandler(core *orchestrator.Orchestrator, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{core: core, logger: logger, metrics: metrics}
}

// HandleConnection upgrades the request and serves one UI client until
// it disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	clientID := uuid.New().String()
	h.metrics.WSClientConnected()
	defer h.metrics.WSClientDisconnected()

	var writeMu sync.Mutex
	send := func(msg Message) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		h.metrics.RecordWSMessage("out", msg.Type)
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(msg)
	}

	unsubscribe := h.core.Subscribe(func(e events.Event) {
		payload, err := json.Marshal(e)
		if err != nil {
			h.logger.Warn("failed to encode event", zap.Error(err))
			return
		}
		if err := send(Message{Type: string(e.Kind()), Payload: payload}); err != nil {
			h.logger.Debug("event delivery to client failed",
				zap.String("client_id", clientID),
				zap.Error(err),
			)
		}
	})
	defer unsubscribe()

	send(Message{Type: "hello", ClientID: clientID})
	h.logger.Info("ui client connected", zap.String("client_id", clientID))

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			h.logger.Info("ui client disconnected",
				zap.String("client_id", clientID),
				zap.Error(err),
			)
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)
		h.dispatch(c, send, msg)
	}
}

func (h *Handler) dispatch(c *gin.Context, send func(Message) error, msg Message) {
	fail := func(err error) {
		send(Message{Type: "error", SessionID: msg.SessionID, Error: err.Error()})
	}

	switch msg.Type {
	case "create_session":
		opts := types.CreateOptions{}
		if msg.Options != nil {
			opts = *msg.Options
		}
		if _, err := h.core.CreateSession(opts); err != nil {
			fail(err)
		}
	case "remove_session":
		if err := h.core.RemoveSession(msg.SessionID); err != nil {
			fail(err)
		}
	case "activate_session":
		if err := h.core.ActivateSession(msg.SessionID); err != nil {
			fail(err)
		}
	case "deactivate_session":
		if err := h.core.DeactivateSession(msg.SessionID); err != nil {
			fail(err)
		}
	case "create_split":
		direction := msg.Direction
		if direction == "" {
			direction = types.SplitHorizontal
		}
		if _, err := h.core.CreateSplit(msg.SessionID, direction); err != nil {
			fail(err)
		}
	case "write":
		if err := h.core.Write(msg.SessionID, msg.Data); err != nil {
			fail(err)
		}
	case "resize":
		if err := h.core.Resize(msg.SessionID, msg.Cols, msg.Rows); err != nil {
			fail(err)
		}
	case "append_history":
		if err := h.core.AppendHistory(msg.SessionID, msg.Command); err != nil {
			fail(err)
		}
	case "connect":
		if err := h.core.Connect(c.Request.Context()); err != nil {
			fail(err)
		}
	case "disconnect":
		if err := h.core.Disconnect(); err != nil {
			fail(err)
		}
	case "ping":
		send(Message{Type: "pong"})
	default:
		h.logger.Warn("unknown ui message type", zap.String("type", msg.Type))
		send(Message{Type: "error", Error: "unknown message type: " + msg.Type})
	}
}
