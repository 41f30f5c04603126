package supervisor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glyphide/termcore/internal/infrastructure/monitoring"
	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/shared/types"
	"github.com/glyphide/termcore/internal/transport"
)

// ConnState tracks the single logical host connection.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

// String returns the string representation of the state.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

const (
	// DefaultMaxReconnectAttempts caps automatic reconnection after an
	// unexpected drop.
	DefaultMaxReconnectAttempts = 5

	// DefaultQueueDepth bounds the per-session write queue held while
	// disconnected. Overflow drops the oldest entry.
	DefaultQueueDepth = 64

	defaultBackoffBase = 500 * time.Millisecond
	defaultBackoffMax  = 8 * time.Second
	dialTimeout        = 10 * time.Second
)

// Settings configures the reconnect policy and queue bounds.
type Settings struct {
	MaxReconnectAttempts int
	BackoffBase          time.Duration
	BackoffMax           time.Duration
	QueueDepth           int
}

func (s *Settings) withDefaults() {
	if s.MaxReconnectAttempts <= 0 {
		s.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if s.BackoffBase <= 0 {
		s.BackoffBase = defaultBackoffBase
	}
	if s.BackoffMax <= 0 {
		s.BackoffMax = defaultBackoffMax
	}
	if s.QueueDepth <= 0 {
		s.QueueDepth = DefaultQueueDepth
	}
}

// SessionStore is the registry surface the supervisor needs for
// routing. The supervisor holds session ids only, never the records.
type SessionStore interface {
	Get(sessionID string) (types.Session, bool)
	SetStatus(sessionID string, status types.SessionStatus)
}

// Supervisor owns exactly one transport connection to the process
// host. It runs the connect/backoff/reconnect state machine, fans
// session writes into the transport, and fans inbound bytes out to the
// owning session as sessionOutput events.
type Supervisor struct {
	mu       sync.Mutex
	settings Settings
	dialer   transport.Dialer
	conn     transport.Conn
	state    ConnState

	attached map[string]bool
	queues   map[string][][]byte

	retries    int
	retryTimer *time.Timer
	manual     bool
	disposed   bool

	// A close can arrive while a dial is still in flight: the read
	// loop starts before Dial returns. The loss is recorded here and
	// consumed by establishLocked, which rejects the already-dead conn.
	dialLost    bool
	dialLostErr error

	sessions SessionStore
	bus      *events.Bus
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// New creates a supervisor. A nil dialer means no transport was ever
// configured; send paths then fail with transport.ErrNotConfigured.
func New(dialer transport.Dialer, sessions SessionStore, bus *events.Bus, settings Settings, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings.withDefaults()
	return &Supervisor{
		settings: settings,
		dialer:   dialer,
		attached: make(map[string]bool),
		queues:   make(map[string][][]byte),
		sessions: sessions,
		bus:      bus,
		logger:   logger,
	}
}

// WithMetrics adds metrics tracking to the supervisor.
func (s *Supervisor) WithMetrics(m *monitoring.Metrics) *Supervisor {
	s.metrics = m
	return s
}

// State returns the current connection state.
func (s *Supervisor) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect establishes the host connection. It is idempotent: while
// connecting or connected no second attempt is started. On success the
// retry counter resets, connected fires, attach frames go out for
// every attached session, and writes queued while disconnected flush
// in original order.
func (s *Supervisor) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed || s.state != StateDisconnected {
		s.mu.Unlock()
		return nil
	}
	if s.dialer == nil {
		s.mu.Unlock()
		return transport.ErrNotConfigured
	}
	s.state = StateConnecting
	s.manual = false
	s.dialLost = false
	s.dialLostErr = nil
	s.mu.Unlock()

	conn, err := s.dialer.Dial(ctx, s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		if conn != nil {
			conn.Close()
		}
		return nil
	}
	if err != nil {
		s.state = StateDisconnected
		return err
	}
	s.establishLocked(conn)
	return nil
}

// Disconnect is explicit teardown. It always transitions to
// disconnected, fires disconnected, and never triggers automatic
// reconnection.
func (s *Supervisor) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}

	s.manual = true
	s.retries = 0
	s.stopRetryTimerLocked()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.state != StateDisconnected {
		s.state = StateDisconnected
		s.metrics.SetTransportConnected(false)
		s.markSessionsLocked(types.StatusDisconnected)
		s.bus.Publish(events.Disconnected{Reason: "requested"})
	}
}

// Attach registers a session for routing. When connected, the start
// frame goes out immediately; otherwise the session is started on the
// next successful connect.
func (s *Supervisor) Attach(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}

	s.attached[sessionID] = true
	if s.state == StateConnected {
		s.startSessionLocked(sessionID)
	}
}

// Detach stops routing for a session, sends its close frame when
// connected, and drops any queued writes.
func (s *Supervisor) Detach(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached[sessionID] {
		return
	}
	delete(s.attached, sessionID)
	delete(s.queues, sessionID)

	if s.state == StateConnected && s.conn != nil {
		s.sendFrameLocked(transport.Frame{Type: transport.FrameClose, SessionID: sessionID})
	}
}

// Write routes session input to the transport when connected and
// queues it per-session when disconnected. Writes for unknown
// sessions are dropped with a warning.
func (s *Supervisor) Write(sessionID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil
	}
	if s.dialer == nil {
		return transport.ErrNotConfigured
	}

	if _, ok := s.sessions.Get(sessionID); !ok {
		s.logger.Warn("dropping write for unknown session", zap.String("session_id", sessionID))
		return nil
	}

	if s.state == StateConnected && s.conn != nil {
		return s.sendFrameLocked(transport.Frame{
			Type:      transport.FrameData,
			SessionID: sessionID,
			Data:      data,
		})
	}

	s.enqueueLocked(sessionID, data)
	return nil
}

// Resize forwards new dimensions as a control message on the same
// channel. It has no effect, and is not an error, when the session is
// not currently attached to a live transport.
func (s *Supervisor) Resize(sessionID string, cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnected || s.conn == nil || !s.attached[sessionID] {
		return
	}
	s.sendFrameLocked(transport.Frame{
		Type:      transport.FrameResize,
		SessionID: sessionID,
		Cols:      cols,
		Rows:      rows,
	})
}

// Dispose hard-cancels pending reconnect timers and queued writes and
// closes the transport. No events fire from the supervisor afterward.
func (s *Supervisor) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}

	s.disposed = true
	s.stopRetryTimerLocked()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.state = StateDisconnected
	s.queues = make(map[string][][]byte)
	s.attached = make(map[string]bool)
}

// HandleMessage routes an inbound host frame to the owning session.
func (s *Supervisor) HandleMessage(data []byte) {
	frame, err := transport.DecodeFrame(data)
	if err != nil {
		s.logger.Warn("dropping malformed host frame", zap.Error(err))
		s.bus.Publish(events.Error{Message: err.Error()})
		return
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	known := s.attached[frame.SessionID]
	s.mu.Unlock()

	switch frame.Type {
	case transport.FrameData:
		if !known {
			s.logger.Warn("output for unattached session", zap.String("session_id", frame.SessionID))
			return
		}
		s.bus.Publish(events.SessionOutput{SessionID: frame.SessionID, Data: frame.Data})
	case transport.FrameExit:
		if known {
			s.sessions.SetStatus(frame.SessionID, types.StatusDisconnected)
		}
	default:
		s.logger.Debug("ignoring host frame", zap.String("type", frame.Type))
	}
}

// HandleClose reacts to transport loss. Explicit disconnects were
// already handled; an unexpected drop starts the bounded reconnect
// loop.
func (s *Supervisor) HandleClose(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.manual {
		return
	}
	if s.state == StateConnecting {
		// The conn died before its dial returned. establishLocked
		// consumes this and rejects the conn instead of going live on
		// a dead transport.
		s.dialLost = true
		s.dialLostErr = err
		return
	}
	if s.state != StateConnected {
		return
	}

	s.logger.Warn("host connection lost", zap.Error(err))
	s.conn = nil
	s.state = StateDisconnected
	s.metrics.SetTransportConnected(false)
	s.markSessionsLocked(types.StatusDisconnected)

	reason := ""
	if err != nil {
		reason = err.Error()
	}
	s.bus.Publish(events.Disconnected{Reason: reason})

	s.retries = 0
	s.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the next reconnect attempt or, once the
// cap is exhausted, emits the terminal reconnectFailed. Caller holds
// s.mu.
func (s *Supervisor) scheduleReconnectLocked() {
	if s.retries >= s.settings.MaxReconnectAttempts {
		s.logger.Error("reconnect attempts exhausted",
			zap.Int("attempts", s.retries),
		)
		s.metrics.RecordReconnectFailure()
		s.bus.Publish(events.ReconnectFailed{Attempts: s.retries})
		return
	}

	s.retries++
	delay := s.backoff(s.retries)
	s.bus.Publish(events.Reconnecting{Attempt: s.retries, Delay: delay})
	s.retryTimer = time.AfterFunc(delay, s.reconnect)
}

// backoff is exponential: base doubles per attempt, capped at
// BackoffMax.
func (s *Supervisor) backoff(attempt int) time.Duration {
	d := s.settings.BackoffBase << (attempt - 1)
	if d > s.settings.BackoffMax || d <= 0 {
		d = s.settings.BackoffMax
	}
	return d
}

func (s *Supervisor) reconnect() {
	s.mu.Lock()
	if s.disposed || s.manual || s.state != StateDisconnected {
		s.mu.Unlock()
		return
	}
	s.state = StateConnecting
	s.dialLost = false
	s.dialLostErr = nil
	attempt := s.retries
	s.mu.Unlock()

	s.metrics.RecordReconnectAttempt()
	s.logger.Info("reconnecting to host", zap.Int("attempt", attempt))

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	conn, err := s.dialer.Dial(ctx, s)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || s.manual {
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		s.logger.Warn("reconnect attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		s.state = StateDisconnected
		s.scheduleReconnectLocked()
		return
	}
	s.establishLocked(conn)
}

// establishLocked finalizes a successful dial: resets retries, fires
// connected, re-starts attached sessions, and flushes queued writes in
// FIFO order. A conn whose loss was already reported while the dial
// was in flight is rejected and the reconnect loop starts instead.
// Caller holds s.mu.
func (s *Supervisor) establishLocked(conn transport.Conn) {
	if s.dialLost {
		s.dialLost = false
		conn.Close()
		s.state = StateDisconnected
		s.markSessionsLocked(types.StatusDisconnected)

		reason := ""
		if s.dialLostErr != nil {
			reason = s.dialLostErr.Error()
		}
		s.dialLostErr = nil
		s.logger.Warn("connection lost during dial", zap.String("reason", reason))
		s.bus.Publish(events.Disconnected{Reason: reason})

		s.retries = 0
		s.scheduleReconnectLocked()
		return
	}

	s.conn = conn
	s.state = StateConnected
	s.retries = 0
	s.stopRetryTimerLocked()
	s.metrics.SetTransportConnected(true)

	s.bus.Publish(events.Connected{})

	for sessionID := range s.attached {
		s.startSessionLocked(sessionID)
	}
	for sessionID, queue := range s.queues {
		for _, data := range queue {
			s.sendFrameLocked(transport.Frame{
				Type:      transport.FrameData,
				SessionID: sessionID,
				Data:      data,
			})
		}
	}
	s.queues = make(map[string][][]byte)
}

// startSessionLocked sends the start frame for a session and marks it
// connected. Caller holds s.mu.
func (s *Supervisor) startSessionLocked(sessionID string) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		delete(s.attached, sessionID)
		delete(s.queues, sessionID)
		return
	}

	err := s.sendFrameLocked(transport.Frame{
		Type:       transport.FrameStart,
		SessionID:  sessionID,
		Command:    sess.Profile.Command,
		Args:       sess.Profile.Args,
		Env:        sess.Profile.Env,
		WorkingDir: sess.Profile.WorkingDir,
	})
	if err != nil {
		s.logger.Warn("failed to start session on host",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}
	s.sessions.SetStatus(sessionID, types.StatusConnected)
}

func (s *Supervisor) enqueueLocked(sessionID string, data []byte) {
	queue := s.queues[sessionID]
	if len(queue) >= s.settings.QueueDepth {
		queue = queue[1:]
		s.metrics.RecordDroppedWrite()
		s.logger.Warn("write queue full, dropping oldest entry",
			zap.String("session_id", sessionID),
		)
	}
	s.queues[sessionID] = append(queue, data)
}

func (s *Supervisor) sendFrameLocked(frame transport.Frame) error {
	data, err := frame.Encode()
	if err != nil {
		return err
	}
	if err := s.conn.Send(data); err != nil {
		s.logger.Warn("transport send failed",
			zap.String("frame", frame.Type),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *Supervisor) markSessionsLocked(status types.SessionStatus) {
	for sessionID := range s.attached {
		s.sessions.SetStatus(sessionID, status)
	}
}

func (s *Supervisor) stopRetryTimerLocked() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
}
