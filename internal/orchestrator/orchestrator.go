package orchestrator

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/glyphide/termcore/internal/domain/history"
	"github.com/glyphide/termcore/internal/domain/profile"
	"github.com/glyphide/termcore/internal/domain/session"
	"github.com/glyphide/termcore/internal/domain/theme"
	"github.com/glyphide/termcore/internal/infrastructure/monitoring"
	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/shared/types"
	"github.com/glyphide/termcore/internal/supervisor"
	"github.com/glyphide/termcore/internal/transport"
)

// ErrNotInitialized guards against use before Initialize. It is a
// programmer error: fail fast, do not retry.
var ErrNotInitialized = errors.New("orchestrator not initialized")

// Options configures a new orchestrator.
type Options struct {
	// Dialer connects to the process host. Nil means no transport is
	// configured and writes fail with transport.ErrNotConfigured.
	Dialer transport.Dialer

	// HistoryCap bounds the command history; zero means the default.
	HistoryCap int

	Reconnect supervisor.Settings
	Logger    *zap.Logger
	Metrics   *monitoring.Metrics
}

// Orchestrator owns the whole terminal subsystem.
type Orchestrator struct {
	mu          sync.Mutex
	initialized bool
	disposed    bool

	bus        *events.Bus
	profiles   *profile.Registry
	themes     *theme.Registry
	sessions   *session.Registry
	history    *history.Log
	supervisor *supervisor.Supervisor

	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// New wires the registries, history, and supervisor together around a
// shared event bus.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bus := events.NewBus()
	profiles := profile.NewRegistry(bus, logger)
	themes := theme.NewRegistry(bus, logger)
	sessions := session.NewRegistry(profiles, themes, bus, logger)
	sup := supervisor.New(opts.Dialer, sessions, bus, opts.Reconnect, logger).
		WithMetrics(opts.Metrics)

	return &Orchestrator{
		bus:        bus,
		profiles:   profiles,
		themes:     themes,
		sessions:   sessions,
		history:    history.NewLog(opts.HistoryCap, bus),
		supervisor: sup,
		logger:     logger,
		metrics:    opts.Metrics,
	}
}

// Initialize makes the orchestrator usable and, when a transport is
// configured, opens the host connection. A connect failure is reported
// through the event stream, not returned: the session registry is
// usable offline and the connection can be retried with Connect.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return ErrNotInitialized
	}
	if o.initialized {
		o.mu.Unlock()
		return nil
	}
	o.initialized = true
	o.mu.Unlock()

	if err := o.supervisor.Connect(ctx); err != nil && !errors.Is(err, transport.ErrNotConfigured) {
		o.logger.Warn("initial host connection failed", zap.Error(err))
		o.bus.Publish(events.Error{Message: err.Error()})
	}
	return nil
}

func (o *Orchestrator) ready() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.initialized || o.disposed {
		return ErrNotInitialized
	}
	return nil
}

// Subscribe attaches a handler to the orchestrator's event stream and
// returns its unsubscribe function.
func (o *Orchestrator) Subscribe(h events.Handler) func() {
	return o.bus.Subscribe(h)
}

// CreateSession materializes a session and attaches it to the host
// transport, queueing the attach if disconnected.
func (o *Orchestrator) CreateSession(opts types.CreateOptions) (types.Session, error) {
	if err := o.ready(); err != nil {
		return types.Session{}, err
	}

	s, err := o.sessions.Create(opts)
	if err != nil {
		return types.Session{}, err
	}
	o.metrics.RecordSessionCreated()
	o.supervisor.Attach(s.ID)
	return s, nil
}

// CreateSplit creates a session as a split of an existing one and
// attaches it like any other session.
func (o *Orchestrator) CreateSplit(parentID string, direction types.SplitDirection) (types.Session, error) {
	if err := o.ready(); err != nil {
		return types.Session{}, err
	}

	s, err := o.sessions.CreateSplit(parentID, direction)
	if err != nil {
		return types.Session{}, err
	}
	o.metrics.RecordSessionCreated()
	o.supervisor.Attach(s.ID)
	return s, nil
}

// RemoveSession detaches and deletes a session.
func (o *Orchestrator) RemoveSession(sessionID string) error {
	if err := o.ready(); err != nil {
		return err
	}

	o.supervisor.Detach(sessionID)
	if err := o.sessions.Remove(sessionID); err != nil {
		return err
	}
	o.metrics.RecordSessionRemoved()
	return nil
}

// ActivateSession makes a session the single active one.
func (o *Orchestrator) ActivateSession(sessionID string) error {
	if err := o.ready(); err != nil {
		return err
	}
	return o.sessions.Activate(sessionID)
}

// DeactivateSession clears a session's active flag.
func (o *Orchestrator) DeactivateSession(sessionID string) error {
	if err := o.ready(); err != nil {
		return err
	}
	return o.sessions.Deactivate(sessionID)
}

// GetSession returns a session by id.
func (o *Orchestrator) GetSession(sessionID string) (types.Session, bool) {
	if err := o.ready(); err != nil {
		return types.Session{}, false
	}
	return o.sessions.Get(sessionID)
}

// ListSessions returns all live sessions.
func (o *Orchestrator) ListSessions() []types.Session {
	if err := o.ready(); err != nil {
		return nil
	}
	return o.sessions.ListAll()
}

// ActiveSession returns the active session, if any.
func (o *Orchestrator) ActiveSession() (types.Session, bool) {
	if err := o.ready(); err != nil {
		return types.Session{}, false
	}
	return o.sessions.GetActive()
}

// Write sends input bytes to a session and refreshes its lastActive
// timestamp. Bytes are queued while disconnected.
func (o *Orchestrator) Write(sessionID string, data []byte) error {
	if err := o.ready(); err != nil {
		return err
	}

	if err := o.supervisor.Write(sessionID, data); err != nil {
		return err
	}
	o.sessions.Touch(sessionID)
	return nil
}

// Resize forwards new terminal dimensions for a session.
func (o *Orchestrator) Resize(sessionID string, cols, rows int) error {
	if err := o.ready(); err != nil {
		return err
	}
	o.supervisor.Resize(sessionID, cols, rows)
	return nil
}

// Connect opens the host connection. Idempotent while connecting or
// connected.
func (o *Orchestrator) Connect(ctx context.Context) error {
	if err := o.ready(); err != nil {
		return err
	}
	return o.supervisor.Connect(ctx)
}

// Disconnect tears the host connection down without automatic
// reconnection.
func (o *Orchestrator) Disconnect() error {
	if err := o.ready(); err != nil {
		return err
	}
	o.supervisor.Disconnect()
	return nil
}

// ConnectionState reports the supervisor's connection state.
func (o *Orchestrator) ConnectionState() supervisor.ConnState {
	return o.supervisor.State()
}

// AddProfile registers a shell-launch template.
func (o *Orchestrator) AddProfile(p types.Profile) error {
	if err := o.ready(); err != nil {
		return err
	}
	o.profiles.Add(p)
	return nil
}

// RemoveProfile deletes a profile; running sessions keep their copy.
func (o *Orchestrator) RemoveProfile(name string) error {
	if err := o.ready(); err != nil {
		return err
	}
	o.profiles.Remove(name)
	return nil
}

// GetProfile returns a profile by name.
func (o *Orchestrator) GetProfile(name string) (types.Profile, bool) {
	if err := o.ready(); err != nil {
		return types.Profile{}, false
	}
	return o.profiles.Get(name)
}

// ListProfiles returns all registered profiles.
func (o *Orchestrator) ListProfiles() []types.Profile {
	if err := o.ready(); err != nil {
		return nil
	}
	return o.profiles.List()
}

// AddTheme registers a palette.
func (o *Orchestrator) AddTheme(t types.Theme) error {
	if err := o.ready(); err != nil {
		return err
	}
	o.themes.Add(t)
	return nil
}

// AddCustomTheme registers a user-authored palette.
func (o *Orchestrator) AddCustomTheme(ct types.CustomTheme) (types.CustomTheme, error) {
	if err := o.ready(); err != nil {
		return types.CustomTheme{}, err
	}
	return o.themes.AddCustom(ct), nil
}

// RemoveTheme deletes a non-built-in theme.
func (o *Orchestrator) RemoveTheme(name string) error {
	if err := o.ready(); err != nil {
		return err
	}
	o.themes.Remove(name)
	return nil
}

// GetTheme returns a theme by name.
func (o *Orchestrator) GetTheme(name string) (types.Theme, bool) {
	if err := o.ready(); err != nil {
		return types.Theme{}, false
	}
	return o.themes.Get(name)
}

// ListThemes returns every resolvable theme.
func (o *Orchestrator) ListThemes() []types.Theme {
	if err := o.ready(); err != nil {
		return nil
	}
	return o.themes.List()
}

// ListCustomThemes returns all user-authored themes.
func (o *Orchestrator) ListCustomThemes() []types.CustomTheme {
	if err := o.ready(); err != nil {
		return nil
	}
	return o.themes.ListCustom()
}

// UpdateSplitView upserts a layout group.
func (o *Orchestrator) UpdateSplitView(cfg types.SplitViewConfig) (types.SplitViewConfig, error) {
	if err := o.ready(); err != nil {
		return types.SplitViewConfig{}, err
	}
	return o.sessions.UpdateSplitView(cfg), nil
}

// RemoveSplitView deletes a layout group.
func (o *Orchestrator) RemoveSplitView(configID string) error {
	if err := o.ready(); err != nil {
		return err
	}
	o.sessions.RemoveSplitView(configID)
	return nil
}

// SplitViews returns all layout groups.
func (o *Orchestrator) SplitViews() []types.SplitViewConfig {
	if err := o.ready(); err != nil {
		return nil
	}
	return o.sessions.SplitViews()
}

// AppendHistory records an executed command.
func (o *Orchestrator) AppendHistory(sessionID, command string) error {
	if err := o.ready(); err != nil {
		return err
	}
	o.history.Append(sessionID, command)
	return nil
}

// History returns the command log, oldest first.
func (o *Orchestrator) History() []history.Entry {
	if err := o.ready(); err != nil {
		return nil
	}
	return o.history.List()
}

// ClearHistory empties the command log.
func (o *Orchestrator) ClearHistory() error {
	if err := o.ready(); err != nil {
		return err
	}
	o.history.Clear()
	return nil
}

// Dispose removes every session with its removal side effects, resets
// the registries, closes the transport, and emits disposed as the
// final event. It is idempotent; the second call is a no-op.
func (o *Orchestrator) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	o.mu.Unlock()

	for _, s := range o.sessions.ListAll() {
		o.supervisor.Detach(s.ID)
		if err := o.sessions.Remove(s.ID); err == nil {
			o.metrics.RecordSessionRemoved()
		}
	}

	o.history.Clear()
	o.profiles.Reset()
	o.themes.Reset()
	o.supervisor.Dispose()

	o.bus.Publish(events.Disposed{})
	o.bus.Close()

	o.logger.Info("orchestrator disposed")
}
