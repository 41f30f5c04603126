package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glyphide/termcore/internal/domain/profile"
	"github.com/glyphide/termcore/internal/domain/theme"
	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/shared/id"
	"github.com/glyphide/termcore/internal/shared/types"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrThemeNotFound   = errors.New("theme not found")
	ErrSessionNotFound = errors.New("session not found")
)

// ProfileResolver resolves profile names at session creation.
type ProfileResolver interface {
	Get(name string) (types.Profile, bool)
}

// ThemeResolver resolves theme names at session creation.
type ThemeResolver interface {
	Get(name string) (types.Theme, bool)
}

// Registry owns all live session records. Mutations are serialized
// through one mutex and events are published inside the critical
// section, so observers see them in operation order. Event handlers
// must not call back into mutating registry operations.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*types.Session
	activeID string
	splits   map[string]types.SplitViewConfig
	profiles ProfileResolver
	themes   ThemeResolver
	bus      *events.Bus
	logger   *zap.Logger
}

// NewRegistry creates a session registry backed by the given resolvers.
func NewRegistry(profiles ProfileResolver, themes ThemeResolver, bus *events.Bus, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*types.Session),
		splits:   make(map[string]types.SplitViewConfig),
		profiles: profiles,
		themes:   themes,
		bus:      bus,
		logger:   logger,
	}
}

// Create materializes a new session from the given options. Profile
// and theme names are hard preconditions: an unresolved name fails
// with ErrProfileNotFound/ErrThemeNotFound and no partial session is
// stored.
func (r *Registry) Create(opts types.CreateOptions) (types.Session, error) {
	profileName := opts.Profile
	if profileName == "" {
		profileName = profile.DefaultName
	}
	themeName := opts.Theme
	if themeName == "" {
		themeName = theme.DefaultName
	}

	p, ok := r.profiles.Get(profileName)
	if !ok {
		return types.Session{}, fmt.Errorf("%w: %s", ErrProfileNotFound, profileName)
	}
	t, ok := r.themes.Get(themeName)
	if !ok {
		return types.Session{}, fmt.Errorf("%w: %s", ErrThemeNotFound, themeName)
	}

	if opts.WorkingDir != "" {
		p.WorkingDir = opts.WorkingDir
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.storeLocked(p, t, nil, nil), nil
}

// CreateSplit creates a new session as a split of an existing one. The
// child inherits the parent's embedded profile and theme values, not
// the registry's current ones, and the relationship is recorded for
// layout purposes only.
func (r *Registry) CreateSplit(parentID string, direction types.SplitDirection) (types.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.sessions[parentID]
	if !ok {
		return types.Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, parentID)
	}

	child := r.storeLocked(parent.Profile, parent.Theme, &parentID, &direction)

	cfg := types.SplitViewConfig{
		ID:          id.NewSplitID().String(),
		Orientation: direction,
		SessionIDs:  []string{parentID, child.ID},
		Ratios:      []float64{0.5, 0.5},
	}
	r.splits[cfg.ID] = cfg
	r.bus.Publish(events.SplitViewUpdated{Config: cfg})

	return child, nil
}

// storeLocked assigns a fresh id, stores the record, and emits
// sessionCreated. Caller holds r.mu.
func (r *Registry) storeLocked(p types.Profile, t types.Theme, parentID *string, direction *types.SplitDirection) types.Session {
	now := time.Now()
	s := &types.Session{
		ID:             id.NewSessionID().String(),
		Profile:        p,
		Theme:          t,
		Status:         types.StatusConnecting,
		CreatedAt:      now,
		LastActive:     now,
		ParentID:       parentID,
		SplitDirection: direction,
	}
	r.sessions[s.ID] = s
	r.bus.Publish(events.SessionCreated{Session: *s})
	return *s
}

// Remove deletes a session. An active session is deactivated first,
// then deleted, then sessionRemoved fires.
func (r *Registry) Remove(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	if r.activeID == sessionID {
		s.IsActive = false
		r.activeID = ""
		r.bus.Publish(events.SessionDeactivated{Session: *s})
	}

	delete(r.sessions, sessionID)
	r.bus.Publish(events.SessionRemoved{SessionID: sessionID})
	return nil
}

// Activate makes a session the single active one. Any previously
// active session is deactivated in the same atomic step; observers see
// exactly one sessionDeactivated followed by one sessionActivated.
// Activating the already-active session is idempotent and emits
// nothing.
func (r *Registry) Activate(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if r.activeID == sessionID {
		return nil
	}

	if prev, ok := r.sessions[r.activeID]; ok {
		prev.IsActive = false
		r.bus.Publish(events.SessionDeactivated{Session: *prev})
	}

	s.IsActive = true
	s.LastActive = time.Now()
	r.activeID = sessionID
	r.bus.Publish(events.SessionActivated{Session: *s})
	return nil
}

// Deactivate clears a session's active flag. A session that is not
// currently active is a no-op and emits nothing.
func (r *Registry) Deactivate(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if r.activeID != sessionID {
		return nil
	}

	s.IsActive = false
	r.activeID = ""
	r.bus.Publish(events.SessionDeactivated{Session: *s})
	return nil
}

// Get returns a copy of the session record.
func (r *Registry) Get(sessionID string) (types.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return types.Session{}, false
	}
	return *s, true
}

// ListAll returns copies of every live session record.
func (r *Registry) ListAll() []types.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}

// GetActive returns the active session, if one exists.
func (r *Registry) GetActive() (types.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[r.activeID]
	if !ok {
		return types.Session{}, false
	}
	return *s, true
}

// SetStatus records a session's transport attachment state. Unknown
// ids are ignored; the supervisor may report on sessions that were
// removed while a frame was in flight.
func (r *Registry) SetStatus(sessionID string, status types.SessionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.Status = status
	}
}

// Touch updates a session's lastActive timestamp.
func (r *Registry) Touch(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.LastActive = time.Now()
	}
}

// UpdateSplitView upserts a layout group and emits splitViewUpdated.
func (r *Registry) UpdateSplitView(cfg types.SplitViewConfig) types.SplitViewConfig {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg.ID == "" {
		cfg.ID = id.NewSplitID().String()
	}
	r.splits[cfg.ID] = cfg
	r.bus.Publish(events.SplitViewUpdated{Config: cfg})
	return cfg
}

// RemoveSplitView deletes a layout group and emits splitViewRemoved.
// Unknown ids are a no-op.
func (r *Registry) RemoveSplitView(configID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.splits[configID]; !ok {
		return
	}
	delete(r.splits, configID)
	r.bus.Publish(events.SplitViewRemoved{ConfigID: configID})
}

// SplitViews returns all layout groups.
func (r *Registry) SplitViews() []types.SplitViewConfig {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.SplitViewConfig, 0, len(r.splits))
	for _, cfg := range r.splits {
		out = append(out, cfg)
	}
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
