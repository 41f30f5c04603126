package theme

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/shared/types"
)

// DefaultName is the palette sessions fall back to.
const DefaultName = "default"

// Registry holds terminal color palettes. Built-in themes and
// user-authored custom themes live in separate namespaces so a custom
// theme can never shadow or delete a built-in.
type Registry struct {
	mu      sync.RWMutex
	builtin map[string]types.Theme
	user    map[string]types.Theme
	custom  map[string]types.CustomTheme
	bus     *events.Bus
	logger  *zap.Logger
}

// NewRegistry creates a registry pre-seeded with the built-in palettes.
func NewRegistry(bus *events.Bus, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		builtin: make(map[string]types.Theme),
		user:    make(map[string]types.Theme),
		custom:  make(map[string]types.CustomTheme),
		bus:     bus,
		logger:  logger,
	}
	for _, t := range builtinThemes() {
		r.builtin[t.Name] = t
	}
	return r
}

// Add upserts a theme by name and emits themeAdded. Names colliding
// with a built-in are refused; built-ins are never shadowed.
func (r *Registry) Add(t types.Theme) {
	if t.Name == "" {
		r.logger.Warn("ignoring theme with empty name")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.builtin[t.Name]; ok {
		r.logger.Warn("refusing to shadow built-in theme", zap.String("name", t.Name))
		return
	}
	r.user[t.Name] = t
	r.bus.Publish(events.ThemeAdded{Theme: t})
}

// AddCustom registers a user-authored palette, assigning an id when
// absent, and emits themeAdded.
func (r *Registry) AddCustom(ct types.CustomTheme) types.CustomTheme {
	if ct.ID == "" {
		ct.ID = uuid.New().String()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.custom[ct.ID] = ct
	r.bus.Publish(events.ThemeAdded{Theme: ct.Theme})
	return ct
}

// Get resolves a theme by name, built-ins first, then user themes,
// then custom themes by name.
func (r *Registry) Get(name string) (types.Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.builtin[name]; ok {
		return t, true
	}
	if t, ok := r.user[name]; ok {
		return t, true
	}
	for _, ct := range r.custom {
		if ct.Name == name {
			return ct.Theme, true
		}
	}
	return types.Theme{}, false
}

// GetCustom returns a custom theme by id.
func (r *Registry) GetCustom(id string) (types.CustomTheme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ct, ok := r.custom[id]
	return ct, ok
}

// Remove deletes a user or custom theme by name and emits
// themeRemoved. Built-ins are never removed; unknown names are a
// no-op. Sessions keep their embedded copy either way.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.builtin[name]; ok {
		r.logger.Warn("refusing to remove built-in theme", zap.String("name", name))
		return
	}

	if _, ok := r.user[name]; ok {
		delete(r.user, name)
		r.bus.Publish(events.ThemeRemoved{Name: name})
		return
	}

	for id, ct := range r.custom {
		if ct.Name == name {
			delete(r.custom, id)
			r.bus.Publish(events.ThemeRemoved{Name: name})
			return
		}
	}
}

// List returns every resolvable theme: built-ins, user themes, and the
// palettes of custom themes.
func (r *Registry) List() []types.Theme {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Theme, 0, len(r.builtin)+len(r.user)+len(r.custom))
	for _, t := range r.builtin {
		out = append(out, t)
	}
	for _, t := range r.user {
		out = append(out, t)
	}
	for _, ct := range r.custom {
		out = append(out, ct.Theme)
	}
	return out
}

// ListCustom returns all user-authored themes with their metadata.
func (r *Registry) ListCustom() []types.CustomTheme {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.CustomTheme, 0, len(r.custom))
	for _, ct := range r.custom {
		out = append(out, ct)
	}
	return out
}

// Reset drops user and custom themes, keeping built-ins. Used by
// dispose.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.user = make(map[string]types.Theme)
	r.custom = make(map[string]types.CustomTheme)
}
