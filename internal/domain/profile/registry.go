package profile

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/shared/types"
)

// DefaultName is the profile every installation ships with. It always
// exists and cannot be removed.
const DefaultName = "default"

// Registry holds named shell-launch templates.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]types.Profile
	bus      *events.Bus
	logger   *zap.Logger
}

// NewRegistry creates a registry pre-seeded with the default profile.
func NewRegistry(bus *events.Bus, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		profiles: make(map[string]types.Profile),
		bus:      bus,
		logger:   logger,
	}
	r.profiles[DefaultName] = defaultProfile()
	return r
}

// Add upserts a profile by name and emits profileAdded.
func (r *Registry) Add(p types.Profile) {
	if p.Name == "" {
		r.logger.Warn("ignoring profile with empty name")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[p.Name] = p
	r.bus.Publish(events.ProfileAdded{Profile: p})
}

// Get returns the stored profile by name.
func (r *Registry) Get(name string) (types.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[name]
	return p, ok
}

// Remove deletes a profile and emits profileRemoved. Removing a
// nonexistent name is a no-op, and the default profile is never
// removed. Sessions that already resolved the profile keep their
// embedded copy.
func (r *Registry) Remove(name string) {
	if name == DefaultName {
		r.logger.Warn("refusing to remove default profile")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[name]; !ok {
		return
	}
	delete(r.profiles, name)
	r.bus.Publish(events.ProfileRemoved{Name: name})
}

// List returns all registered profiles.
func (r *Registry) List() []types.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out
}

// Reset drops everything except the default profile. Used by dispose.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles = map[string]types.Profile{DefaultName: defaultProfile()}
}

func defaultProfile() types.Profile {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}
	workingDir := os.Getenv("HOME")
	if workingDir == "" {
		workingDir = "/tmp"
	}

	return types.Profile{
		Name:        DefaultName,
		Command:     shell,
		WorkingDir:  workingDir,
		FontFamily:  "JetBrains Mono, monospace",
		FontSize:    13,
		CursorStyle: "block",
		Scrollback:  10000,
	}
}
