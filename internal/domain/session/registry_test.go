package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphide/termcore/internal/domain/profile"
	"github.com/glyphide/termcore/internal/domain/theme"
	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/shared/types"
)

func newTestRegistry(t *testing.T) (*Registry, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	profiles := profile.NewRegistry(bus, nil)
	themes := theme.NewRegistry(bus, nil)
	return NewRegistry(profiles, themes, bus, nil), bus
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	r, _ := newTestRegistry(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := r.Create(types.CreateOptions{})
		require.NoError(t, err)
		assert.False(t, seen[s.ID], "duplicate session id %s", s.ID)
		seen[s.ID] = true
	}
	assert.Equal(t, 50, r.Count())
}

func TestCreateResolvesDefaults(t *testing.T) {
	r, _ := newTestRegistry(t)

	s, err := r.Create(types.CreateOptions{})
	require.NoError(t, err)

	assert.Equal(t, profile.DefaultName, s.Profile.Name)
	assert.Equal(t, theme.DefaultName, s.Theme.Name)
	assert.Equal(t, types.StatusConnecting, s.Status)
	assert.False(t, s.IsActive, "new sessions start inactive")
}

func TestCreateUnknownProfileFails(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Create(types.CreateOptions{Profile: "no-such-profile"})
	require.ErrorIs(t, err, ErrProfileNotFound)
	assert.Equal(t, 0, r.Count(), "failed create must not store a partial session")

	_, err = r.Create(types.CreateOptions{Theme: "no-such-theme"})
	require.ErrorIs(t, err, ErrThemeNotFound)
	assert.Equal(t, 0, r.Count())
}

func TestCreateWorkingDirOverride(t *testing.T) {
	r, _ := newTestRegistry(t)

	s, err := r.Create(types.CreateOptions{WorkingDir: "/tmp"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp", s.Profile.WorkingDir)
}

func TestEmbeddedProfileSurvivesRemoval(t *testing.T) {
	bus := events.NewBus()
	profiles := profile.NewRegistry(bus, nil)
	themes := theme.NewRegistry(bus, nil)
	r := NewRegistry(profiles, themes, bus, nil)

	profiles.Add(types.Profile{Name: "zsh", Command: "/bin/zsh"})
	s, err := r.Create(types.CreateOptions{Profile: "zsh"})
	require.NoError(t, err)

	profiles.Remove("zsh")

	got, ok := r.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, "/bin/zsh", got.Profile.Command, "session keeps embedded profile copy")
}

func TestSingleActiveHandover(t *testing.T) {
	r, bus := newTestRegistry(t)

	a, err := r.Create(types.CreateOptions{})
	require.NoError(t, err)
	b, err := r.Create(types.CreateOptions{})
	require.NoError(t, err)

	require.NoError(t, r.Activate(a.ID))

	var kinds []events.Type
	var ids []string
	bus.Subscribe(func(e events.Event) {
		kinds = append(kinds, e.Kind())
		switch ev := e.(type) {
		case events.SessionDeactivated:
			ids = append(ids, ev.Session.ID)
		case events.SessionActivated:
			ids = append(ids, ev.Session.ID)
		}
	})

	require.NoError(t, r.Activate(b.ID))

	// Exactly one deactivation of the previous session, then one
	// activation of the new one.
	assert.Equal(t, []events.Type{events.TypeSessionDeactivated, events.TypeSessionActivated}, kinds)
	assert.Equal(t, []string{a.ID, b.ID}, ids)

	active, ok := r.GetActive()
	require.True(t, ok)
	assert.Equal(t, b.ID, active.ID)

	got, _ := r.Get(a.ID)
	assert.False(t, got.IsActive)
}

func TestActivateIdempotent(t *testing.T) {
	r, bus := newTestRegistry(t)

	s, err := r.Create(types.CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, r.Activate(s.ID))

	count := 0
	bus.Subscribe(func(events.Event) { count++ })

	require.NoError(t, r.Activate(s.ID))
	assert.Equal(t, 0, count, "re-activating the active session emits nothing")
}

func TestActivateUnknownSession(t *testing.T) {
	r, _ := newTestRegistry(t)
	err := r.Activate("sess_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeactivateNonActiveIsNoOp(t *testing.T) {
	r, bus := newTestRegistry(t)

	a, _ := r.Create(types.CreateOptions{})
	b, _ := r.Create(types.CreateOptions{})
	require.NoError(t, r.Activate(a.ID))

	count := 0
	bus.Subscribe(func(events.Event) { count++ })

	require.NoError(t, r.Deactivate(b.ID))
	assert.Equal(t, 0, count)

	active, ok := r.GetActive()
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID, "active session untouched")
}

func TestRemoveActiveDeactivatesFirst(t *testing.T) {
	r, bus := newTestRegistry(t)

	s, _ := r.Create(types.CreateOptions{})
	require.NoError(t, r.Activate(s.ID))

	var kinds []events.Type
	bus.Subscribe(func(e events.Event) { kinds = append(kinds, e.Kind()) })

	require.NoError(t, r.Remove(s.ID))

	assert.Equal(t, []events.Type{events.TypeSessionDeactivated, events.TypeSessionRemoved}, kinds)
	_, ok := r.GetActive()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestRemoveUnknownSession(t *testing.T) {
	r, _ := newTestRegistry(t)
	err := r.Remove("sess_missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestCreateSplitInheritsParent(t *testing.T) {
	bus := events.NewBus()
	profiles := profile.NewRegistry(bus, nil)
	themes := theme.NewRegistry(bus, nil)
	r := NewRegistry(profiles, themes, bus, nil)

	profiles.Add(types.Profile{Name: "fish", Command: "/usr/bin/fish"})
	parent, err := r.Create(types.CreateOptions{Profile: "fish"})
	require.NoError(t, err)

	// Change the registry after the parent was created; the child must
	// inherit the parent's embedded values, not the current ones.
	profiles.Add(types.Profile{Name: "fish", Command: "/opt/fish"})

	child, err := r.CreateSplit(parent.ID, types.SplitVertical)
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/fish", child.Profile.Command)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)
	require.NotNil(t, child.SplitDirection)
	assert.Equal(t, types.SplitVertical, *child.SplitDirection)

	views := r.SplitViews()
	require.Len(t, views, 1)
	assert.Equal(t, []string{parent.ID, child.ID}, views[0].SessionIDs)
	assert.Equal(t, []float64{0.5, 0.5}, views[0].Ratios)
	assert.Equal(t, types.SplitVertical, views[0].Orientation)
}

func TestCreateSplitUnknownParent(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.CreateSplit("sess_missing", types.SplitHorizontal)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSplitViewLifecycle(t *testing.T) {
	r, bus := newTestRegistry(t)

	var kinds []events.Type
	bus.Subscribe(func(e events.Event) { kinds = append(kinds, e.Kind()) })

	cfg := r.UpdateSplitView(types.SplitViewConfig{
		Orientation: types.SplitHorizontal,
		SessionIDs:  []string{"sess_a", "sess_b"},
		Ratios:      []float64{0.7, 0.3},
	})
	require.NotEmpty(t, cfg.ID)

	r.RemoveSplitView(cfg.ID)
	assert.Empty(t, r.SplitViews())

	// Removing again is silent.
	r.RemoveSplitView(cfg.ID)

	assert.Equal(t, []events.Type{events.TypeSplitViewUpdated, events.TypeSplitViewRemoved}, kinds)
}

func TestSetStatusAndTouchIgnoreUnknown(t *testing.T) {
	r, _ := newTestRegistry(t)

	s, _ := r.Create(types.CreateOptions{})

	r.SetStatus(s.ID, types.StatusConnected)
	r.SetStatus("sess_missing", types.StatusConnected)
	r.Touch("sess_missing")

	got, _ := r.Get(s.ID)
	assert.Equal(t, types.StatusConnected, got.Status)
}
