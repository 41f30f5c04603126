package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glyphide/termcore/internal/domain/session"
	"github.com/glyphide/termcore/internal/shared/events"
	"github.com/glyphide/termcore/internal/shared/types"
	"github.com/glyphide/termcore/internal/transport"
)

// memConn and memDialer stand in for the host transport.
type memConn struct {
	mu     sync.Mutex
	frames []transport.Frame
}

func (c *memConn) Send(data []byte) error {
	frame, err := transport.DecodeFrame(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.frames = append(c.frames, frame)
	c.mu.Unlock()
	return nil
}

func (c *memConn) Close() error { return nil }

func (c *memConn) sent() []transport.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]transport.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

type memDialer struct {
	mu   sync.Mutex
	conn *memConn
	err  error
}

func (d *memDialer) Dial(context.Context, transport.Handler) (transport.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	d.conn = &memConn{}
	return d.conn, nil
}

func newInitialized(t *testing.T) (*Orchestrator, *memDialer) {
	t.Helper()
	dialer := &memDialer{}
	o := New(Options{Dialer: dialer})
	require.NoError(t, o.Initialize(context.Background()))
	return o, dialer
}

func TestGuardBeforeInitialize(t *testing.T) {
	o := New(Options{})

	_, err := o.CreateSession(types.CreateOptions{})
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, o.Write("sess_1", []byte("x")), ErrNotInitialized)
	assert.ErrorIs(t, o.ActivateSession("sess_1"), ErrNotInitialized)
	assert.ErrorIs(t, o.AddProfile(types.Profile{Name: "p"}), ErrNotInitialized)
	assert.ErrorIs(t, o.AppendHistory("sess_1", "ls"), ErrNotInitialized)
	assert.Nil(t, o.ListSessions())
}

func TestInitializeIdempotent(t *testing.T) {
	o, _ := newInitialized(t)
	require.NoError(t, o.Initialize(context.Background()))
}

func TestInitializeWithoutDialer(t *testing.T) {
	o := New(Options{})
	require.NoError(t, o.Initialize(context.Background()))

	// Registry operations work offline.
	s, err := o.CreateSession(types.CreateOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	// Send paths report the missing transport.
	err = o.Write(s.ID, []byte("ls\n"))
	assert.ErrorIs(t, err, transport.ErrNotConfigured)
}

func TestInitializeReportsDialFailureAsEvent(t *testing.T) {
	dialer := &memDialer{err: errors.New("host unreachable")}
	o := New(Options{Dialer: dialer})

	var errEvents int
	o.Subscribe(func(e events.Event) {
		if e.Kind() == events.TypeError {
			errEvents++
		}
	})

	require.NoError(t, o.Initialize(context.Background()), "dial failure must not fail initialization")
	assert.Equal(t, 1, errEvents)
}

func TestCreateSessionAttachesToHost(t *testing.T) {
	o, dialer := newInitialized(t)

	s, err := o.CreateSession(types.CreateOptions{})
	require.NoError(t, err)

	frames := dialer.conn.sent()
	require.Len(t, frames, 1)
	assert.Equal(t, transport.FrameStart, frames[0].Type)
	assert.Equal(t, s.ID, frames[0].SessionID)

	got, ok := o.GetSession(s.ID)
	require.True(t, ok)
	assert.Equal(t, types.StatusConnected, got.Status)
}

func TestWriteRoutesAndTouches(t *testing.T) {
	o, dialer := newInitialized(t)

	s, err := o.CreateSession(types.CreateOptions{})
	require.NoError(t, err)

	before, _ := o.GetSession(s.ID)
	require.NoError(t, o.Write(s.ID, []byte("ls\n")))

	frames := dialer.conn.sent()
	last := frames[len(frames)-1]
	assert.Equal(t, transport.FrameData, last.Type)
	assert.Equal(t, []byte("ls\n"), last.Data)

	after, _ := o.GetSession(s.ID)
	assert.False(t, after.LastActive.Before(before.LastActive))
}

func TestResizeGoesOverTheSameChannel(t *testing.T) {
	o, dialer := newInitialized(t)

	s, err := o.CreateSession(types.CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, o.Resize(s.ID, 132, 50))

	frames := dialer.conn.sent()
	last := frames[len(frames)-1]
	assert.Equal(t, transport.FrameResize, last.Type)
	assert.Equal(t, 132, last.Cols)
	assert.Equal(t, 50, last.Rows)
}

func TestRemoveSessionDetaches(t *testing.T) {
	o, dialer := newInitialized(t)

	s, err := o.CreateSession(types.CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, o.RemoveSession(s.ID))

	frames := dialer.conn.sent()
	assert.Equal(t, transport.FrameClose, frames[len(frames)-1].Type)
	assert.Empty(t, o.ListSessions())

	err = o.RemoveSession(s.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSplitLifecycle(t *testing.T) {
	o, _ := newInitialized(t)

	parent, err := o.CreateSession(types.CreateOptions{})
	require.NoError(t, err)

	child, err := o.CreateSplit(parent.ID, types.SplitHorizontal)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, parent.ID, *child.ParentID)

	views := o.SplitViews()
	require.Len(t, views, 1)

	require.NoError(t, o.RemoveSplitView(views[0].ID))
	assert.Empty(t, o.SplitViews())
}

func TestActiveSessionTracking(t *testing.T) {
	o, _ := newInitialized(t)

	a, _ := o.CreateSession(types.CreateOptions{})
	b, _ := o.CreateSession(types.CreateOptions{})

	_, ok := o.ActiveSession()
	assert.False(t, ok, "no session is active until one is activated")

	require.NoError(t, o.ActivateSession(a.ID))
	require.NoError(t, o.ActivateSession(b.ID))

	active, ok := o.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, b.ID, active.ID)
}

func TestHistoryRoundTrip(t *testing.T) {
	o, _ := newInitialized(t)

	require.NoError(t, o.AppendHistory("sess_1", "ls"))
	require.NoError(t, o.AppendHistory("sess_1", "pwd"))

	entries := o.History()
	require.Len(t, entries, 2)
	assert.Equal(t, "ls", entries[0].Command)

	require.NoError(t, o.ClearHistory())
	assert.Empty(t, o.History())
}

func TestDisposeIsIdempotentAndSilencesEvents(t *testing.T) {
	o, _ := newInitialized(t)

	s, err := o.CreateSession(types.CreateOptions{})
	require.NoError(t, err)
	require.NoError(t, o.AppendHistory(s.ID, "ls"))

	var mu sync.Mutex
	var kinds []events.Type
	o.Subscribe(func(e events.Event) {
		mu.Lock()
		kinds = append(kinds, e.Kind())
		mu.Unlock()
	})

	o.Dispose()
	o.Dispose()

	mu.Lock()
	require.NotEmpty(t, kinds)
	assert.Equal(t, events.TypeDisposed, kinds[len(kinds)-1], "disposed is the final event")
	seen := len(kinds)
	mu.Unlock()

	// The facade is unusable and the bus is closed.
	_, err = o.CreateSession(types.CreateOptions{})
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Empty(t, o.ListSessions())

	mu.Lock()
	assert.Equal(t, seen, len(kinds), "no events after disposed")
	mu.Unlock()
}
