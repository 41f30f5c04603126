// Package events defines the typed notification contract between the
// terminal core and its consumers (the UI layer and the api surfaces).
//
// Every cross-component notification is a concrete struct implementing
// Event, dispatched through a Bus. The closed set of types gives
// compile-time coverage of the taxonomy instead of a string-keyed
// emitter.
package events

import (
	"time"

	"github.com/glyphide/termcore/internal/shared/types"
)

// Type names an event kind on the wire.
type Type string

const (
	TypeSessionCreated     Type = "session_created"
	TypeSessionRemoved     Type = "session_removed"
	TypeSessionActivated   Type = "session_activated"
	TypeSessionDeactivated Type = "session_deactivated"
	TypeSessionOutput      Type = "session_output"
	TypeProfileAdded       Type = "profile_added"
	TypeProfileRemoved     Type = "profile_removed"
	TypeThemeAdded         Type = "theme_added"
	TypeThemeRemoved       Type = "theme_removed"
	TypeSplitViewUpdated   Type = "split_view_updated"
	TypeSplitViewRemoved   Type = "split_view_removed"
	TypeConnected          Type = "connected"
	TypeDisconnected       Type = "disconnected"
	TypeReconnecting       Type = "reconnecting"
	TypeReconnectFailed    Type = "reconnect_failed"
	TypeError              Type = "error"
	TypeHistoryUpdated     Type = "history_updated"
	TypeHistoryCleared     Type = "history_cleared"
	TypeDisposed           Type = "disposed"
)

// Event is implemented by every notification payload.
type Event interface {
	Kind() Type
}

// SessionCreated carries the freshly created session.
type SessionCreated struct {
	Session types.Session `json:"session"`
}

// SessionRemoved carries the id of the removed session.
type SessionRemoved struct {
	SessionID string `json:"session_id"`
}

// SessionActivated carries the newly active session.
type SessionActivated struct {
	Session types.Session `json:"session"`
}

// SessionDeactivated carries the session that lost activation.
type SessionDeactivated struct {
	Session types.Session `json:"session"`
}

// SessionOutput carries bytes emitted by the process host for one
// session. The rendering widget consumes these opaquely.
type SessionOutput struct {
	SessionID string `json:"session_id"`
	Data      []byte `json:"data"`
}

// ProfileAdded carries the registered profile.
type ProfileAdded struct {
	Profile types.Profile `json:"profile"`
}

// ProfileRemoved carries the removed profile name.
type ProfileRemoved struct {
	Name string `json:"name"`
}

// ThemeAdded carries the registered theme.
type ThemeAdded struct {
	Theme types.Theme `json:"theme"`
}

// ThemeRemoved carries the removed theme name.
type ThemeRemoved struct {
	Name string `json:"name"`
}

// SplitViewUpdated carries the updated layout group.
type SplitViewUpdated struct {
	Config types.SplitViewConfig `json:"config"`
}

// SplitViewRemoved carries the removed layout group id.
type SplitViewRemoved struct {
	ConfigID string `json:"config_id"`
}

// Connected fires when the host transport is established.
type Connected struct{}

// Disconnected fires on transport loss or explicit teardown.
type Disconnected struct {
	Reason string `json:"reason,omitempty"`
}

// Reconnecting fires before each automatic reconnect attempt.
type Reconnecting struct {
	Attempt int           `json:"attempt"`
	Delay   time.Duration `json:"delay"`
}

// ReconnectFailed is terminal: the retry cap was exhausted and no
// further attempts will be made.
type ReconnectFailed struct {
	Attempts int `json:"attempts"`
}

// Error carries an asynchronous failure with no caller to return to.
type Error struct {
	Message string `json:"message"`
}

// HistoryUpdated carries the appended command.
type HistoryUpdated struct {
	SessionID string `json:"session_id"`
	Command   string `json:"command"`
}

// HistoryCleared fires when the history log is emptied.
type HistoryCleared struct{}

// Disposed is the last event an orchestrator ever emits.
type Disposed struct{}

func (SessionCreated) Kind() Type     { return TypeSessionCreated }
func (SessionRemoved) Kind() Type     { return TypeSessionRemoved }
func (SessionActivated) Kind() Type   { return TypeSessionActivated }
func (SessionDeactivated) Kind() Type { return TypeSessionDeactivated }
func (SessionOutput) Kind() Type      { return TypeSessionOutput }
func (ProfileAdded) Kind() Type       { return TypeProfileAdded }
func (ProfileRemoved) Kind() Type     { return TypeProfileRemoved }
func (ThemeAdded) Kind() Type         { return TypeThemeAdded }
func (ThemeRemoved) Kind() Type       { return TypeThemeRemoved }
func (SplitViewUpdated) Kind() Type   { return TypeSplitViewUpdated }
func (SplitViewRemoved) Kind() Type   { return TypeSplitViewRemoved }
func (Connected) Kind() Type          { return TypeConnected }
func (Disconnected) Kind() Type       { return TypeDisconnected }
func (Reconnecting) Kind() Type       { return TypeReconnecting }
func (ReconnectFailed) Kind() Type    { return TypeReconnectFailed }
func (Error) Kind() Type              { return TypeError }
func (HistoryUpdated) Kind() Type     { return TypeHistoryUpdated }
func (HistoryCleared) Kind() Type     { return TypeHistoryCleared }
func (Disposed) Kind() Type           { return TypeDisposed }
