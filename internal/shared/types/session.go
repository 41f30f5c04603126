package types

import "time"

// SessionStatus tracks a session's attachment to the host transport.
type SessionStatus string

const (
	StatusConnecting   SessionStatus = "connecting"
	StatusConnected    SessionStatus = "connected"
	StatusDisconnected SessionStatus = "disconnected"
)

// SplitDirection is the orientation of a split relative to its parent.
type SplitDirection string

const (
	SplitHorizontal SplitDirection = "horizontal"
	SplitVertical   SplitDirection = "vertical"
)

// Session is one interactive terminal instance. Profile and Theme are
// resolved by name at creation time and embedded by value, so removing
// either from its registry never leaves a running session dangling.
type Session struct {
	ID             string          `json:"id"`
	Profile        Profile         `json:"profile"`
	Theme          Theme           `json:"theme"`
	Status         SessionStatus   `json:"status"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	LastActive     time.Time       `json:"last_active"`
	ParentID       *string         `json:"parent_id,omitempty"`
	SplitDirection *SplitDirection `json:"split_direction,omitempty"`
}

// CreateOptions configures a new session. Empty Profile/Theme names
// resolve to "default".
type CreateOptions struct {
	Profile    string `json:"profile,omitempty"`
	Theme      string `json:"theme,omitempty"`
	WorkingDir string `json:"working_dir,omitempty"`
	Cols       int    `json:"cols,omitempty"`
	Rows       int    `json:"rows,omitempty"`
}

// SplitViewConfig groups sessions into a layout with relative sizes.
// Its lifecycle is independent of the member sessions; stale ids are
// pruned by the caller.
type SplitViewConfig struct {
	ID          string         `json:"id"`
	Orientation SplitDirection `json:"orientation"`
	SessionIDs  []string       `json:"session_ids"`
	Ratios      []float64      `json:"ratios"`
}
