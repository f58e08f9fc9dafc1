package model

import "time"

// ChatMode selects how the session talks to its peer.
type ChatMode string

const (
	ChatModeWeb   ChatMode = "web"
	ChatModeVideo ChatMode = "video"
)

// Valid reports whether m is a known chat mode.
func (m ChatMode) Valid() bool { return m == ChatModeWeb || m == ChatModeVideo }

// Session is the ephemeral per-connection binding of one authenticated
// identity to its role and current conversational peer.  Sessions are never
// persisted.
type Session struct {
	ID       string    `json:"id"`
	Identity string    `json:"identity"`
	Role     Role      `json:"role"`
	ChatPeer string    `json:"chat_peer,omitempty"`
	ChatMode ChatMode  `json:"chat_mode"`
	BoundAt  time.Time `json:"bound_at"`
}
