// Package multiplayer pairs SSH sessions into co-op matches and runs the
// authoritative game loop for them.
package multiplayer

import "github.com/vovakirdan/duotris/internal/core"

// PlayerID is an alias to core.PlayerID for convenience.
// Player1 is the host, Player2 the partner who joined.
type PlayerID = core.PlayerID

// Re-export player constants for convenience.
const (
	Player1 = core.Player1
	Player2 = core.Player2
)

// SessionID identifies one SSH connection.
type SessionID string

// MatchID identifies an online match. It is a UUID and becomes the replay
// ID when the match is stored.
type MatchID string

// MatchMode is how a co-op round is played.
type MatchMode int

const (
	// MatchModeSolo is a single-player game on one terminal.
	MatchModeSolo MatchMode = iota

	// MatchModeLocalCoop is two players sharing one keyboard.
	MatchModeLocalCoop

	// MatchModeOnlineCoop is two SSH sessions steering the same board.
	MatchModeOnlineCoop
)

// String returns a human-readable name for the match mode.
func (m MatchMode) String() string {
	switch m {
	case MatchModeSolo:
		return "Solo"
	case MatchModeLocalCoop:
		return "Local co-op"
	case MatchModeOnlineCoop:
		return "Online co-op"
	default:
		return "Unknown"
	}
}
