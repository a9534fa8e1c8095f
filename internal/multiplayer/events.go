package multiplayer

import "github.com/vovakirdan/duotris/internal/core"

// SessionEvent is sent by the coordinator or a match to one session.
type SessionEvent interface {
	sessionEvent()
}

// LobbyCreatedEvent answers CreateLobbyMsg with the code to share.
type LobbyCreatedEvent struct {
	Code   string
	GameID string
}

// LobbyErrorEvent reports a lobby request that could not be served.
type LobbyErrorEvent struct {
	Message string
}

// LobbyJoinedEvent goes to both members once the partner is seated.
type LobbyJoinedEvent struct {
	Code      string
	Side      PlayerID // Slot this session steers
	PartnerID SessionID
}

// LobbyPlayerLeftEvent tells the host their partner left before the start.
type LobbyPlayerLeftEvent struct {
	Code string
}

// MatchStartedEvent goes to both members when the first tick is due.
type MatchStartedEvent struct {
	MatchID MatchID
	Side    PlayerID
	Code    string
}

// MatchEndedEvent closes a match, or a lobby when MatchID is empty. Score
// and Lines belong to both players.
type MatchEndedEvent struct {
	MatchID MatchID
	Reason  MatchEndReason
	Score   int
	Lines   int
}

// SnapshotEvent is one rendered tick of a match.
type SnapshotEvent struct {
	MatchID  MatchID
	Tick     uint64
	Snapshot GameSnapshot
}

func (LobbyCreatedEvent) sessionEvent()    {}
func (LobbyErrorEvent) sessionEvent()      {}
func (LobbyJoinedEvent) sessionEvent()     {}
func (LobbyPlayerLeftEvent) sessionEvent() {}
func (MatchStartedEvent) sessionEvent()    {}
func (MatchEndedEvent) sessionEvent()      {}
func (SnapshotEvent) sessionEvent()        {}

// GameSnapshot is a game's frame as broadcast to clients.
type GameSnapshot interface {
	IsGameSnapshot()
}

// MatchEndReason says why a match or lobby closed.
type MatchEndReason int

const (
	MatchEndReasonCompleted  MatchEndReason = iota // The board topped out
	MatchEndReasonDisconnect                       // A connection dropped
	MatchEndReasonHostLeft                         // The host closed the lobby
	MatchEndReasonQuit                             // A player left the match
)

func (r MatchEndReason) String() string {
	switch r {
	case MatchEndReasonCompleted:
		return "Game over"
	case MatchEndReasonDisconnect:
		return "Partner disconnected"
	case MatchEndReasonHostLeft:
		return "Host left"
	case MatchEndReasonQuit:
		return "Partner left"
	default:
		return "Unknown"
	}
}

// CoordinatorMessage is a request from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateLobbyMsg hosts a new lobby for GameID.
type CreateLobbyMsg struct {
	SessionID SessionID
	GameID    string
}

// JoinLobbyMsg takes the free seat of the lobby with Code.
type JoinLobbyMsg struct {
	SessionID SessionID
	Code      string
}

// CancelLobbyMsg closes a lobby; only its host may send it.
type CancelLobbyMsg struct {
	SessionID SessionID
	Code      string
}

// LeaveLobbyMsg gives up a seat before the match starts.
type LeaveLobbyMsg struct {
	SessionID SessionID
	Code      string
}

// LeaveMatchMsg ends a running match for both players.
type LeaveMatchMsg struct {
	SessionID SessionID
	MatchID   MatchID
}

// PlayerInputMsg carries one key press into a match.
type PlayerInputMsg struct {
	MatchID MatchID
	Player  PlayerID
	Input   core.InputFrame
}

// SessionDisconnectedMsg cleans up after a closed connection.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (CreateLobbyMsg) coordinatorMessage()         {}
func (JoinLobbyMsg) coordinatorMessage()           {}
func (CancelLobbyMsg) coordinatorMessage()         {}
func (LeaveLobbyMsg) coordinatorMessage()          {}
func (LeaveMatchMsg) coordinatorMessage()          {}
func (PlayerInputMsg) coordinatorMessage()         {}
func (SessionDisconnectedMsg) coordinatorMessage() {}
