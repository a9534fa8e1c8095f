package multiplayer

import (
	"slices"
	"sync"
	"time"

	"github.com/vovakirdan/duotris/internal/core"
)

// OnlineGame is the interface that games must implement to support online multiplayer.
// Both sessions feed the same game; score and lines are shared.
type OnlineGame interface {
	// Reset initializes the game state.
	Reset(cfg core.RuntimeConfig)

	// StepMulti advances the game by one tick using input from multiple players.
	StepMulti(input core.MultiInputFrame) core.StepResult

	// MatchSnapshot returns the current game state for network transmission.
	MatchSnapshot() GameSnapshot

	// State reports score, lines and whether the game has ended.
	State() core.GameState

	// Seed returns the seed of the running round.
	Seed() int64
}

// RecordedInput is one action a player fed to the match on a given tick.
type RecordedInput struct {
	Tick   uint64
	Player PlayerID
	Action core.Action
}

// MatchResult contains the outcome of a completed match.
type MatchResult struct {
	MatchID MatchID
	Reason  MatchEndReason
	Score   int
	Lines   int
	Locks   int
	Ticks   uint64
	Seed    int64
	Inputs  []RecordedInput
}

// OnlineMatch runs one co-op game: both sessions feed inputs, every tick
// steps the game once and sends the resulting frame to both.
type OnlineMatch struct {
	id     MatchID
	code   string
	gameID string
	game   OnlineGame

	player1Session SessionHandle
	player2Session SessionHandle

	inbox    chan playerInput
	leaves   chan departure
	pending  map[PlayerID]core.InputFrame // Owned by the Run goroutine
	inputs   []RecordedInput
	tick     uint64
	tickRate int

	done     chan struct{}
	stopOnce sync.Once
}

type playerInput struct {
	player PlayerID
	input  core.InputFrame
}

type departure struct {
	session SessionID
	reason  MatchEndReason
}

// NewOnlineMatch creates a match between host (Player 1) and partner
// (Player 2). A tick rate below 1 falls back to the default.
func NewOnlineMatch(
	id MatchID,
	code string,
	gameID string,
	game OnlineGame,
	host, partner SessionHandle,
	tickRate int,
) *OnlineMatch {
	if tickRate < 1 {
		tickRate = core.DefaultConfig().TickRate
	}
	return &OnlineMatch{
		id:             id,
		code:           code,
		gameID:         gameID,
		game:           game,
		player1Session: host,
		player2Session: partner,
		inbox:          make(chan playerInput, 64),
		leaves:         make(chan departure, 2),
		pending:        make(map[PlayerID]core.InputFrame, 2),
		tickRate:       tickRate,
		done:           make(chan struct{}),
	}
}

// ID returns the match identifier.
func (m *OnlineMatch) ID() MatchID {
	return m.id
}

// Code returns the lobby code the match was made from.
func (m *OnlineMatch) Code() string {
	return m.code
}

// GameID returns the registry ID of the game being played.
func (m *OnlineMatch) GameID() string {
	return m.gameID
}

// sessions returns host then partner.
func (m *OnlineMatch) sessions() [2]SessionHandle {
	return [2]SessionHandle{m.player1Session, m.player2Session}
}

// SendInput queues a player's keys for the next tick. Input arriving while
// the queue is full is dropped.
func (m *OnlineMatch) SendInput(player PlayerID, input core.InputFrame) {
	select {
	case m.inbox <- playerInput{player: player, input: input}:
	default:
	}
}

// PlayerLeft ends the match on the next loop iteration.
func (m *OnlineMatch) PlayerLeft(session SessionID, reason MatchEndReason) {
	select {
	case m.leaves <- departure{session: session, reason: reason}:
	default:
	}
}

// Run drives the match until game over, a departure or Stop. onComplete
// receives the result unless the match was stopped.
func (m *OnlineMatch) Run(onComplete func(MatchResult)) {
	defer m.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(m.tickRate))
	defer ticker.Stop()

	go m.watchSessions()

	finish := func(r MatchResult) {
		if onComplete != nil {
			onComplete(r)
		}
	}

	for {
		select {
		case <-ticker.C:
			if result, over := m.runTick(); over {
				finish(result)
				return
			}
		case d := <-m.leaves:
			// Either partner leaving ends a co-op match.
			finish(m.result(d.reason))
			return
		case <-m.done:
			return
		}
	}
}

// runTick steps the game once with everything received since the last
// tick and broadcasts the frame.
func (m *OnlineMatch) runTick() (MatchResult, bool) {
	m.collectInputs()

	frame := core.NewMultiInputFrame()
	for _, p := range []PlayerID{Player1, Player2} {
		if in, ok := m.pending[p]; ok {
			frame.SetPlayer(p, in)
		}
	}
	clear(m.pending)

	m.record(frame)
	m.game.StepMulti(frame)
	m.tick++

	snap := SnapshotEvent{MatchID: m.id, Tick: m.tick, Snapshot: m.game.MatchSnapshot()}
	for _, s := range m.sessions() {
		s.Send(snap)
	}

	if m.game.State().GameOver {
		return m.result(MatchEndReasonCompleted), true
	}
	return MatchResult{}, false
}

// collectInputs merges every queued frame into pending, per player.
func (m *OnlineMatch) collectInputs() {
	for {
		select {
		case pi := <-m.inbox:
			merged, ok := m.pending[pi.player]
			if !ok {
				merged = core.NewInputFrame()
			}
			for action, pressed := range pi.input.Actions {
				if pressed {
					merged.Set(action)
				}
			}
			m.pending[pi.player] = merged
		default:
			return
		}
	}
}

// record appends the actions of this tick in a stable order so the
// match can be replayed.
func (m *OnlineMatch) record(in core.MultiInputFrame) {
	for _, player := range []PlayerID{Player1, Player2} {
		frame := in.Player(player)
		var actions []core.Action
		for action, pressed := range frame.Actions {
			if pressed {
				actions = append(actions, action)
			}
		}
		slices.Sort(actions)
		for _, action := range actions {
			m.inputs = append(m.inputs, RecordedInput{Tick: m.tick, Player: player, Action: action})
		}
	}
}

func (m *OnlineMatch) result(reason MatchEndReason) MatchResult {
	state := m.game.State()
	return MatchResult{
		MatchID: m.id,
		Reason:  reason,
		Score:   state.Score,
		Lines:   state.Lines,
		Locks:   state.Locks,
		Ticks:   m.tick,
		Seed:    m.game.Seed(),
		Inputs:  m.inputs,
	}
}

// watchSessions turns a closed connection into a departure.
func (m *OnlineMatch) watchSessions() {
	var gone SessionHandle
	select {
	case <-m.player1Session.Done():
		gone = m.player1Session
	case <-m.player2Session.Done():
		gone = m.player2Session
	case <-m.done:
		return
	}
	m.PlayerLeft(gone.ID(), MatchEndReasonDisconnect)
}

// Stop ends the match without reporting a result.
func (m *OnlineMatch) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
	})
}
