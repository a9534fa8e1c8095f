package multiplayer

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/duotris/internal/core"
)

// CoordinatorConfig tunes lobby expiry and the match clock.
type CoordinatorConfig struct {
	LobbyTimeout  time.Duration // Unjoined lobbies older than this are closed
	TickRate      int           // Match ticks per second
	CleanupPeriod time.Duration // How often expired lobbies are swept
}

// DefaultCoordinatorConfig returns the server defaults.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		LobbyTimeout:  2 * time.Minute,
		TickRate:      core.DefaultConfig().TickRate,
		CleanupPeriod: 30 * time.Second,
	}
}

// GameFactory builds the authoritative game for a new match.
type GameFactory func(gameID string, cfg core.RuntimeConfig) (OnlineGame, error)

// MatchResultSaver persists finished matches. The storage layer implements
// it so this package does not import storage.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData is everything needed to store and re-simulate a match.
type MatchResultData struct {
	MatchID        string
	GameID         string
	Player1Session string
	Player2Session string
	Seed           int64
	Score          int
	Lines          int
	Locks          int
	Ticks          uint64
	Inputs         []RecordedInput
	GameOver       bool
	EndReason      string
	DurationSecs   int
}

// Coordinator pairs sessions through lobby codes and owns the running
// matches. Messages are handled one at a time on its own goroutine; match
// goroutines report back under mu.
type Coordinator struct {
	config      CoordinatorConfig
	gameFactory GameFactory
	sessions    *SessionRegistry
	resultSaver MatchResultSaver
	logger      *log.Logger

	mu           sync.Mutex
	lobbies      lobbyBook
	matches      map[MatchID]*OnlineMatch
	sessionMatch map[SessionID]MatchID

	inbox    chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a coordinator; call Start to begin serving.
func NewCoordinator(cfg CoordinatorConfig, factory GameFactory, sessions *SessionRegistry) *Coordinator {
	return &Coordinator{
		config:       cfg,
		gameFactory:  factory,
		sessions:     sessions,
		logger:       log.New(io.Discard),
		lobbies:      newLobbyBook(),
		matches:      make(map[MatchID]*OnlineMatch),
		sessionMatch: make(map[SessionID]MatchID),
		inbox:        make(chan CoordinatorMessage, 256),
		done:         make(chan struct{}),
	}
}

// SetLogger routes lobby and match events to l.
func (c *Coordinator) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// SetResultSaver stores every finished match through saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// Start runs the message loop and the lobby sweeper.
func (c *Coordinator) Start() {
	go c.loop()
}

// Stop ends the loop and every running match. Ended matches are not saved.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		for _, m := range c.matches {
			m.Stop()
		}
		c.mu.Unlock()
	})
}

// Send queues msg for the message loop.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.inbox <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) loop() {
	sweep := time.NewTicker(c.config.CleanupPeriod)
	defer sweep.Stop()

	for {
		select {
		case msg := <-c.inbox:
			c.handle(msg)
		case now := <-sweep.C:
			c.expireLobbies(now)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handle(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case CreateLobbyMsg:
		c.createLobby(m)
	case JoinLobbyMsg:
		c.joinLobby(m)
	case CancelLobbyMsg:
		c.leaveLobby(m.SessionID, true)
	case LeaveLobbyMsg:
		c.leaveLobby(m.SessionID, false)
	case LeaveMatchMsg:
		c.leaveMatch(m.SessionID, m.MatchID, MatchEndReasonQuit)
	case PlayerInputMsg:
		c.forwardInput(m)
	case SessionDisconnectedMsg:
		c.leaveLobby(m.SessionID, false)
		c.leaveMatch(m.SessionID, "", MatchEndReasonDisconnect)
	}
}

func (c *Coordinator) createLobby(msg CreateLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy(msg.SessionID) {
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	}
	l := c.lobbies.open(session, msg.GameID, time.Now())

	c.logger.Debug("lobby created", "code", l.Code, "game", l.GameID, "host", msg.SessionID)
	session.Send(LobbyCreatedEvent{Code: l.Code, GameID: l.GameID})
}

func (c *Coordinator) joinLobby(msg JoinLobbyMsg) {
	session, ok := c.sessions.Get(msg.SessionID)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	l, found := c.lobbies.find(msg.Code)
	switch {
	case c.busy(msg.SessionID):
		session.Send(LobbyErrorEvent{Message: "Already in a lobby"})
		return
	case !found:
		session.Send(LobbyErrorEvent{Message: "Lobby not found"})
		return
	case l.Joiner != nil:
		session.Send(LobbyErrorEvent{Message: "Lobby is full"})
		return
	}

	c.lobbies.seat(l, session)
	l.Host.Send(LobbyJoinedEvent{Code: l.Code, Side: Player1, PartnerID: session.ID()})
	session.Send(LobbyJoinedEvent{Code: l.Code, Side: Player2, PartnerID: l.Host.ID()})

	c.startMatch(l)
}

// busy reports whether id already hosts, joined or plays. Caller holds mu.
func (c *Coordinator) busy(id SessionID) bool {
	if _, ok := c.lobbies.of(id); ok {
		return true
	}
	_, ok := c.sessionMatch[id]
	return ok
}

// startMatch turns a full lobby into a running match. Caller holds mu.
func (c *Coordinator) startMatch(l *Lobby) {
	// close unseats the joiner, so take both members first.
	host, joiner := l.Host, l.Joiner
	c.lobbies.close(l)

	// The match ID doubles as the replay ID once the match is saved.
	id := MatchID(uuid.NewString())
	rc := core.DefaultConfig()
	rc.TickRate = c.config.TickRate
	rc.Seed = time.Now().UnixNano()

	game, err := c.gameFactory(l.GameID, rc)
	if err != nil {
		c.logger.Error("cannot create game", "game", l.GameID, "err", err)
		for _, s := range []SessionHandle{host, joiner} {
			s.Send(LobbyErrorEvent{Message: "Failed to create game"})
		}
		return
	}

	m := NewOnlineMatch(id, l.Code, l.GameID, game, host, joiner, c.config.TickRate)
	c.matches[id] = m
	c.sessionMatch[host.ID()] = id
	c.sessionMatch[joiner.ID()] = id

	host.Send(MatchStartedEvent{MatchID: id, Side: Player1, Code: l.Code})
	joiner.Send(MatchStartedEvent{MatchID: id, Side: Player2, Code: l.Code})
	c.logger.Info("match started", "match", id, "code", l.Code, "seed", game.Seed())

	go m.Run(func(result MatchResult) {
		c.matchEnded(m, result)
	})
}

// leaveLobby takes id out of its lobby. A leaving host closes the lobby;
// when hostOnly is set only the host may do anything.
func (c *Coordinator) leaveLobby(id SessionID, hostOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lobbies.of(id)
	if !ok {
		return
	}

	if l.Host.ID() == id {
		if l.Joiner != nil {
			l.Joiner.Send(MatchEndedEvent{Reason: MatchEndReasonHostLeft})
		}
		c.lobbies.close(l)
		c.logger.Debug("lobby closed", "code", l.Code)
		return
	}
	if !hostOnly {
		c.lobbies.unseat(l)
		l.Host.Send(LobbyPlayerLeftEvent{Code: l.Code})
	}
}

// leaveMatch ends the match id plays in. An empty matchID means whichever
// match that is.
func (c *Coordinator) leaveMatch(id SessionID, matchID MatchID, reason MatchEndReason) {
	c.mu.Lock()
	current, ok := c.sessionMatch[id]
	m := c.matches[current]
	c.mu.Unlock()

	if !ok || m == nil || (matchID != "" && matchID != current) {
		return
	}
	m.PlayerLeft(id, reason)
}

func (c *Coordinator) forwardInput(msg PlayerInputMsg) {
	c.mu.Lock()
	m := c.matches[msg.MatchID]
	c.mu.Unlock()

	if m != nil {
		m.SendInput(msg.Player, msg.Input)
	}
}

func (c *Coordinator) matchEnded(m *OnlineMatch, result MatchResult) {
	c.mu.Lock()
	delete(c.matches, m.ID())
	for _, s := range m.sessions() {
		delete(c.sessionMatch, s.ID())
	}
	c.mu.Unlock()

	c.logger.Info("match ended",
		"match", m.ID(),
		"reason", result.Reason.String(),
		"score", result.Score,
		"lines", result.Lines,
		"ticks", result.Ticks,
	)

	if c.resultSaver != nil {
		data := c.resultData(m, result)
		// Disk I/O stays off the match goroutine's critical path.
		go func() {
			if err := c.resultSaver.SaveMatchResult(data); err != nil {
				c.logger.Warn("cannot save match", "match", data.MatchID, "err", err)
			}
		}()
	}

	ended := MatchEndedEvent{MatchID: m.ID(), Reason: result.Reason, Score: result.Score, Lines: result.Lines}
	for _, s := range m.sessions() {
		s.Send(ended)
	}
}

func (c *Coordinator) resultData(m *OnlineMatch, result MatchResult) MatchResultData {
	players := m.sessions()
	tickRate := uint64(max(1, c.config.TickRate)) //nolint:gosec // clamped positive
	return MatchResultData{
		MatchID:        string(m.ID()),
		GameID:         m.GameID(),
		Player1Session: string(players[0].ID()),
		Player2Session: string(players[1].ID()),
		Seed:           result.Seed,
		Score:          result.Score,
		Lines:          result.Lines,
		Locks:          result.Locks,
		Ticks:          result.Ticks,
		Inputs:         result.Inputs,
		GameOver:       result.Reason == MatchEndReasonCompleted,
		EndReason:      result.Reason.String(),
		DurationSecs:   int(result.Ticks / tickRate), //nolint:gosec // seconds of play fit in int
	}
}

func (c *Coordinator) expireLobbies(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range c.lobbies.expired(now, c.config.LobbyTimeout) {
		l.Host.Send(LobbyErrorEvent{Message: "Lobby expired"})
		c.lobbies.close(l)
		c.logger.Debug("lobby expired", "code", l.Code)
	}
}

// LobbyCount returns the number of open lobbies.
func (c *Coordinator) LobbyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lobbies.len()
}

// MatchCount returns the number of running matches.
func (c *Coordinator) MatchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.matches)
}
