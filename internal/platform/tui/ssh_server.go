// Package tui provides terminal UI components including SSH server support via Wish.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/multiplayer"
	"github.com/vovakirdan/duotris/internal/registry"
	"github.com/vovakirdan/duotris/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.duotris/host_key.
	HostKeyPath string

	// DBPath is the path to the replay database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Game is the configuration every online match runs with.
	Game config.DuotrisConfig

	// Logger receives server, lobby and match events. Defaults to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DBPath:      "~/.duotris/replays.db",
		IdleTimeout: 30 * time.Minute,
		Game:        config.DefaultDuotrisConfig(),
	}
}

// SSHServer wraps a Wish SSH server for duotris.
type SSHServer struct {
	config      SSHServerConfig
	server      *ssh.Server
	store       *storage.Store
	logger      *log.Logger
	sessions    *multiplayer.SessionRegistry
	coordinator *multiplayer.Coordinator
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "duotris-ssh",
		})
	}

	if err := cfg.Game.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open replay database", "error", err)
		// Continue without storage
		store = nil
	}

	sessions := multiplayer.NewSessionRegistry()
	coordCfg := multiplayer.DefaultCoordinatorConfig()
	coordCfg.TickRate = cfg.Game.Timing.TickRate
	coordinator := multiplayer.NewCoordinator(coordCfg, gameFactory(cfg.Game), sessions)
	coordinator.SetLogger(logger)
	if store != nil {
		coordinator.SetResultSaver(storage.MatchSaver{Store: store, Config: cfg.Game})
	}

	srv := &SSHServer{
		config:      cfg,
		store:       store,
		logger:      logger,
		sessions:    sessions,
		coordinator: coordinator,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".duotris", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// gameFactory builds the authoritative game of an online match.
func gameFactory(cfg config.DuotrisConfig) multiplayer.GameFactory {
	return func(gameID string, rc core.RuntimeConfig) (multiplayer.OnlineGame, error) {
		mode, ok := duotris.ModeFor(gameID)
		if !ok {
			return nil, fmt.Errorf("unknown game %q", gameID)
		}
		g := duotris.NewWithConfig(mode, cfg)
		g.Reset(rc)
		return g, nil
	}
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.Game.Timing.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	sessionID := multiplayer.SessionID(fmt.Sprintf("%s-%s", sshSession.User(), uuid.NewString()[:8]))
	handle := multiplayer.NewChannelSession(sessionID, 64)
	s.sessions.Register(handle)

	go func() {
		<-sshSession.Context().Done()
		handle.Close()
		s.coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: sessionID})
		s.sessions.Unregister(sessionID)
	}()

	model := NewSessionModel(s.store, cfg, s.coordinator, handle)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "tick_rate", s.config.Game.Timing.TickRate)
	s.coordinator.Start()

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	s.coordinator.Stop()
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// sessionScreen is what a session is currently showing.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenCoopMode
	screenLobby
	screenMatch
	screenGame
	screenReplays
	screenReplay
)

// SessionModel manages the full session flow: menu -> game or lobby -> menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	store       *storage.Store
	config      core.RuntimeConfig
	coordinator *multiplayer.Coordinator
	handle      *multiplayer.ChannelSession
	current     sessionScreen
	pendingGame string // Game picked in the menu while the co-op mode is chosen

	menu     MenuModel
	coopMode CoopModeModel
	lobby    OnlineLobbyModel
	match    OnlineMatchModel
	game     Model
	replays  ScoreboardModel
	replay   ReplayModel

	quitting bool
}

// NewSessionModel creates a new session model. coordinator may be nil, in
// which case co-op is local only.
func NewSessionModel(
	store *storage.Store,
	cfg core.RuntimeConfig,
	coordinator *multiplayer.Coordinator,
	handle *multiplayer.ChannelSession,
) SessionModel {
	return SessionModel{
		store:       store,
		config:      cfg,
		coordinator: coordinator,
		handle:      handle,
		current:     screenMenu,
		menu:        NewMenuModel(store, cfg),
	}
}

// Init starts the menu and the coordinator event pump.
func (m SessionModel) Init() tea.Cmd {
	return tea.Batch(m.menu.Init(), m.waitForEvent())
}

// waitForEvent delivers the next coordinator event as a message. Exactly
// one of these is outstanding for the session's lifetime.
func (m SessionModel) waitForEvent() tea.Cmd {
	if m.handle == nil {
		return nil
	}
	events, frames, done := m.handle.Events(), m.handle.Frames(), m.handle.Done()
	return func() tea.Msg {
		// Queued events go first so a match never renders past its end.
		select {
		case evt := <-events:
			return evt
		default:
		}
		select {
		case evt := <-events:
			return evt
		case evt := <-frames:
			return evt
		case <-done:
			return nil
		}
	}
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	if evt, ok := msg.(multiplayer.SessionEvent); ok {
		next, cmd := m.route(evt)
		return next, tea.Batch(cmd, m.waitForEvent())
	}
	return m.route(msg)
}

// route hands msg to the current screen and follows its transitions.
func (m SessionModel) route(msg tea.Msg) (SessionModel, tea.Cmd) {
	switch m.current {
	case screenCoopMode:
		return m.updateCoopMode(msg)
	case screenLobby:
		return m.updateLobby(msg)
	case screenMatch:
		return m.updateMatch(msg)
	case screenGame:
		return m.updateGame(msg)
	case screenReplays:
		return m.updateReplays(msg)
	case screenReplay:
		return m.updateReplay(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) toMenu() (SessionModel, tea.Cmd) {
	m.current = screenMenu
	m.menu = NewMenuModel(m.store, m.config)
	return m, m.menu.Init()
}

func (m SessionModel) quit() (SessionModel, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (SessionModel, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menuModel, ok := next.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		return m.quit()

	case m.menu.WantsScoreboard():
		m.current = screenReplays
		m.replays = NewScoreboardModel(m.store, m.config.ScreenW, m.config.ScreenH)
		return m, m.replays.Init()

	case m.menu.Selected() != nil:
		selected := *m.menu.Selected()
		m.config = m.menu.Config()
		if selected.Mode == multiplayer.MatchModeLocalCoop && m.coordinator != nil {
			m.pendingGame = selected.GameID
			m.current = screenCoopMode
			m.coopMode = NewCoopModeModel(m.config.ScreenW, m.config.ScreenH)
			return m, m.coopMode.Init()
		}
		return m.startGame(selected.GameID)
	}

	return m, cmd
}

// startGame runs gameID on this session's keyboard.
func (m SessionModel) startGame(gameID string) (SessionModel, tea.Cmd) {
	game, err := registry.Create(gameID)
	if err != nil {
		// Shouldn't happen since menu only shows registered games
		return m.toMenu()
	}
	m.config.Seed = time.Now().UnixNano()
	m.game = NewModel(game, m.store, nil, m.config)
	m.current = screenGame
	return m, m.game.Init()
}

func (m SessionModel) updateCoopMode(msg tea.Msg) (SessionModel, tea.Cmd) {
	next, _ := m.coopMode.Update(msg)
	if cm, ok := next.(CoopModeModel); ok {
		m.coopMode = cm
	}

	switch {
	case m.coopMode.IsQuitting():
		return m.quit()
	case m.coopMode.WantsBack():
		return m.toMenu()
	case m.coopMode.Selected() == multiplayer.MatchModeLocalCoop:
		return m.startGame(m.pendingGame)
	case m.coopMode.Selected() == multiplayer.MatchModeOnlineCoop:
		m.current = screenLobby
		m.lobby = NewOnlineLobbyModel(m.pendingGame, m.handle.ID(), m.coordinator, m.config.ScreenW, m.config.ScreenH)
		return m, m.lobby.Init()
	}
	return m, nil
}

func (m SessionModel) updateLobby(msg tea.Msg) (SessionModel, tea.Cmd) {
	next, cmd := m.lobby.Update(msg)
	if lm, ok := next.(OnlineLobbyModel); ok {
		m.lobby = lm
	}

	switch {
	case m.lobby.IsQuitting():
		return m.quit()
	case m.lobby.BackToMenu():
		return m.toMenu()
	case m.lobby.State() == OnlineStateInMatch:
		m.current = screenMatch
		m.match = NewOnlineMatchModel(m.lobby.MatchID(), m.lobby.Side(), m.handle.ID(), m.coordinator,
			m.config.ScreenW, m.config.ScreenH)
		return m, m.match.Init()
	}
	return m, cmd
}

func (m SessionModel) updateMatch(msg tea.Msg) (SessionModel, tea.Cmd) {
	next, cmd := m.match.Update(msg)
	if mm, ok := next.(OnlineMatchModel); ok {
		m.match = mm
	}

	switch {
	case m.match.IsQuitting():
		return m.quit()
	case m.match.BackToMenu():
		return m.toMenu()
	}
	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (SessionModel, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if gm, ok := next.(Model); ok {
		m.game = gm
	}

	switch {
	case m.game.IsQuitting():
		return m.quit()
	case m.game.BackToMenu():
		return m.toMenu()
	}
	return m, cmd
}

func (m SessionModel) updateReplays(msg tea.Msg) (SessionModel, tea.Cmd) {
	next, cmd := m.replays.Update(msg)
	if sm, ok := next.(ScoreboardModel); ok {
		m.replays = sm
	}

	switch {
	case m.replays.IsQuitting():
		return m.quit()
	case m.replays.IsGoingBack():
		return m.toMenu()
	case m.replays.WatchID() != "":
		r, err := m.store.ReplayByID(m.replays.WatchID())
		if err != nil {
			return m.toMenu()
		}
		rm, err := NewReplayModel(r, m.config)
		if err != nil {
			return m.toMenu()
		}
		m.replay = rm
		m.current = screenReplay
		return m, m.replay.Init()
	}
	return m, cmd
}

func (m SessionModel) updateReplay(msg tea.Msg) (SessionModel, tea.Cmd) {
	next, cmd := m.replay.Update(msg)
	if rm, ok := next.(ReplayModel); ok {
		m.replay = rm
	}

	switch {
	case m.replay.quitting:
		return m.quit()
	case m.replay.WantsBack():
		return m.toMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.current {
	case screenCoopMode:
		return m.coopMode.View()
	case screenLobby:
		return m.lobby.View()
	case screenMatch:
		return m.match.View()
	case screenGame:
		return m.game.View()
	case screenReplays:
		return m.replays.View()
	case screenReplay:
		return m.replay.View()
	default:
		return m.menu.View()
	}
}
