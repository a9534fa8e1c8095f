package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/multiplayer"
)

// OnlineState represents the current state of the online matchmaking flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // Choose Host or Join
	OnlineStateHostWaiting                      // Hosting, waiting for joiner
	OnlineStateJoinEnterCode                    // Entering join code
	OnlineStateJoinWaiting                      // Waiting to connect to host
	OnlineStateMatchStarting                    // Match is starting
	OnlineStateInMatch                          // In active match
	OnlineStateMatchEnded                       // Match has ended
)

// OnlineLobbyModel handles the online matchmaking flow. Coordinator events
// are delivered through Update by the owning session model.
type OnlineLobbyModel struct {
	state       OnlineState
	width       int
	height      int
	gameID      string
	sessionID   multiplayer.SessionID
	coordinator *multiplayer.Coordinator

	// Host state
	lobbyCode string

	// Join state
	joinCodeInput string
	joinError     string

	// Match state
	matchID   multiplayer.MatchID
	side      core.PlayerID
	partnerID multiplayer.SessionID

	// Result state
	backToMenu bool
	quitting   bool
}

// NewOnlineLobbyModel creates a new online lobby model.
func NewOnlineLobbyModel(
	gameID string,
	sessionID multiplayer.SessionID,
	coordinator *multiplayer.Coordinator,
	width, height int,
) OnlineLobbyModel {
	return OnlineLobbyModel{
		state:       OnlineStateChooseMode,
		width:       width,
		height:      height,
		gameID:      gameID,
		sessionID:   sessionID,
		coordinator: coordinator,
	}
}

// Init initializes the lobby model.
func (m OnlineLobbyModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m OnlineLobbyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case multiplayer.LobbyCreatedEvent:
		m.lobbyCode = msg.Code
		m.state = OnlineStateHostWaiting
	case multiplayer.LobbyJoinedEvent:
		m.side = msg.Side
		m.partnerID = msg.PartnerID
		m.state = OnlineStateMatchStarting
	case multiplayer.LobbyErrorEvent:
		m.joinError = msg.Message
		if m.state == OnlineStateJoinWaiting {
			m.state = OnlineStateJoinEnterCode
		}
	case multiplayer.LobbyPlayerLeftEvent:
		// The host keeps waiting for someone else.
		m.state = OnlineStateHostWaiting
	case multiplayer.MatchStartedEvent:
		m.matchID = msg.MatchID
		m.side = msg.Side
		m.state = OnlineStateInMatch
	case multiplayer.MatchEndedEvent:
		m.joinError = msg.Reason.String()
		m.state = OnlineStateChooseMode
	}
	return m, nil
}

func (m OnlineLobbyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.handleChooseModeKey(msg)
	case OnlineStateHostWaiting:
		return m.handleHostWaitingKey(msg)
	case OnlineStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	case OnlineStateJoinWaiting:
		return m.handleJoinWaitingKey(msg)
	}

	return m, nil
}

// leave withdraws from whatever lobby this session is in.
func (m OnlineLobbyModel) leave() {
	switch m.state {
	case OnlineStateHostWaiting:
		m.coordinator.Send(multiplayer.CancelLobbyMsg{SessionID: m.sessionID, Code: m.lobbyCode})
	case OnlineStateJoinWaiting:
		m.coordinator.Send(multiplayer.LeaveLobbyMsg{SessionID: m.sessionID, Code: m.joinCodeInput})
	}
}

func (m OnlineLobbyModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "1":
		m.joinError = ""
		m.coordinator.Send(multiplayer.CreateLobbyMsg{
			SessionID: m.sessionID,
			GameID:    m.gameID,
		})
	case "j", "J", "2":
		m.state = OnlineStateJoinEnterCode
		m.joinCodeInput = ""
		m.joinError = ""
	case "esc", "b":
		m.backToMenu = true
	case "q":
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m OnlineLobbyModel) handleHostWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.leave()
		m.backToMenu = true
	case "q":
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m OnlineLobbyModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Letters are code symbols here, so only esc leaves.
	switch key {
	case "esc":
		m.backToMenu = true
	case "enter":
		if m.joinCodeInput != "" {
			m.state = OnlineStateJoinWaiting
			m.joinError = ""
			m.coordinator.Send(multiplayer.JoinLobbyMsg{
				SessionID: m.sessionID,
				Code:      m.joinCodeInput,
			})
		}
	case "backspace":
		if m.joinCodeInput != "" {
			m.joinCodeInput = m.joinCodeInput[:len(m.joinCodeInput)-1]
		}
	default:
		m.joinCodeInput = appendCodeChar(m.joinCodeInput, key)
	}

	return m, nil
}

// appendCodeChar accepts one join code symbol, upper-cased, up to the code length.
func appendCodeChar(code, key string) string {
	if len(key) != 1 || len(code) >= multiplayer.JoinCodeLen || !multiplayer.ValidJoinCodeChar(rune(key[0])) {
		return code
	}
	return code + strings.ToUpper(key)
}

func (m OnlineLobbyModel) handleJoinWaitingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		m.leave()
		m.state = OnlineStateJoinEnterCode
	}
	return m, nil
}

// View renders the current state.
func (m OnlineLobbyModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.viewChooseMode()
	case OnlineStateHostWaiting:
		return m.viewHostWaiting()
	case OnlineStateJoinEnterCode:
		return m.viewJoinEnterCode()
	case OnlineStateJoinWaiting:
		return m.viewJoinWaiting()
	case OnlineStateMatchStarting, OnlineStateInMatch:
		return m.viewMatchStarting()
	}
	return ""
}

func (m OnlineLobbyModel) viewChooseMode() string {
	lines := []string{"[H] host a game", "[J] join a game"}
	if m.joinError != "" {
		lines = append(lines, "", errorStyle.Render(m.joinError))
	}
	return panel{title: "ONLINE CO-OP", lines: lines, hint: "esc back  q quit"}.render(m.width, m.height)
}

func (m OnlineLobbyModel) viewHostWaiting() string {
	return panel{
		title: "HOSTING",
		lines: []string{
			"Give your partner this code:",
			codeStyle.Render(m.lobbyCode),
			"Waiting for them to join...",
		},
		hint: "esc cancel  q quit",
	}.render(m.width, m.height)
}

func (m OnlineLobbyModel) viewJoinEnterCode() string {
	typed := m.joinCodeInput
	if n := len(typed); n < multiplayer.JoinCodeLen {
		typed += strings.Repeat("_", multiplayer.JoinCodeLen-n)
	}
	lines := []string{"Type the host's code:", codeStyle.Render(typed)}
	if m.joinError != "" {
		lines = append(lines, errorStyle.Render(m.joinError))
	}
	return panel{title: "JOIN", lines: lines, hint: "enter connect  esc back"}.render(m.width, m.height)
}

func (m OnlineLobbyModel) viewJoinWaiting() string {
	return panel{
		title: "CONNECTING",
		lines: []string{"Joining " + m.joinCodeInput + "..."},
		hint:  "esc cancel",
	}.render(m.width, m.height)
}

func (m OnlineLobbyModel) viewMatchStarting() string {
	return panel{
		title: "MATCH STARTING",
		lines: []string{fmt.Sprintf("You steer piece %s", m.side)},
	}.render(m.width, m.height)
}

// State returns the current online state.
func (m OnlineLobbyModel) State() OnlineState {
	return m.state
}

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineLobbyModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineLobbyModel) IsQuitting() bool {
	return m.quitting
}

// MatchID returns the match ID if a match was started.
func (m OnlineLobbyModel) MatchID() multiplayer.MatchID {
	return m.matchID
}

// Side returns which slot (P1/P2) this session steers.
func (m OnlineLobbyModel) Side() core.PlayerID {
	return m.side
}

// LobbyCode returns the lobby code.
func (m OnlineLobbyModel) LobbyCode() string {
	return m.lobbyCode
}

// OnlineMatchModel shows the snapshots of a running match and forwards
// this player's keys to it.
type OnlineMatchModel struct {
	matchID     multiplayer.MatchID
	side        core.PlayerID
	sessionID   multiplayer.SessionID
	coordinator *multiplayer.Coordinator
	keyMapper   *KeyMapper
	screen      *core.Screen
	snapshot    *duotris.Snapshot
	ended       *multiplayer.MatchEndedEvent
	backToMenu  bool
	quitting    bool
}

// NewOnlineMatchModel creates the in-match view for one side.
func NewOnlineMatchModel(
	matchID multiplayer.MatchID,
	side core.PlayerID,
	sessionID multiplayer.SessionID,
	coordinator *multiplayer.Coordinator,
	width, height int,
) OnlineMatchModel {
	return OnlineMatchModel{
		matchID:     matchID,
		side:        side,
		sessionID:   sessionID,
		coordinator: coordinator,
		keyMapper:   NewKeyMapper(),
		screen:      core.NewScreen(width, height),
	}
}

// Init initializes the match view.
func (m OnlineMatchModel) Init() tea.Cmd {
	return nil
}

// Update handles keys, snapshots and the end of the match.
func (m OnlineMatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
	case multiplayer.SnapshotEvent:
		if snap, ok := msg.Snapshot.(duotris.Snapshot); ok && msg.MatchID == m.matchID {
			m.snapshot = &snap
		}
	case multiplayer.MatchEndedEvent:
		if msg.MatchID == m.matchID || msg.MatchID == "" {
			ended := msg
			m.ended = &ended
		}
	}
	return m, nil
}

func (m OnlineMatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ended != nil {
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		default:
			m.backToMenu = true
		}
		return m, nil
	}

	frame := core.NewInputFrame()
	if m.keyMapper.MapKeyToFrame(msg, &frame) {
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
		m.quitting = true
		return m, tea.Quit
	}
	if frame.Has(core.ActionBack) {
		m.coordinator.Send(multiplayer.LeaveMatchMsg{SessionID: m.sessionID, MatchID: m.matchID})
		return m, nil
	}
	if !frame.Empty() {
		m.coordinator.Send(multiplayer.PlayerInputMsg{
			MatchID: m.matchID,
			Player:  m.side,
			Input:   frame,
		})
	}
	return m, nil
}

// View renders the latest snapshot, or the result once the match is over.
func (m OnlineMatchModel) View() string {
	if m.quitting {
		return ""
	}

	if m.snapshot == nil {
		m.screen.Clear()
		m.screen.DrawTextCentered(m.screen.Height()/2, "Waiting for the first frame...")
	} else {
		duotris.RenderSnapshot(m.screen, *m.snapshot)
	}

	if m.ended != nil {
		statusLine(m.screen, fmt.Sprintf(" %s  score %d  lines %d  |  any key: menu  Q: quit",
			m.ended.Reason, m.ended.Score, m.ended.Lines), core.ColorWhite, core.ColorRed)
	} else {
		statusLine(m.screen, fmt.Sprintf(" online co-op  you are %s  |  Esc: leave", m.side), core.ColorGray, core.ColorDefault)
	}
	return RenderScreen(m.screen)
}

// BackToMenu returns true once the player dismissed the result.
func (m OnlineMatchModel) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineMatchModel) IsQuitting() bool {
	return m.quitting
}

// CoopModeModel lets users choose between playing co-op on one keyboard
// or with a partner on another connection.
type CoopModeModel struct {
	cursor    int
	width     int
	height    int
	keyMapper *KeyMapper
	selected  multiplayer.MatchMode
	choosing  bool
	quitting  bool
	back      bool
}

var coopModes = []multiplayer.MatchMode{
	multiplayer.MatchModeLocalCoop,
	multiplayer.MatchModeOnlineCoop,
}

// NewCoopModeModel creates a new co-op mode selection model.
func NewCoopModeModel(width, height int) CoopModeModel {
	return CoopModeModel{
		cursor:    0,
		width:     width,
		height:    height,
		keyMapper: NewKeyMapper(),
		choosing:  true,
	}
}

// Init initializes the model.
func (m CoopModeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m CoopModeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m CoopModeModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keyMapper.MapKeyToMenuAction(msg)

	switch action {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(coopModes)-1 {
			m.cursor++
		}
	case MenuActionSelect:
		m.choosing = false
		m.selected = coopModes[m.cursor]
	case MenuActionBack:
		m.back = true
	}

	return m, nil
}

// View renders the mode selection.
func (m CoopModeModel) View() string {
	if m.quitting {
		return ""
	}

	rows := make([]string, len(coopModes))
	for i, mode := range coopModes {
		rows[i] = choice(fmt.Sprintf("%-14s", mode), i == m.cursor)
	}
	return panel{title: "CO-OP", lines: rows, hint: "enter select  esc back  q quit"}.render(m.width, m.height)
}

// Selected returns the selected mode, or -1 if still choosing.
func (m CoopModeModel) Selected() multiplayer.MatchMode {
	if m.choosing {
		return -1
	}
	return m.selected
}

// IsChoosing returns true if still in selection mode.
func (m CoopModeModel) IsChoosing() bool {
	return m.choosing
}

// IsQuitting returns true if user wants to quit.
func (m CoopModeModel) IsQuitting() bool {
	return m.quitting
}

// WantsBack returns true if user pressed back.
func (m CoopModeModel) WantsBack() bool {
	return m.back
}
