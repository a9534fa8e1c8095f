package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/duotris/internal/audio"
	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/registry"
	"github.com/vovakirdan/duotris/internal/replay"
	"github.com/vovakirdan/duotris/internal/storage"
)

// Model is the Bubble Tea model for playing a game on one keyboard.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	sound      *audio.Player
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	inputFrame core.MultiInputFrame
	gameState  core.GameState
	recorder   *replay.Recorder
	loop       uint64
	saved      bool // Whether the current round has been stored
	quitting   bool
	backToMenu bool
}

// NewModel creates a model for the given game and starts its first round.
// store and sound may be nil.
func NewModel(game registry.Game, store *storage.Store, sound *audio.Player, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	keyMapper := NewKeyMapper()
	if mg, ok := game.(registry.MultiPlayerGame); ok && mg.Players() > 1 {
		keyMapper = NewCoopKeyMapper()
	}

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		sound:      sound,
		config:     cfg,
		keyMapper:  keyMapper,
		inputFrame: core.NewMultiInputFrame(),
		loop:       nextLoop(),
	}
	m.game.Reset(m.config)
	m.gameState = m.game.State()
	m.startRecording()
	return m
}

// startRecording begins a replay for the round that was just reset.
func (m *Model) startRecording() {
	m.saved = false
	m.recorder = nil
	if g, ok := m.game.(*duotris.Game); ok {
		m.recorder = replay.NewRecorder(g.ID(), g.Seed(), g.Config())
	}
}

// finishRound stores the replay of the current round once.
func (m *Model) finishRound() {
	if m.saved || m.recorder == nil || m.store == nil {
		return
	}
	g, ok := m.game.(*duotris.Game)
	if !ok || m.recorder.Ticks() == 0 {
		return
	}
	m.saved = true
	//nolint:errcheck // Best-effort save, game continues regardless
	m.store.SaveReplay(m.recorder.Finish(g))
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.loop, m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if msg.Loop != m.loop {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToMultiFrame(msg, &m.inputFrame) {
		if !m.gameState.GameOver && m.gameState.Locks > 0 {
			m.finishRound()
		}
		m.quitting = true
		return m, tea.Quit
	}

	if m.keyMapper.MapKeyToMenuAction(msg) == MenuActionBack && (m.gameState.GameOver || m.gameState.Paused) {
		m.finishRound()
		m.backToMenu = true
	}
	return m, nil
}

// handleResize keeps the round going; the game re-centers on the new size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.backToMenu {
		return m, nil
	}

	input := m.inputFrame
	m.inputFrame = core.NewMultiInputFrame()

	// A finished round only listens for restart.
	if m.gameState.GameOver {
		result := m.step(input)
		m.gameState = result.State
		if !m.gameState.GameOver {
			m.startRecording()
		}
		return m, tickCmd(m.loop, m.config.TickRate)
	}

	if m.recorder != nil {
		m.recorder.Record(input)
	}
	result := m.step(input)
	m.gameState = result.State

	if m.sound != nil {
		m.sound.Handle(result.Events)
	}
	if m.gameState.GameOver {
		m.finishRound()
	}

	return m, tickCmd(m.loop, m.config.TickRate)
}

func (m Model) step(in core.MultiInputFrame) core.StepResult {
	if mg, ok := m.game.(registry.MultiPlayerGame); ok {
		return mg.StepMulti(in)
	}
	return m.game.Step(in.Player1())
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".duotris", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// State returns the last known game state.
func (m Model) State() core.GameState {
	return m.gameState
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run plays game in the terminal until the player quits or goes back.
// It reports whether the player asked for the menu.
func Run(game registry.Game, store *storage.Store, sound *audio.Player, cfg core.RuntimeConfig) (backToMenu bool, err error) {
	model := NewModel(game, store, sound, cfg)

	p := tea.NewProgram(
		backOnMenu{model},
		tea.WithAltScreen(),
	)

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	if b, ok := final.(backOnMenu); ok {
		return b.Model.BackToMenu(), nil
	}
	return false, nil
}

// backOnMenu ends a standalone program when the game model asks for the
// menu. Inside an SSH session the session model handles that instead.
type backOnMenu struct {
	Model
}

func (b backOnMenu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := b.Model.Update(msg)
	if m, ok := next.(Model); ok {
		b.Model = m
	}
	if b.Model.BackToMenu() {
		return b, tea.Quit
	}
	return b, cmd
}
