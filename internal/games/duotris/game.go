// Package duotris drives the tetris board as an arcade game: it applies one
// action per player each tick, runs gravity on a configurable cadence and
// renders the playfield with its side panel.
package duotris

import (
	"io"
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/registry"
	"github.com/vovakirdan/duotris/internal/tetris"
)

// Mode selects the control scheme.
type Mode string

const (
	// ModeSolo: one player steers the active piece and swaps between pieces.
	ModeSolo Mode = "solo"
	// ModeCoop: each player owns a slot; a lone piece answers to both.
	ModeCoop Mode = "coop"
)

// Registry identifiers.
const (
	IDSolo = "duotris"
	IDCoop = "duotris_coop"
)

// Package-level settings applied on the next Reset, set by the CLI.
var (
	configPath       string
	difficultyPreset string
	logger           = log.New(io.Discard)
)

// SetConfigPath sets a custom config file path.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset (easy, normal, hard, fixed).
func SetDifficultyPreset(preset string) {
	difficultyPreset = preset
}

// SetLogger routes game events to l. Nil restores the silent default.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard)
	}
	logger = l
}

// Game implements registry.Game for both modes.
type Game struct {
	mode     Mode
	override *config.DuotrisConfig

	cfg        config.DuotrisConfig
	difficulty *config.DifficultyManager
	log        *log.Logger

	board     *tetris.Board
	rng       *rand.Rand
	seed      int64
	tick      uint64
	gravityAt int // ticks since the last gravity step
	dropEvery int
	paused    bool

	screenW int
	screenH int
}

// New creates a game in the given mode using the package-level settings.
func New(mode Mode) *Game {
	return &Game{mode: mode}
}

// NewWithConfig creates a game that ignores config files and presets.
func NewWithConfig(mode Mode, cfg config.DuotrisConfig) *Game {
	return &Game{mode: mode, override: &cfg}
}

var _ registry.MultiPlayerGame = (*Game)(nil)

// ModeFor maps a registry identifier back to its mode.
func ModeFor(gameID string) (Mode, bool) {
	switch gameID {
	case IDSolo:
		return ModeSolo, true
	case IDCoop:
		return ModeCoop, true
	}
	return "", false
}

func init() {
	registry.Register(IDSolo, func() registry.Game {
		return New(ModeSolo)
	})
	registry.Register(IDCoop, func() registry.Game {
		return New(ModeCoop)
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeCoop {
		return IDCoop
	}
	return IDSolo
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeCoop {
		return "Duotris (Co-op)"
	}
	return "Duotris"
}

// Players returns how many players feed input.
func (g *Game) Players() int {
	if g.mode == ModeCoop {
		return 2
	}
	return 1
}

// Mode returns the control scheme.
func (g *Game) Mode() Mode {
	return g.mode
}

// Seed returns the seed of the current round.
func (g *Game) Seed() int64 {
	return g.seed
}

// Config returns the configuration the current round runs with.
func (g *Game) Config() config.DuotrisConfig {
	return g.cfg
}

// Board exposes the simulation for tests and tools.
func (g *Game) Board() *tetris.Board {
	return g.board
}

func (g *Game) loadConfig() config.DuotrisConfig {
	if g.override != nil {
		return *g.override
	}

	cfg, err := config.LoadDuotris(configPath)
	if err != nil {
		g.log.Warn("using default config", "path", configPath, "err", err)
		cfg = config.DefaultDuotrisConfig()
	}
	if difficultyPreset != "" {
		config.ApplyDuotrisPreset(&cfg, config.DifficultyPreset(difficultyPreset))
	}
	return cfg
}

// Reset initializes/restarts the game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.log = logger
	g.cfg = g.loadConfig()
	g.difficulty = config.NewDifficultyManager(g.cfg.Difficulty)

	g.seed = cfg.Seed
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.board = tetris.NewBoard(tetris.NewRandomSource(cfg.Seed))
	g.tick = 0
	g.gravityAt = 0
	g.dropEvery = g.currentDropEvery()
	g.paused = false
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH

	g.log.Debug("round started", "mode", g.mode, "seed", g.seed, "drop_every", g.dropEvery)
}

func (g *Game) currentDropEvery() int {
	return g.difficulty.DropEvery(g.cfg.Timing.DropEvery, g.board.Score(), int(g.tick)) //nolint:gosec // tick fits in int
}

// Step advances the game by one tick with input from Player 1 only.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	multi := core.NewMultiInputFrame()
	multi.SetPlayer(core.Player1, in)
	return g.StepMulti(multi)
}

// StepMulti advances the game by one tick.
func (g *Game) StepMulti(in core.MultiInputFrame) core.StepResult {
	if g.board.GameOver() {
		if in.Player1().Has(core.ActionRestart) || in.Player2().Has(core.ActionRestart) {
			g.Reset(core.RuntimeConfig{
				Seed:    g.rng.Int63(),
				ScreenW: g.screenW,
				ScreenH: g.screenH,
			})
		}
		return core.StepResult{State: g.State()}
	}

	if in.Player1().Has(core.ActionPause) || in.Player2().Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	g.tick++
	before := g.board.Stats()

	g.applyInput(in)

	g.gravityAt++
	if g.gravityAt >= g.dropEvery {
		g.gravityAt = 0
		g.gravity()
	}
	g.dropEvery = g.currentDropEvery()

	return core.StepResult{State: g.State(), Events: g.events(before)}
}

// gravity moves the live pieces down one row, the active slot first. The
// second piece only falls if the first drop left two pieces live.
func (g *Game) gravity() {
	first := g.board.ActiveSlot()
	if g.board.ActiveCount() < tetris.MaxActive {
		g.board.SoftDrop(first)
		return
	}
	g.board.SoftDrop(first)
	if g.board.ActiveCount() == tetris.MaxActive {
		g.board.SoftDrop(1 - first)
	}
}

func (g *Game) events(before tetris.Stats) []core.Event {
	after := g.board.Stats()
	var events []core.Event

	if n := after.Locks - before.Locks; n > 0 {
		events = append(events, core.Event{Kind: core.EventLock, Value: n})
	}
	if n := after.Lines - before.Lines; n > 0 {
		events = append(events, core.Event{Kind: core.EventLineClear, Value: n})
		g.log.Debug("lines cleared", "lines", n, "score", g.board.Score())
	}
	if after.DualSpawns > before.DualSpawns {
		events = append(events, core.Event{Kind: core.EventDualSpawn, Value: 2})
		g.log.Debug("two pieces spawned", "tick", g.tick)
	}
	if g.board.GameOver() {
		events = append(events, core.Event{Kind: core.EventGameOver, Value: g.board.Score()})
		g.log.Info("game over", "mode", g.mode, "score", g.board.Score(), "lines", after.Lines, "ticks", g.tick)
	}
	return events
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.board.Score(),
		Lines:    g.board.Stats().Lines,
		Locks:    g.board.Stats().Locks,
		GameOver: g.board.GameOver(),
		Paused:   g.paused,
	}
}

// Level returns the difficulty level in [0, 1].
func (g *Game) Level() float64 {
	return g.difficulty.Level(g.board.Score(), int(g.tick)) //nolint:gosec // tick fits in int
}
