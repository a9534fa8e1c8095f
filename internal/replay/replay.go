// Package replay records the inputs of a round and plays them back against
// a fresh game. Rounds are deterministic for a given seed and config, so a
// replay is just the seed, the config and the actions fed on each tick.
package replay

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
)

var (
	// ErrUnknownGame is returned for a replay whose game is not a duotris mode.
	ErrUnknownGame = errors.New("replay: unknown game")
	// ErrMismatch is returned by Verify when the re-simulation disagrees
	// with the recorded outcome.
	ErrMismatch = errors.New("replay: outcome mismatch")
)

// Input is one action a player fed to the game on a given tick.
type Input struct {
	Tick   uint64
	Player core.PlayerID
	Action core.Action
}

// Replay is a finished round.
type Replay struct {
	ID        string
	GameID    string
	Seed      int64
	Config    config.DuotrisConfig
	Ticks     uint64
	Score     int
	Lines     int
	Locks     int
	GameOver  bool // false when the round was abandoned
	Inputs    []Input
	CreatedAt time.Time
}

// Outcome is what a round ended with.
type Outcome struct {
	Score    int
	Lines    int
	Locks    int
	GameOver bool
}

// Outcome returns the recorded result.
func (r Replay) Outcome() Outcome {
	return Outcome{Score: r.Score, Lines: r.Lines, Locks: r.Locks, GameOver: r.GameOver}
}

// Frames expands the inputs into one frame per tick.
func (r Replay) Frames() []core.MultiInputFrame {
	frames := make([]core.MultiInputFrame, r.Ticks)
	for i := range frames {
		frames[i] = core.NewMultiInputFrame()
	}
	for _, in := range r.Inputs {
		if in.Tick >= r.Ticks {
			continue
		}
		f := frames[in.Tick].Player(in.Player)
		f.Set(in.Action)
		frames[in.Tick].SetPlayer(in.Player, f)
	}
	return frames
}

// Recorder collects the frames fed to one round.
type Recorder struct {
	gameID string
	seed   int64
	cfg    config.DuotrisConfig
	tick   uint64
	inputs []Input
}

// NewRecorder starts recording a round that was reset with seed.
func NewRecorder(gameID string, seed int64, cfg config.DuotrisConfig) *Recorder {
	return &Recorder{gameID: gameID, seed: seed, cfg: cfg}
}

// Record stores the frame for the current tick and advances the tick.
// Call it once per StepMulti, with the same frame, before stepping.
func (r *Recorder) Record(in core.MultiInputFrame) {
	for _, player := range []core.PlayerID{core.Player1, core.Player2} {
		var actions []core.Action
		for action, pressed := range in.Player(player).Actions {
			if pressed && action != core.ActionNone {
				actions = append(actions, action)
			}
		}
		slices.Sort(actions)
		for _, action := range actions {
			r.inputs = append(r.inputs, Input{Tick: r.tick, Player: player, Action: action})
		}
	}
	r.tick++
}

// Ticks returns how many frames have been recorded.
func (r *Recorder) Ticks() uint64 {
	return r.tick
}

// Finish closes the recording with the game's final state.
func (r *Recorder) Finish(g *duotris.Game) Replay {
	state := g.State()
	return Replay{
		ID:        uuid.NewString(),
		GameID:    r.gameID,
		Seed:      r.seed,
		Config:    r.cfg,
		Ticks:     r.tick,
		Score:     state.Score,
		Lines:     state.Lines,
		Locks:     state.Locks,
		GameOver:  state.GameOver,
		Inputs:    slices.Clone(r.inputs),
		CreatedAt: time.Now(),
	}
}

// Player steps a fresh game through a replay one frame at a time.
type Player struct {
	replay Replay
	game   *duotris.Game
	frames []core.MultiInputFrame
	next   int
}

// NewPlayer builds the game for r and resets it with the recorded seed.
func NewPlayer(r Replay) (*Player, error) {
	mode, ok := duotris.ModeFor(r.GameID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGame, r.GameID)
	}

	g := duotris.NewWithConfig(mode, r.Config)
	g.Reset(core.RuntimeConfig{
		ScreenW:  core.DefaultConfig().ScreenW,
		ScreenH:  core.DefaultConfig().ScreenH,
		TickRate: r.Config.Timing.TickRate,
		Seed:     r.Seed,
	})

	return &Player{replay: r, game: g, frames: r.Frames()}, nil
}

// Game returns the game being driven.
func (p *Player) Game() *duotris.Game {
	return p.game
}

// Replay returns the replay being played.
func (p *Player) Replay() Replay {
	return p.replay
}

// Done reports whether every frame has been fed.
func (p *Player) Done() bool {
	return p.next >= len(p.frames)
}

// Progress returns the number of frames fed and the total.
func (p *Player) Progress() (int, int) {
	return p.next, len(p.frames)
}

// Step feeds the next frame. It returns false once the replay is exhausted.
func (p *Player) Step() (core.StepResult, bool) {
	if p.Done() {
		return core.StepResult{State: p.game.State()}, false
	}
	res := p.game.StepMulti(p.frames[p.next])
	p.next++
	return res, true
}

// Simulate plays r to the end without rendering.
func Simulate(r Replay) (Outcome, error) {
	p, err := NewPlayer(r)
	if err != nil {
		return Outcome{}, err
	}
	for {
		if _, ok := p.Step(); !ok {
			break
		}
	}

	state := p.game.State()
	return Outcome{
		Score:    state.Score,
		Lines:    state.Lines,
		Locks:    state.Locks,
		GameOver: state.GameOver,
	}, nil
}

// Verify re-simulates r and checks that it ends the way it was recorded.
func Verify(r Replay) (Outcome, error) {
	got, err := Simulate(r)
	if err != nil {
		return got, err
	}
	if want := r.Outcome(); got != want {
		return got, fmt.Errorf("%w: recorded score %d lines %d locks %d, replayed score %d lines %d locks %d (game over %t)",
			ErrMismatch, want.Score, want.Lines, want.Locks, got.Score, got.Lines, got.Locks, got.GameOver)
	}
	return got, nil
}
