package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
)

func testConfig() config.DuotrisConfig {
	cfg := config.DefaultDuotrisConfig()
	cfg.Timing.DropEvery = 4
	return cfg
}

func multi(p1, p2 []core.Action) core.MultiInputFrame {
	m := core.NewMultiInputFrame()
	for id, actions := range map[core.PlayerID][]core.Action{core.Player1: p1, core.Player2: p2} {
		f := core.NewInputFrame()
		for _, a := range actions {
			f.Set(a)
		}
		m.SetPlayer(id, f)
	}
	return m
}

// playRound drives a game with a fixed script until it ends and returns
// the recording.
func playRound(t *testing.T, mode duotris.Mode, gameID string, seed int64) Replay {
	t.Helper()

	cfg := testConfig()
	g := duotris.NewWithConfig(mode, cfg)
	g.Reset(core.RuntimeConfig{Seed: seed, ScreenW: 80, ScreenH: 24})
	rec := NewRecorder(gameID, g.Seed(), g.Config())

	p1 := []core.Action{core.ActionLeft, core.ActionRotate, core.ActionNone, core.ActionSwap, core.ActionLeft, core.ActionHardDrop}
	p2 := []core.Action{core.ActionRight, core.ActionNone, core.ActionRotate, core.ActionRight, core.ActionDown}

	for i := 0; i < 20000 && !g.State().GameOver; i++ {
		var a1, a2 []core.Action
		if a := p1[i%len(p1)]; a != core.ActionNone {
			a1 = append(a1, a)
		}
		if a := p2[i%len(p2)]; a != core.ActionNone && mode == duotris.ModeCoop {
			a2 = append(a2, a)
		}
		in := multi(a1, a2)
		rec.Record(in)
		g.StepMulti(in)
	}
	require.True(t, g.State().GameOver, "scripted round never ended")

	r := rec.Finish(g)
	assert.Equal(t, g.State().Score, r.Score)
	assert.Equal(t, g.State().Lines, r.Lines)
	assert.Equal(t, g.Board().Stats().Locks, r.Locks)
	assert.True(t, r.GameOver)
	assert.NotEmpty(t, r.ID)
	return r
}

func TestVerifySolo(t *testing.T) {
	r := playRound(t, duotris.ModeSolo, duotris.IDSolo, 99)

	got, err := Verify(r)
	require.NoError(t, err)
	assert.Equal(t, r.Outcome(), got)
}

func TestVerifyCoop(t *testing.T) {
	r := playRound(t, duotris.ModeCoop, duotris.IDCoop, 2024)

	got, err := Verify(r)
	require.NoError(t, err)
	assert.Equal(t, r.Outcome(), got)
}

func TestVerifyDetectsTampering(t *testing.T) {
	r := playRound(t, duotris.ModeSolo, duotris.IDSolo, 5)
	r.Score += 40

	_, err := Verify(r)
	require.ErrorIs(t, err, ErrMismatch)
}

func TestVerifyDetectsTruncation(t *testing.T) {
	r := playRound(t, duotris.ModeSolo, duotris.IDSolo, 5)
	// The recording stops on the tick that ended the round.
	r.Ticks--

	got, err := Verify(r)
	require.ErrorIs(t, err, ErrMismatch)
	assert.False(t, got.GameOver)
}

func TestUnknownGame(t *testing.T) {
	_, err := Simulate(Replay{GameID: "solitaire"})
	require.ErrorIs(t, err, ErrUnknownGame)
}

func TestRecorderFrames(t *testing.T) {
	rec := NewRecorder(duotris.IDCoop, 1, testConfig())
	rec.Record(multi([]core.Action{core.ActionRotate, core.ActionLeft}, nil))
	rec.Record(multi(nil, nil))
	rec.Record(multi(nil, []core.Action{core.ActionHardDrop}))

	require.Equal(t, uint64(3), rec.Ticks())
	require.Equal(t, []Input{
		{Tick: 0, Player: core.Player1, Action: core.ActionLeft},
		{Tick: 0, Player: core.Player1, Action: core.ActionRotate},
		{Tick: 2, Player: core.Player2, Action: core.ActionHardDrop},
	}, rec.inputs)

	r := Replay{Ticks: rec.Ticks(), Inputs: rec.inputs}
	frames := r.Frames()
	require.Len(t, frames, 3)
	assert.True(t, frames[0].Player1().Has(core.ActionLeft))
	assert.True(t, frames[0].Player1().Has(core.ActionRotate))
	assert.True(t, frames[1].Player1().Empty())
	assert.True(t, frames[1].Player2().Empty())
	assert.True(t, frames[2].Player2().Has(core.ActionHardDrop))
}

func TestFramesIgnoreInputsPastTheEnd(t *testing.T) {
	r := Replay{Ticks: 1, Inputs: []Input{{Tick: 5, Player: core.Player1, Action: core.ActionLeft}}}
	frames := r.Frames()
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Player1().Empty())
}

func TestPlayerProgress(t *testing.T) {
	r := playRound(t, duotris.ModeSolo, duotris.IDSolo, 77)

	p, err := NewPlayer(r)
	require.NoError(t, err)

	done, total := p.Progress()
	assert.Equal(t, 0, done)
	assert.Equal(t, int(r.Ticks), total) //nolint:gosec // small test value

	steps := 0
	for {
		if _, ok := p.Step(); !ok {
			break
		}
		steps++
	}
	assert.Equal(t, int(r.Ticks), steps) //nolint:gosec // small test value
	assert.True(t, p.Done())
	assert.True(t, p.Game().State().GameOver)
}
