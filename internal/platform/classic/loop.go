package classic

import (
	"context"
	"errors"
	"time"

	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/registry"
)

// Options configures Run.
type Options struct {
	Width, Height int           // screen buffer size
	TickRate      int           // iterations per second
	GameOverPause time.Duration // how long "Game Over" stays up

	// BeforeStep sees every frame fed to the game; AfterStep every result.
	BeforeStep func(core.InputFrame)
	AfterStep  func(core.StepResult)
}

// Run drives g until game over, a quit key or ctx cancellation. Each
// iteration reads at most one key, steps once, redraws and pauses for one
// tick. The final state is returned in every case.
func Run(ctx context.Context, term Terminal, g registry.Game, opts Options) (core.GameState, error) {
	tick := time.Second / time.Duration(max(1, opts.TickRate))
	screen := core.NewScreen(opts.Width, opts.Height)
	var prev *core.Screen

	for {
		key := term.ReadKey()
		if key == KeyQuit {
			return g.State(), nil
		}

		in := core.NewInputFrame()
		if a := key.Action(); a != core.ActionNone {
			in.Set(a)
		}
		if opts.BeforeStep != nil {
			opts.BeforeStep(in)
		}
		res := g.Step(in)
		if opts.AfterStep != nil {
			opts.AfterStep(res)
		}

		screen.Clear()
		g.Render(screen)
		blit(term, screen, prev)
		if prev == nil {
			prev = core.NewScreen(opts.Width, opts.Height)
		}
		copyScreen(prev, screen)

		if res.State.GameOver {
			showGameOver(term, opts)
			err := term.Pause(ctx, opts.GameOverPause)
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			return res.State, err
		}

		if err := term.Pause(ctx, tick); err != nil {
			if errors.Is(err, context.Canceled) {
				return res.State, nil
			}
			return res.State, err
		}
	}
}

// blit writes the rows that changed since prev, grouping runs of cells
// that share colors into one Write.
func blit(term Terminal, s, prev *core.Screen) {
	for y := 0; y < s.Height(); y++ {
		if prev != nil && rowEqual(s, prev, y) {
			continue
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)
			run := []rune{start.Rune}
			end := x + 1
			for end < s.Width() {
				c := s.GetCell(end, y)
				if c.FG != start.FG || c.BG != start.BG {
					break
				}
				run = append(run, c.Rune)
				end++
			}
			term.SetCursor(x, y)
			term.Write(string(run), start.FG, start.BG)
			x = end
		}
	}
	term.Flush()
}

func rowEqual(a, b *core.Screen, y int) bool {
	for x := 0; x < a.Width(); x++ {
		if a.GetCell(x, y) != b.GetCell(x, y) {
			return false
		}
	}
	return true
}

func copyScreen(dst, src *core.Screen) {
	for y := 0; y < src.Height(); y++ {
		for x := 0; x < src.Width(); x++ {
			dst.SetCell(x, y, src.GetCell(x, y))
		}
	}
}

func showGameOver(term Terminal, opts Options) {
	const msg = " Game Over "
	term.SetCursor(max(0, (opts.Width-len(msg))/2), opts.Height-1)
	term.Write(msg, core.ColorWhite, core.ColorRed)
	term.Flush()
}
