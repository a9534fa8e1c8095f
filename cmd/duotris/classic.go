package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/platform/classic"
	"github.com/vovakirdan/duotris/internal/replay"
)

var classicCmd = &cobra.Command{
	Use:   "classic",
	Short: "Play solo in the bare terminal loop",
	Long: `Play a solo round without Bubble Tea: one key per tick, step,
redraw, sleep. The round is recorded like any other.

Controls:
  Left/Right/A/D/H/L  - Move
  Up/W/K              - Rotate
  Down/S/J            - Soft drop
  Enter/X             - Hard drop
  Space               - Swap
  P                   - Pause
  Q/Esc               - Quit`,
	Args: cobra.NoArgs,
	Run:  runClassic,
}

func init() {
	addRoundFlags(classicCmd)
	classicCmd.Flags().BoolVar(&flagSound, "sound", false, "Play sound cues")
}

func runClassic(_ *cobra.Command, _ []string) {
	if err := applyGameFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	game := duotris.New(duotris.ModeSolo)

	term, err := classic.NewTcellTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w, h := term.Size()
	game.Reset(core.RuntimeConfig{ScreenW: w, ScreenH: h, TickRate: flagFPS, Seed: roundSeed()})

	store := openStore()
	sound := openSound()
	recorder := replay.NewRecorder(game.ID(), game.Seed(), game.Config())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	state, runErr := classic.Run(ctx, term, game, classic.Options{
		Width:         w,
		Height:        h,
		TickRate:      flagFPS,
		GameOverPause: 2 * time.Second,
		BeforeStep: func(in core.InputFrame) {
			frame := core.NewMultiInputFrame()
			frame.SetPlayer(core.Player1, in)
			recorder.Record(frame)
		},
		AfterStep: func(res core.StepResult) {
			if sound != nil {
				sound.Handle(res.Events)
			}
		},
	})
	stop()
	term.Close()

	if store != nil {
		if state.GameOver || state.Locks > 0 {
			if err := store.SaveReplay(recorder.Finish(game)); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save replay: %v\n", err)
			}
		}
		store.Close()
	}
	if sound != nil {
		sound.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
	fmt.Printf("Score %d  Lines %d  Pieces %d\n", state.Score, state.Lines, state.Locks)
}
