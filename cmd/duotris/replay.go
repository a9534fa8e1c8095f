package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duotris/internal/platform/tui"
	"github.com/vovakirdan/duotris/internal/replay"
	"github.com/vovakirdan/duotris/internal/storage"
)

var flagWatch bool

var replayCmd = &cobra.Command{
	Use:   "replay <id>",
	Short: "Verify or watch a recorded round",
	Long: `Re-simulate a stored round from its seed, config and inputs and
check that it ends with the recorded score, lines and pieces.

With --watch the round is played back in the terminal instead.
Playback controls: P pause, F fast-forward, Esc/Q leave.

Examples:
  duotris replay 3f2a9c1e-...
  duotris replay 3f2a9c1e-... --watch`,
	Args: cobra.ExactArgs(1),
	Run:  runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&flagWatch, "watch", false, "Play the round back instead of verifying it")
}

func runReplay(_ *cobra.Command, args []string) {
	store := openStore()
	if store == nil {
		os.Exit(1)
	}

	r, err := store.ReplayByID(args[0])
	store.Close()
	if err != nil {
		if errors.Is(err, storage.ErrReplayNotFound) {
			fmt.Fprintf(os.Stderr, "Error: no replay %q. Run 'duotris replays' to list them.\n", args[0])
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	if flagWatch {
		if _, err := tui.RunReplay(r, runtimeConfig()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	got, err := replay.Verify(r)
	switch {
	case errors.Is(err, replay.ErrMismatch):
		fmt.Fprintf(os.Stderr, "MISMATCH %s\n  %v\n", r.ID, err)
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK %s  %s  seed %d  %d ticks\n", r.ID, r.GameID, r.Seed, r.Ticks)
	fmt.Printf("   score %d  lines %d  pieces %d  game over %t\n", got.Score, got.Lines, got.Locks, got.GameOver)
}
