package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/platform/tui"
	"github.com/vovakirdan/duotris/internal/registry"
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a round",
	Long: `Start a round of the given mode (default: duotris).

Solo controls:
  Left/Right or A/D  - Move
  Up/W               - Rotate
  Down/S             - Soft drop
  Enter/X            - Hard drop
  Space              - Swap to the other piece

Co-op controls (duotris_coop):
  Player 1  A/D move, W rotate, S drop, E hard drop
  Player 2  Arrows move/rotate/drop, Enter hard drop

Common:
  P          - Pause
  R          - Restart (after game over)
  B/Esc      - Back (when paused or over)
  Ctrl+S     - Screenshot
  Q/Ctrl+C   - Quit

Difficulty options:
  easy   - Slow gravity, speeds up gently
  normal - Default progression
  hard   - Fast gravity from the start
  fixed  - No progression, stays at the config's initial level

Examples:
  duotris play
  duotris play duotris_coop
  duotris play --difficulty hard --sound
  duotris play --config ./my-duotris.yaml`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{duotris.IDSolo, duotris.IDCoop},
	Run:       runPlay,
}

func init() {
	addRoundFlags(playCmd)
	playCmd.Flags().BoolVar(&flagSound, "sound", false, "Play sound cues")
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := duotris.IDSolo
	if len(args) == 1 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'duotris list' to see available modes.")
		os.Exit(1)
	}
	if err := applyGameFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	sound := openSound()

	_, runErr := tui.Run(game, store, sound, runtimeConfig())

	if sound != nil {
		sound.Close()
	}
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
