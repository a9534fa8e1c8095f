package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/platform/tui"
	"github.com/vovakirdan/duotris/internal/registry"
	"github.com/vovakirdan/duotris/internal/storage"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a mode picker menu",
	Long: `Start duotris in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to pick a mode.
Going back from a finished or paused round returns to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select mode
  Tab          - Browse recorded replays
  Q            - Quit

Examples:
  duotris menu
  duotris menu --fps 20
  duotris menu --db ./replays.db --sound`,
	Run: runMenu,
}

func init() {
	addRoundFlags(menuCmd)
	menuCmd.Flags().BoolVar(&flagSound, "sound", false, "Play sound cues")
}

func runMenu(_ *cobra.Command, _ []string) {
	if err := applyGameFlags(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	sound := openSound()
	cfg := runtimeConfig()

	for {
		menuResult, err := tui.RunMenu(store, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		// Keep any size changes
		cfg = menuResult.Config

		if menuResult.Quit {
			break
		}

		if menuResult.WantsScoreboard {
			if browseReplays(store, cfg) {
				continue
			}
			break
		}

		if menuResult.GameID == "" {
			break
		}

		game, err := registry.Create(menuResult.GameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		cfg.Seed = roundSeed()
		back, err := tui.Run(game, store, sound, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
		if !back {
			break
		}
	}

	if sound != nil {
		sound.Close()
	}
	if store != nil {
		store.Close()
	}
}

// browseReplays alternates between the replay browser and playback until
// the user leaves. It reports whether they asked for the menu.
func browseReplays(store *storage.Store, cfg core.RuntimeConfig) bool {
	for {
		res, err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return true
		}
		if res.WatchID == "" || store == nil {
			return res.Back
		}

		r, err := store.ReplayByID(res.WatchID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		back, err := tui.RunReplay(r, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if !back {
			return false
		}
	}
}
