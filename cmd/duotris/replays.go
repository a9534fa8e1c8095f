package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagReplayLimit int

var replaysCmd = &cobra.Command{
	Use:   "replays",
	Short: "List recorded rounds",
	Long: `List the most recent rounds stored in the replay database, newest
first. Pass an ID to 'duotris replay' to verify or watch it.

Examples:
  duotris replays
  duotris replays --limit 50
  duotris replays --db ./replays.db`,
	Args: cobra.NoArgs,
	Run:  runReplays,
}

func init() {
	replaysCmd.Flags().IntVar(&flagReplayLimit, "limit", 20, "Number of rounds to show")
}

// wideTable is the terminal width from which the date column is shown.
const wideTable = 110

func runReplays(_ *cobra.Command, _ []string) {
	store := openStore()
	if store == nil {
		os.Exit(1)
	}
	defer store.Close()

	replays, err := store.RecentReplays(flagReplayLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	if len(replays) == 0 {
		fmt.Println("No replays recorded yet.")
		return
	}

	width, _ := terminalSize()
	wide := width >= wideTable

	header := fmt.Sprintf("  %-36s  %-12s  %7s  %5s  %6s  %-9s", "ID", "Mode", "Score", "Lines", "Pieces", "Result")
	if wide {
		header += "  Date"
	}
	fmt.Println(header)

	for _, r := range replays {
		result := "game over"
		if !r.GameOver {
			result = "abandoned"
		}
		line := fmt.Sprintf("  %-36s  %-12s  %7d  %5d  %6d  %-9s", r.ID, r.GameID, r.Score, r.Lines, r.Locks, result)
		if wide {
			line += "  " + r.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Println(line)
	}
}
