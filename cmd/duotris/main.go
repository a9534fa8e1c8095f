// duotris is a falling-block game with two pieces in play at once.
//
// Usage:
//
//	duotris list              - List available modes
//	duotris play [mode]       - Play solo or local co-op
//	duotris menu              - Pick a mode interactively
//	duotris classic           - Play solo in the bare tcell loop
//	duotris serve             - Start SSH server for remote co-op
//	duotris replays           - List recorded rounds
//	duotris replay <id>       - Verify or watch a recorded round
//
// Global flags:
//
//	--fps <rate>       - Set tick rate (default: 15)
//	--seed <value>     - Set RNG seed for reproducible gameplay
//	--db <path>        - Set database path (default: ~/.duotris/replays.db)
//	--log-file <path>  - Write debug logs to a file
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/duotris/internal/games/duotris"
)

var (
	// Global flags
	flagFPS     int
	flagSeed    int64
	flagDBPath  string
	flagLogFile string

	// Shared by the commands that start a round
	flagConfig     string
	flagDifficulty string
	flagSound      bool
)

// fileLogger is set when --log-file is given.
var fileLogger *log.Logger

func main() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "duotris",
	Short: "Duotris - falling blocks, two at a time",
	Long: `Duotris is a terminal falling-block game where two pieces can be
in play at once. Steer one and swap to the other, or share the board
with a friend on the same keyboard or over SSH.

Available commands:
  list     - Show the available modes
  play     - Play a mode directly
  menu     - Interactive mode picker
  classic  - Solo round in the bare terminal loop
  serve    - Start SSH server for online co-op
  replays  - List recorded rounds
  replay   - Verify or watch one round

Examples:
  duotris play
  duotris play duotris_coop --difficulty hard
  duotris menu --sound
  duotris serve --ssh :2222
  duotris replay 3f2a... --watch`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 15, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.duotris/replays.db", "Path to replay database")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write debug logs to this file")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(classicCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replaysCmd)
	rootCmd.AddCommand(replayCmd)
}

// addRoundFlags registers the flags of commands that start a round.
func addRoundFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func setupLogging(_ *cobra.Command, _ []string) error {
	if flagLogFile == "" {
		return nil
	}

	f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	logFile = f
	fileLogger = log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Level:           log.DebugLevel,
		Prefix:          "duotris",
	})
	duotris.SetLogger(fileLogger)
	return nil
}

var logFile *os.File

func closeLog() {
	if logFile != nil {
		logFile.Close()
	}
}
