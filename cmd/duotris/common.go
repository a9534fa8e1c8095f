package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/vovakirdan/duotris/internal/audio"
	"github.com/vovakirdan/duotris/internal/config"
	"github.com/vovakirdan/duotris/internal/core"
	"github.com/vovakirdan/duotris/internal/games/duotris"
	"github.com/vovakirdan/duotris/internal/storage"
)

// terminalSize returns the size of stdout, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}

func runtimeConfig() core.RuntimeConfig {
	w, h := terminalSize()
	return core.RuntimeConfig{
		ScreenW:  w,
		ScreenH:  h,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// roundSeed keeps --seed when given and draws a fresh one otherwise.
func roundSeed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// applyGameFlags hands --config and --difficulty to rounds created after it.
func applyGameFlags() error {
	if flagDifficulty != "" {
		if _, err := config.ParsePreset(flagDifficulty); err != nil {
			return err
		}
	}
	duotris.SetConfigPath(flagConfig)
	duotris.SetDifficultyPreset(flagDifficulty)
	return nil
}

// gameConfig loads the config rounds will run with, preset applied.
func gameConfig() (config.DuotrisConfig, error) {
	cfg, err := config.LoadDuotris(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return cfg, err
		}
		config.ApplyDuotrisPreset(&cfg, preset)
	}
	return cfg, nil
}

// openStore opens the replay database. Rounds still run without one.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open replay database: %v\n", err)
		return nil
	}
	return store
}

// openSound returns nil unless --sound or audio.enabled asks for cues and
// the speaker opens.
func openSound() *audio.Player {
	cfg, err := config.LoadDuotris(flagConfig)
	if err != nil {
		cfg = config.DefaultDuotrisConfig()
	}
	if !flagSound && !cfg.Audio.Enabled {
		return nil
	}

	p := audio.NewPlayer(cfg.Audio)
	if err := p.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: sound disabled: %v\n", err)
		return nil
	}
	return p
}
