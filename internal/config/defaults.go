package config

import (
	_ "embed"
)

//go:embed defaults/duotris.yaml
var defaultDuotrisYAML []byte

// DefaultDuotrisConfig returns the hardcoded default configuration.
func DefaultDuotrisConfig() DuotrisConfig {
	return DuotrisConfig{
		Timing: TimingConfig{
			TickRate:        15,
			DropEvery:       10,
			GameOverPauseMs: 3000,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  0.3,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 6000,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 3.0,
			},
		},
	}
}
