package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const duotrisFile = "duotris.yaml"

// LoadDuotris loads the game configuration.
// Search order: customPath -> ~/.duotris/configs/duotris.yaml -> ./configs/duotris.yaml -> embedded default
// Files only need the keys they override; missing keys keep default values.
func LoadDuotris(customPath string) (DuotrisConfig, error) {
	cfg := DefaultDuotrisConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory, then the local configs directory
	candidates := []string{userConfigPath(duotrisFile), filepath.Join("configs", duotrisFile)}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		loaded := cfg
		if err := yaml.Unmarshal(data, &loaded); err == nil && loaded.Validate() == nil {
			return loaded, nil
		}
	}

	// Use embedded default YAML
	loaded := cfg
	if err := yaml.Unmarshal(defaultDuotrisYAML, &loaded); err != nil {
		return DefaultDuotrisConfig(), nil // Fallback to hardcoded if embed fails
	}
	return loaded, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".duotris", "configs", filename)
}

// ApplyDuotrisPreset modifies the config based on a difficulty preset.
func ApplyDuotrisPreset(cfg *DuotrisConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust base gravity for the extremes
	switch preset {
	case DifficultyEasy:
		cfg.Timing.DropEvery = 12
	case DifficultyHard:
		cfg.Timing.DropEvery = 7
	}
}
