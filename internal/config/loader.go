package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserDir is the per-user configuration directory under $HOME.
const UserDir = ".gridstage"

// LoadEngine loads the engine configuration.
// Search order: customPath -> ~/.gridstage/engine.yaml -> ./configs/engine.yaml -> embedded default
func LoadEngine(customPath string) (EngineConfig, error) {
	cfg, err := load(customPath, "engine.yaml", defaultEngineYAML, DefaultEngineConfig)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadMaze loads the maze demo configuration.
// Search order: customPath -> ~/.gridstage/maze.yaml -> ./configs/maze.yaml -> embedded default
func LoadMaze(customPath string) (MazeConfig, error) {
	return load(customPath, "maze.yaml", defaultMazeYAML, DefaultMazeConfig)
}

// load fills a copy of the hard-coded defaults from the first readable
// source, so a file only needs the keys it changes.
func load[T any](customPath, filename string, embedded []byte, fallback func() T) (T, error) {
	cfg := fallback()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if c, ok := tryFile(userCfgPath, fallback); ok {
			return c, nil
		}
	}

	// Try local configs directory
	if c, ok := tryFile(filepath.Join("configs", filename), fallback); ok {
		return c, nil
	}

	// Use embedded default YAML
	embeddedCfg := fallback()
	if err := yaml.Unmarshal(embedded, &embeddedCfg); err != nil {
		return fallback(), nil // Fallback to hardcoded if embed fails
	}
	return embeddedCfg, nil
}

func tryFile[T any](path string, fallback func() T) (T, bool) {
	cfg := fallback()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserDir, filename)
}

// UserPrefsPath returns the default preference file location.
func UserPrefsPath() string {
	return userConfigPath("prefs.txt")
}

// ApplyMazePreset modifies the config based on a difficulty preset.
func ApplyMazePreset(cfg *MazeConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}
}
