// Package config provides YAML-based engine and demo configuration loading
// and difficulty management.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/gridstage/internal/core"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// EngineConfig contains the engine runtime settings.
type EngineConfig struct {
	Title    string       `yaml:"title"`
	Screen   ScreenConfig `yaml:"screen"`
	Loop     LoopConfig   `yaml:"loop"`
	Prefs    string       `yaml:"prefs"`      // preference file, empty disables persistence
	Levels   string       `yaml:"levels_dir"` // extra level directory, empty uses the built-in levels
	Spacing  float64      `yaml:"tile_spacing"`
	LogLevel string       `yaml:"log_level"`
	Input    InputConfig  `yaml:"input"`
}

// ScreenConfig defines the render target size in cells.
type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LoopConfig defines the main loop cadence.
type LoopConfig struct {
	FrameRate     int     `yaml:"frame_rate"`      // frames per second
	FixedRate     int     `yaml:"fixed_rate"`      // fixed updates per second
	MaxFixedSteps int     `yaml:"max_fixed_steps"` // per frame, excess time is dropped
	Timescale     float64 `yaml:"timescale"`       // engine-wide, multiplies global timers
	QuitWhenEmpty bool    `yaml:"quit_when_empty"` // quit once the scene stack empties
}

// InputConfig tunes the terminal input layer.
type InputConfig struct {
	// ReleaseAfterMS synthesizes a key release when no repeat arrives.
	// Terminals only report presses.
	ReleaseAfterMS int `yaml:"release_after_ms"`
}

// FrameDuration returns the duration of one frame.
func (c LoopConfig) FrameDuration() core.Time {
	return time.Second / time.Duration(c.FrameRate)
}

// FixedDelta returns the duration of one fixed update.
func (c LoopConfig) FixedDelta() core.Time {
	return time.Second / time.Duration(c.FixedRate)
}

// ReleaseAfter returns the synthesized key release delay.
func (c InputConfig) ReleaseAfter() core.Time {
	return time.Duration(c.ReleaseAfterMS) * time.Millisecond
}

// Validate checks the settings the engine cannot run without.
func (c EngineConfig) Validate() error {
	switch {
	case c.Screen.Width <= 0 || c.Screen.Height <= 0:
		return fmt.Errorf("%w: screen %dx%d", ErrInvalidConfig, c.Screen.Width, c.Screen.Height)
	case c.Loop.FrameRate <= 0:
		return fmt.Errorf("%w: frame_rate %d", ErrInvalidConfig, c.Loop.FrameRate)
	case c.Loop.FixedRate <= 0:
		return fmt.Errorf("%w: fixed_rate %d", ErrInvalidConfig, c.Loop.FixedRate)
	case c.Loop.MaxFixedSteps <= 0:
		return fmt.Errorf("%w: max_fixed_steps %d", ErrInvalidConfig, c.Loop.MaxFixedSteps)
	case c.Loop.Timescale < 0:
		return fmt.Errorf("%w: timescale %g", ErrInvalidConfig, c.Loop.Timescale)
	case c.Spacing < 0:
		return fmt.Errorf("%w: tile_spacing %g", ErrInvalidConfig, c.Spacing)
	}
	return nil
}

// MazeConfig contains all configuration for the maze demo.
type MazeConfig struct {
	Player     MazePlayer       `yaml:"player"`
	Ghosts     MazeGhosts       `yaml:"ghosts"`
	Rules      MazeRules        `yaml:"rules"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// MazePlayer defines player parameters for the maze.
type MazePlayer struct {
	Speed   float64 `yaml:"speed"` // pixels per second
	Lives   int     `yaml:"lives"`
	Trigger string  `yaml:"trigger"` // key trigger: down, up, held, downheld
}

// MazeGhosts defines ghost parameters for the maze.
type MazeGhosts struct {
	Speed         float64 `yaml:"speed"`
	ChaseInterval int     `yaml:"chase_interval_ms"` // target re-path period
	Diagonals     bool    `yaml:"diagonals"`         // random ghosts may move diagonally
}

// MazeRules defines scoring and timing for the maze.
type MazeRules struct {
	CoinScore int `yaml:"coin_score"`
	TimeLimit int `yaml:"time_limit_s"` // countdown, 0 disables it
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/seconds at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // Multiplier added to speed at max difficulty
	ChaseReduction  int     `yaml:"chase_reduction"`  // Re-path interval reduction (ms) at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
