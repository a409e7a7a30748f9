package config

import (
	_ "embed"
)

//go:embed defaults/engine.yaml
var defaultEngineYAML []byte

//go:embed defaults/maze.yaml
var defaultMazeYAML []byte

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Title: "gridstage",
		Screen: ScreenConfig{
			Width:  80,
			Height: 24,
		},
		Loop: LoopConfig{
			FrameRate:     30,
			FixedRate:     60,
			MaxFixedSteps: 5,
			Timescale:     1.0,
			QuitWhenEmpty: true,
		},
		Spacing:  1.0,
		LogLevel: "info",
		Input: InputConfig{
			ReleaseAfterMS: 150,
		},
	}
}

// DefaultMazeConfig returns the default maze configuration.
func DefaultMazeConfig() MazeConfig {
	return MazeConfig{
		Player: MazePlayer{
			Speed:   96,
			Lives:   3,
			Trigger: "downheld",
		},
		Ghosts: MazeGhosts{
			Speed:         64,
			ChaseInterval: 600,
			Diagonals:     false,
		},
		Rules: MazeRules{
			CoinScore: 10,
			TimeLimit: 120,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "score",
				MaxAt: 300,
			},
			Scaling: ScalingConfig{
				SpeedMultiplier: 0.75,
				ChaseReduction:  300,
			},
		},
	}
}
