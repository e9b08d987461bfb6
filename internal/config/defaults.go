package config

import (
	_ "embed"
)

//go:embed defaults/snake.yaml
var defaultSnakeYAML []byte

// DefaultSnakeConfig returns the classic 20x20 board at 150ms per tick.
func DefaultSnakeConfig() SnakeConfig {
	return SnakeConfig{
		Board: SnakeBoard{
			GridSize: 20,
		},
		Speed: SnakeSpeed{
			InitialIntervalMs: 150,
			IntervalStepMs:    5,
			MinIntervalMs:     50,
		},
		Score: SnakeScore{
			FoodReward: 10,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "snake", "snake_wrap":
		return defaultSnakeYAML
	default:
		return nil
	}
}
