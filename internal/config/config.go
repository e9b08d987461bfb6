// Package config provides YAML-based game configuration loading, difficulty
// presets and server settings for the snake binary.
package config

import (
	"errors"
	"fmt"
	"time"
)

// SnakeConfig contains all tunable engine constants.
type SnakeConfig struct {
	Board SnakeBoard `yaml:"board"`
	Speed SnakeSpeed `yaml:"speed"`
	Score SnakeScore `yaml:"score"`
}

// SnakeBoard defines the grid.
type SnakeBoard struct {
	GridSize int `yaml:"grid_size"`
}

// SnakeSpeed defines the tick interval progression.
type SnakeSpeed struct {
	InitialIntervalMs int `yaml:"initial_interval_ms"`
	IntervalStepMs    int `yaml:"interval_step_ms"` // Subtracted per food eaten
	MinIntervalMs     int `yaml:"min_interval_ms"`
}

// SnakeScore defines scoring.
type SnakeScore struct {
	FoodReward int `yaml:"food_reward"`
}

// InitialInterval returns the starting tick interval.
func (s SnakeSpeed) InitialInterval() time.Duration {
	return time.Duration(s.InitialIntervalMs) * time.Millisecond
}

// IntervalStep returns the per-food speed-up.
func (s SnakeSpeed) IntervalStep() time.Duration {
	return time.Duration(s.IntervalStepMs) * time.Millisecond
}

// MinInterval returns the fastest allowed tick interval.
func (s SnakeSpeed) MinInterval() time.Duration {
	return time.Duration(s.MinIntervalMs) * time.Millisecond
}

// Validate reports every invalid field at once.
func (c SnakeConfig) Validate() error {
	var errs []error
	if c.Board.GridSize < 4 || c.Board.GridSize > 100 {
		errs = append(errs, fmt.Errorf("board.grid_size must be in [4, 100], got %d", c.Board.GridSize))
	}
	if c.Speed.MinIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("speed.min_interval_ms must be positive, got %d", c.Speed.MinIntervalMs))
	}
	if c.Speed.InitialIntervalMs < c.Speed.MinIntervalMs {
		errs = append(errs, fmt.Errorf("speed.initial_interval_ms (%d) must not be below min_interval_ms (%d)",
			c.Speed.InitialIntervalMs, c.Speed.MinIntervalMs))
	}
	if c.Speed.IntervalStepMs < 0 {
		errs = append(errs, fmt.Errorf("speed.interval_step_ms must not be negative, got %d", c.Speed.IntervalStepMs))
	}
	if c.Score.FoodReward <= 0 {
		errs = append(errs, fmt.Errorf("score.food_reward must be positive, got %d", c.Score.FoodReward))
	}
	return errors.Join(errs...)
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ServerConfig holds the settings of the serve command.
type ServerConfig struct {
	SSHAddr     string
	HTTPAddr    string
	HostKeyPath string
	DBPath      string
	IdleTimeout time.Duration
	LogLevel    string
	RateLimit   int // Score submissions per minute per client, 0 disables
}

// DefaultServerConfig returns the settings used when no flags are given.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		SSHAddr:     ":23234",
		HTTPAddr:    ":8080",
		HostKeyPath: ".ssh/snake_ed25519",
		DBPath:      "~/.snake/snake.db",
		IdleTimeout: 10 * time.Minute,
		LogLevel:    "info",
		RateLimit:   60,
	}
}

// Validate checks that at least one listener is enabled and values are sane.
func (c ServerConfig) Validate() error {
	var errs []error
	if c.SSHAddr == "" && c.HTTPAddr == "" {
		errs = append(errs, errors.New("at least one of ssh or http address must be set"))
	}
	if c.SSHAddr != "" && c.HostKeyPath == "" {
		errs = append(errs, errors.New("host key path is required for the ssh server"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("idle timeout must not be negative, got %s", c.IdleTimeout))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit))
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
