package config

import (
	"fmt"
	"strings"
)

// ParseDifficulty converts a flag value into a preset. Empty means normal.
func ParseDifficulty(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	}
	return DifficultyNormal, fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", s)
}

// InitialIntervalForPreset returns the starting tick interval in milliseconds,
// or 0 if the preset keeps the configured value.
func InitialIntervalForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyEasy:
		return 180
	case DifficultyNormal:
		return 150
	case DifficultyHard:
		return 100
	default:
		return 0
	}
}

// IsFixedPreset returns true if the preset disables the speed-up.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplySnakePreset modifies the config based on a difficulty preset.
// The initial interval never drops below the configured minimum.
func ApplySnakePreset(cfg *SnakeConfig, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		cfg.Speed.IntervalStepMs = 0
		return
	}
	if ms := InitialIntervalForPreset(preset); ms > 0 {
		cfg.Speed.InitialIntervalMs = max(ms, cfg.Speed.MinIntervalMs)
	}
}
