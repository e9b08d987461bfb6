package snake

import (
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/tui-snake/internal/config"
)

// Mode selects what happens when the head crosses the grid boundary.
type Mode string

const (
	// ModeWalls ends the round when the head leaves the grid.
	ModeWalls Mode = "walls"
	// ModeWrap teleports the head to the opposite edge.
	ModeWrap Mode = "walls-through"
)

// ParseMode accepts the canonical names plus the short "wrap" alias.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "walls":
		return ModeWalls, nil
	case "wrap", "walls-through", "through":
		return ModeWrap, nil
	}
	return ModeWalls, fmt.Errorf("snake: unknown mode %q (want walls or wrap)", s)
}

func (m Mode) String() string {
	return string(m)
}

// Title returns the display name of the mode.
func (m Mode) Title() string {
	if m == ModeWrap {
		return "Walls-Through"
	}
	return "Walls"
}

// Settings are the engine constants, fixed for the lifetime of an Engine.
type Settings struct {
	GridSize        int
	InitialInterval time.Duration
	IntervalStep    time.Duration // Subtracted from the interval per food eaten
	MinInterval     time.Duration
	FoodReward      int
	FixedSpeed      bool // No speed-up, IntervalStep is ignored
}

// DefaultSettings returns the classic 20x20 board at 150ms per tick.
func DefaultSettings() Settings {
	return Settings{
		GridSize:        20,
		InitialInterval: 150 * time.Millisecond,
		IntervalStep:    5 * time.Millisecond,
		MinInterval:     50 * time.Millisecond,
		FoodReward:      10,
	}
}

// SettingsFromConfig converts the YAML configuration into engine settings.
func SettingsFromConfig(cfg config.SnakeConfig) Settings {
	return Settings{
		GridSize:        cfg.Board.GridSize,
		InitialInterval: cfg.Speed.InitialInterval(),
		IntervalStep:    cfg.Speed.IntervalStep(),
		MinInterval:     cfg.Speed.MinInterval(),
		FoodReward:      cfg.Score.FoodReward,
		FixedSpeed:      cfg.Speed.IntervalStepMs == 0,
	}.normalized()
}

// normalized replaces out-of-range values with defaults.
// The grid must fit the initial 3-segment snake plus one food cell.
func (s Settings) normalized() Settings {
	def := DefaultSettings()
	if s.GridSize < 4 {
		s.GridSize = def.GridSize
	}
	if s.MinInterval <= 0 {
		s.MinInterval = def.MinInterval
	}
	if s.InitialInterval <= 0 {
		s.InitialInterval = def.InitialInterval
	}
	if s.InitialInterval < s.MinInterval {
		s.InitialInterval = s.MinInterval
	}
	switch {
	case s.FixedSpeed:
		s.IntervalStep = 0
	case s.IntervalStep <= 0:
		s.IntervalStep = def.IntervalStep
	}
	if s.FoodReward <= 0 {
		s.FoodReward = def.FoodReward
	}
	return s
}
