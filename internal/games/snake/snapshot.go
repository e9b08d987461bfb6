package snake

import (
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// Phase is the engine state machine position.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseRunning Phase = "running"
	PhasePaused  Phase = "paused"
)

// Snapshot is a read-only copy of the engine state for renderers and
// spectators. It shares no memory with the engine.
type Snapshot struct {
	Snake        []core.Point   `json:"snake"`
	Food         core.Point     `json:"food"`
	Score        int            `json:"score"`
	Running      bool           `json:"is_running"`
	Paused       bool           `json:"is_paused"`
	GridSize     int            `json:"grid_size"`
	Direction    core.Direction `json:"direction"`
	TickInterval time.Duration  `json:"tick_interval"`
	Mode         Mode           `json:"mode"`
	Ticks        uint64         `json:"ticks"`
}

// Phase derives the state machine position from the flags.
func (s Snapshot) Phase() Phase {
	switch {
	case !s.Running:
		return PhaseIdle
	case s.Paused:
		return PhasePaused
	default:
		return PhaseRunning
	}
}

// Head returns the head position, or false before the first round.
func (s Snapshot) Head() (core.Point, bool) {
	if len(s.Snake) == 0 {
		return core.Point{}, false
	}
	return s.Snake[0], true
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	body := make([]core.Point, len(e.snake))
	copy(body, e.snake)

	return Snapshot{
		Snake:        body,
		Food:         e.food,
		Score:        e.score,
		Running:      e.running,
		Paused:       e.paused,
		GridSize:     e.settings.GridSize,
		Direction:    e.direction,
		TickInterval: e.interval,
		Mode:         e.mode,
		Ticks:        e.ticks,
	}
}
