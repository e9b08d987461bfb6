package snake

import (
	"testing"

	"github.com/vovakirdan/tui-snake/internal/core"
)

func TestAutopilotAvoidsWall(t *testing.T) {
	s := Snapshot{
		Snake:     pts(19, 10, 18, 10, 17, 10),
		Food:      core.Point{X: 19, Y: 2},
		Running:   true,
		GridSize:  20,
		Direction: core.DirRight,
		Mode:      ModeWalls,
	}

	d, ok := Autopilot{}.Next(s)
	if !ok {
		t.Fatal("Next() found no safe move")
	}
	if d != core.DirUp {
		t.Errorf("Next() = %v, want up toward the food", d)
	}
}

func TestAutopilotUsesWrap(t *testing.T) {
	s := Snapshot{
		Snake:     pts(1, 10, 2, 10, 3, 10),
		Food:      core.Point{X: 18, Y: 10},
		Running:   true,
		GridSize:  20,
		Direction: core.DirLeft,
		Mode:      ModeWrap,
	}

	d, ok := Autopilot{}.Next(s)
	if !ok || d != core.DirLeft {
		t.Errorf("Next() = %v, %v, want left across the edge", d, ok)
	}
}

func TestAutopilotTrapped(t *testing.T) {
	// Head in the top-left corner moving up, body blocking the only other exit.
	s := Snapshot{
		Snake:     pts(0, 0, 0, 1, 1, 1, 1, 0, 2, 0),
		Running:   true,
		GridSize:  20,
		Direction: core.DirUp,
		Mode:      ModeWalls,
	}
	if _, ok := (Autopilot{}).Next(s); ok {
		t.Error("Next() reported a safe move with none available")
	}
}

func TestAutopilotScores(t *testing.T) {
	e := NewEngine(ModeWrap, DefaultSettings(), 11)
	e.Start()

	var pilot Autopilot
	for range 2000 {
		if !e.Running() {
			break
		}
		if d, ok := pilot.Next(e.Snapshot()); ok {
			e.SetDirection(d)
		}
		e.Tick()
	}
	if e.Score() < 50 {
		t.Errorf("autopilot scored %d, want at least 50", e.Score())
	}
}

func TestAutopilotIdle(t *testing.T) {
	e := NewEngine(ModeWalls, DefaultSettings(), 1)
	if _, ok := (Autopilot{}).Next(e.Snapshot()); ok {
		t.Error("Next() on idle engine returned ok")
	}
}
