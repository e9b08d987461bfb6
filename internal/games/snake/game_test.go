package snake

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/registry"
)

func newGame(t *testing.T, id string) *Game {
	t.Helper()
	g, err := registry.Create(id)
	if err != nil {
		t.Fatalf("registry.Create(%q): %v", id, err)
	}
	g.Reset(core.RuntimeConfig{Seed: 42, ScreenW: 80, ScreenH: 24})
	return g.(*Game)
}

func frame(actions ...core.Action) core.InputFrame {
	in := core.NewInputFrame()
	for _, a := range actions {
		in.Set(a)
	}
	return in
}

func TestRegisteredVariants(t *testing.T) {
	tests := []struct {
		id    string
		mode  Mode
		title string
	}{
		{"snake", ModeWalls, "Snake"},
		{"snake_wrap", ModeWrap, "Snake (Walls-Through)"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			g := newGame(t, tt.id)
			if g.ID() != tt.id {
				t.Errorf("ID() = %q, want %q", g.ID(), tt.id)
			}
			if g.Mode() != tt.mode {
				t.Errorf("Mode() = %v, want %v", g.Mode(), tt.mode)
			}
			if g.Title() != tt.title {
				t.Errorf("Title() = %q, want %q", g.Title(), tt.title)
			}
			if m, ok := ModeForID(tt.id); !ok || m != tt.mode {
				t.Errorf("ModeForID(%q) = %v, %v", tt.id, m, ok)
			}
		})
	}
}

func TestGameStartsOnStartAction(t *testing.T) {
	g := newGame(t, "snake")

	if res := g.Tick(); res.State.Running {
		t.Fatal("game running before start")
	}

	res := g.Step(frame(core.ActionStart))
	if !res.State.Running {
		t.Fatal("game not running after start")
	}
	if res.NextTick != DefaultSettings().InitialInterval {
		t.Errorf("NextTick = %v, want %v", res.NextTick, DefaultSettings().InitialInterval)
	}

	// A second start while running is ignored.
	g.Tick()
	g.Step(frame(core.ActionStart))
	if head, _ := g.Engine().Snapshot().Head(); head.X != 11 {
		t.Errorf("head.X = %d, want 11 (start while running must not reset)", head.X)
	}
}

func TestGameStepAppliesLastDirection(t *testing.T) {
	g := newGame(t, "snake")
	g.Step(frame(core.ActionStart))
	g.Engine().food = core.Point{X: 0, Y: 0}

	g.Step(frame(core.ActionUp, core.ActionDown))
	g.Tick()

	head, _ := g.Engine().Snapshot().Head()
	if head != (core.Point{X: 10, Y: 11}) {
		t.Errorf("head = %v, want (10,11)", head)
	}
}

func TestGamePauseToggle(t *testing.T) {
	g := newGame(t, "snake")
	g.Step(frame(core.ActionStart))

	res := g.Step(frame(core.ActionPause))
	if !res.State.Paused {
		t.Fatal("not paused after pause action")
	}
	res = g.Step(frame(core.ActionPause))
	if res.State.Paused {
		t.Fatal("still paused after second pause action")
	}
}

func TestGameEndedReportedOnce(t *testing.T) {
	g := newGame(t, "snake")
	g.Step(frame(core.ActionStart))
	g.Engine().food = core.Point{X: 0, Y: 0}

	ended := 0
	for range 30 {
		res := g.Tick()
		if res.Ended {
			ended++
		}
	}
	if ended != 1 {
		t.Fatalf("Ended reported %d times, want 1", ended)
	}
	st := g.State()
	if !st.GameOver || st.Running {
		t.Errorf("state = %+v, want game over and not running", st)
	}

	g.Step(frame(core.ActionStart))
	if st := g.State(); st.GameOver || !st.Running {
		t.Errorf("after restart state = %+v", st)
	}
}

func TestGameRender(t *testing.T) {
	g := newGame(t, "snake")
	scr := core.NewScreen(80, 24)

	g.Render(scr)
	if !strings.Contains(scr.String(), "Press Enter to start") {
		t.Errorf("idle render missing start prompt:\n%s", scr)
	}

	g.Step(frame(core.ActionStart))
	g.Render(scr)
	out := scr.String()
	if !strings.Contains(out, glyphHead) {
		t.Errorf("render missing snake head:\n%s", out)
	}
	if !strings.Contains(scr.Row(0), "Score: 0") {
		t.Errorf("HUD row = %q, want score", scr.Row(0))
	}

	if c := scr.GetCell((80-42)/2, hudHeight); c.Rune != '┌' || c.Color != core.ColorBorder {
		t.Errorf("border corner = %+v", c)
	}
}

func TestGameTooSmall(t *testing.T) {
	g := newGame(t, "snake")
	g.Resize(30, 10)
	g.Step(frame(core.ActionStart))

	before := g.Engine().Snapshot()
	g.Tick()
	if after := g.Engine().Snapshot(); after.Ticks != before.Ticks {
		t.Error("engine ticked while the window was too small")
	}

	scr := core.NewScreen(30, 10)
	g.Render(scr)
	if !strings.Contains(scr.String(), "Window too small") {
		t.Errorf("missing too-small overlay:\n%s", scr)
	}
}

func TestConfigureAffectsNewGames(t *testing.T) {
	old := CurrentSettings()
	t.Cleanup(func() { Configure(old) })

	s := DefaultSettings()
	s.GridSize = 12
	Configure(s)

	g := newGame(t, "snake_wrap")
	if got := g.Engine().Settings().GridSize; got != 12 {
		t.Errorf("GridSize = %d, want 12", got)
	}
}
