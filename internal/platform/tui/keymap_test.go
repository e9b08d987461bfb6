package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// keyMsg builds a key message from its String() form.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMapKey(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		key      string
		want     core.Action
		wantQuit bool
	}{
		{"up", core.ActionUp, false},
		{"w", core.ActionUp, false},
		{"down", core.ActionDown, false},
		{"s", core.ActionDown, false},
		{"left", core.ActionLeft, false},
		{"a", core.ActionLeft, false},
		{"right", core.ActionRight, false},
		{"d", core.ActionRight, false},
		{" ", core.ActionPause, false},
		{"p", core.ActionPause, false},
		{"enter", core.ActionStart, false},
		{"esc", core.ActionBack, false},
		{"q", core.ActionQuit, true},
		{"ctrl+c", core.ActionQuit, true},
		{"x", core.ActionNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, quit := km.MapKey(keyMsg(tt.key))
			if got != tt.want || quit != tt.wantQuit {
				t.Errorf("MapKey(%q) = %v, %v; want %v, %v", tt.key, got, quit, tt.want, tt.wantQuit)
			}
		})
	}
}

func TestMapKeyToFrame(t *testing.T) {
	km := NewKeyMapper()
	frame := core.NewInputFrame()

	for _, k := range []string{"up", "left", "x"} {
		if km.MapKeyToFrame(keyMsg(k), &frame) {
			t.Fatalf("%q reported as quit", k)
		}
	}
	if km.MapKeyToFrame(keyMsg("q"), &frame) != true {
		t.Fatal("q not reported as quit")
	}

	got := frame.Actions()
	if len(got) != 2 || got[0] != core.ActionUp || got[1] != core.ActionLeft {
		t.Errorf("frame actions = %v, want [Up Left]", got)
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()

	tests := []struct {
		key  string
		want MenuAction
	}{
		{"up", MenuActionUp},
		{"k", MenuActionUp},
		{"down", MenuActionDown},
		{"j", MenuActionDown},
		{"enter", MenuActionSelect},
		{" ", MenuActionSelect},
		{"esc", MenuActionBack},
		{"tab", MenuActionScoreboard},
		{"q", MenuActionQuit},
		{"z", MenuActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := km.MapKeyToMenuAction(keyMsg(tt.key)); got != tt.want {
				t.Errorf("MapKeyToMenuAction(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestKeyMapperRebind(t *testing.T) {
	km := NewKeyMapper()
	km.Game.Pause.SetEnabled(false)
	km.Game.Start.SetKeys("x")

	if got, _ := km.MapKey(keyMsg("p")); got != core.ActionNone {
		t.Errorf("disabled pause still maps to %v", got)
	}
	if got, _ := km.MapKey(keyMsg("x")); got != core.ActionStart {
		t.Errorf("rebound start = %v", got)
	}
	if got, _ := km.MapKey(keyMsg("enter")); got != core.ActionNone {
		t.Errorf("old start key still maps to %v", got)
	}
}
