// Package tui provides the Bubble Tea integration for the snake game.
// It handles the terminal UI loop, input mapping, screen flow and the SSH
// server that serves the same flow to remote players.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game simulation tick.
// Gen identifies the game model that armed it so ticks from a previous
// round are dropped.
type TickMsg struct {
	Gen  uint64
	Time time.Time
}

// tickCmd returns a command that fires a single tick after interval.
// The game model re-arms it on every tick with the engine's current
// interval, so the speed-up takes effect immediately.
func tickCmd(interval time.Duration, gen uint64) tea.Cmd {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Gen: gen, Time: t}
	})
}
