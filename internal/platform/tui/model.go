package tui

import (
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/registry"
)

// statusHeight is the line below the board used for player info and keys.
const statusHeight = 1

// tickGen hands out a generation per game model.
var tickGen atomic.Uint64

// resizer is implemented by games that can follow terminal resizes
// without restarting the round.
type resizer interface {
	Resize(w, h int)
}

// GameModel is the Bubble Tea model for one game screen.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	gen        uint64
	gameState  core.GameState
	username   string
	best       int
	ended      bool
	finalScore int
	quitting   bool
	backToMenu bool
}

// NewGameModel creates a model for the given game. best is the stored high
// score shown in the status line.
func NewGameModel(game registry.Game, cfg core.RuntimeConfig, username string, best int) GameModel {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	w, h := cfg.ScreenW, cfg.ScreenH-statusHeight
	cfg.ScreenH = max(h, 1)

	return GameModel{
		game:      game,
		screen:    core.NewScreen(w, cfg.ScreenH),
		config:    cfg,
		keyMapper: NewKeyMapper(),
		gen:       tickGen.Add(1),
		username:  username,
		best:      best,
	}
}

// Init resets the game and starts the tick loop.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	// The round is idle, so this tick only reports the interval.
	return tickCmd(m.game.Tick().NextTick, m.gen)
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(msg)
	}

	return m, nil
}

// handleKey maps keys to actions and applies them immediately.
// Movement is buffered by the engine until the next tick.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	frame := core.NewInputFrame()
	if m.keyMapper.MapKeyToFrame(msg, &frame) {
		m.quitting = true
		return m, tea.Quit
	}

	if frame.Has(core.ActionBack) {
		m.backToMenu = true
		return m, nil
	}
	if frame.Empty() {
		return m, nil
	}

	result := m.game.Step(frame)
	m.gameState = result.State
	if m.ended && result.State.Running {
		// A new round was started from the game over overlay
		m.ended = false
		m.finalScore = 0
	}
	return m, nil
}

// handleResize keeps the round going and only moves the board.
func (m GameModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = max(msg.Height-statusHeight, 1)
	m.screen.Resize(m.config.ScreenW, m.config.ScreenH)

	if r, ok := m.game.(resizer); ok {
		r.Resize(m.config.ScreenW, m.config.ScreenH)
	}
	return m, nil
}

// handleTick advances the simulation and re-arms the tick with the
// interval the game asks for.
func (m GameModel) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	if msg.Gen != m.gen {
		return m, nil
	}

	result := m.game.Tick()
	m.gameState = result.State
	if result.Ended && !m.ended {
		m.ended = true
		m.finalScore = result.State.Score
	}

	return m, tickCmd(result.NextTick, m.gen)
}

// View renders the board and the status line.
func (m GameModel) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen) + "\n" + m.statusLine()
}

func (m GameModel) statusLine() string {
	player := m.username
	if player == "" {
		player = "guest"
	}
	best := max(m.best, m.gameState.Score)
	line := fmt.Sprintf(" %s  Best: %d  q quit", player, best)
	return mutedStyle.Render(lipgloss.NewStyle().MaxWidth(m.config.ScreenW).Render(line))
}

// Ended reports whether the round finished, and with which score.
func (m GameModel) Ended() (bool, int) {
	return m.ended, m.finalScore
}

// State returns the last observed game state.
func (m GameModel) State() core.GameState {
	return m.gameState
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}
