package snake

import (
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/registry"
)

// Board glyphs. Each grid cell is two columns wide so the board looks square
// in a terminal.
const (
	glyphHead  = "██"
	glyphBody  = "▓▓"
	glyphFood  = "◆ "
	cellWidth  = 2
	hudHeight  = 1
	hintHeight = 1
)

// Package-level settings shared by every registered variant. The CLI calls
// Configure once after loading the config file, before any game is created.
var (
	settingsMu      sync.RWMutex
	currentSettings = DefaultSettings()
)

// Configure replaces the settings used by games created afterwards.
func Configure(s Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	currentSettings = s.normalized()
}

// CurrentSettings returns the settings new games will use.
func CurrentSettings() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return currentSettings
}

// Game adapts the Engine to the registry.Game contract used by the TUI.
type Game struct {
	mode     Mode
	engine   *Engine
	ended    bool // Set by the game-over listener, cleared on Start
	tooSmall bool
	screenW  int
	screenH  int
}

// New creates a walls mode game.
func New() *Game {
	return &Game{mode: ModeWalls}
}

// NewWrap creates a walls-through mode game.
func NewWrap() *Game {
	return &Game{mode: ModeWrap}
}

// NewForMode creates a game for an explicit mode.
func NewForMode(m Mode) *Game {
	if m == ModeWrap {
		return NewWrap()
	}
	return New()
}

// GameID returns the registry ID for a mode.
func GameID(m Mode) string {
	if m == ModeWrap {
		return "snake_wrap"
	}
	return "snake"
}

// ModeForID is the inverse of GameID.
func ModeForID(id string) (Mode, bool) {
	switch id {
	case "snake":
		return ModeWalls, true
	case "snake_wrap":
		return ModeWrap, true
	}
	return ModeWalls, false
}

func init() {
	registry.Register("snake", func() registry.Game {
		return New()
	})
	registry.Register("snake_wrap", func() registry.Game {
		return NewWrap()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return GameID(g.mode)
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeWrap {
		return "Snake (Walls-Through)"
	}
	return "Snake"
}

// Mode returns the boundary mode.
func (g *Game) Mode() Mode {
	return g.mode
}

// Reset builds a fresh idle engine.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.engine = NewEngine(g.mode, CurrentSettings(), seed)
	g.engine.OnGameOver(func(int) {
		g.ended = true
	})
	g.ended = false
	g.resize(cfg.ScreenW, cfg.ScreenH)
}

// Resize updates the layout for a new terminal size.
func (g *Game) Resize(w, h int) {
	g.resize(w, h)
}

func (g *Game) resize(w, h int) {
	g.screenW, g.screenH = w, h
	need := g.boardWidth()
	g.tooSmall = w < need || h < g.boardHeight()+hudHeight+hintHeight
}

func (g *Game) boardWidth() int {
	return g.engine.Settings().GridSize*cellWidth + 2
}

func (g *Game) boardHeight() int {
	return g.engine.Settings().GridSize + 2
}

// Engine exposes the underlying simulation.
func (g *Game) Engine() *Engine {
	return g.engine
}

// Step applies the commands in arrival order. Movement keys are buffered by
// the engine, so the last one before the next tick wins.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	for _, a := range in.Actions() {
		if d, ok := a.Direction(); ok {
			g.engine.SetDirection(d)
			continue
		}
		switch a {
		case core.ActionStart:
			if !g.engine.Running() {
				g.engine.Start()
				g.ended = false
			}
		case core.ActionPause:
			g.engine.TogglePause()
		}
	}
	return g.result(false)
}

// Tick advances the engine once.
func (g *Game) Tick() core.StepResult {
	if g.tooSmall {
		return g.result(false)
	}
	out := g.engine.Tick()
	return g.result(out == OutcomeGameOver)
}

func (g *Game) result(ended bool) core.StepResult {
	return core.StepResult{
		State:    g.State(),
		Ended:    ended,
		NextTick: g.engine.TickInterval(),
	}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.engine.Score(),
		Running:  g.engine.Running(),
		Paused:   g.engine.Paused(),
		GameOver: g.ended,
	}
}

// Render draws the HUD, the board and any overlay.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		renderOverlay(dst, "Window too small",
			fmt.Sprintf("Need %dx%d", g.boardWidth(), g.boardHeight()+hudHeight+hintHeight))
		return
	}

	snap := g.engine.Snapshot()
	g.renderHUD(dst, snap)

	bw, bh := g.boardWidth(), g.boardHeight()
	ox := (dst.Width() - bw) / 2
	oy := hudHeight
	dst.DrawBox(core.NewRect(ox, oy, bw, bh), core.ColorBorder)

	cell := func(p core.Point, glyph string, c core.Color) {
		dst.DrawTextColored(ox+1+p.X*cellWidth, oy+1+p.Y, glyph, c)
	}

	if snap.Running || g.ended {
		cell(snap.Food, glyphFood, core.ColorFood)
		for i := len(snap.Snake) - 1; i >= 0; i-- {
			if i == 0 {
				cell(snap.Snake[i], glyphHead, core.ColorSnakeHead)
			} else {
				cell(snap.Snake[i], glyphBody, core.ColorSnakeBody)
			}
		}
	}

	hint := "arrows/wasd move  space pause  esc menu"
	switch {
	case g.ended:
		renderOverlay(dst, "Game Over", fmt.Sprintf("Score: %d  Enter to retry", snap.Score))
	case !snap.Running:
		renderOverlay(dst, g.Title(), "Press Enter to start")
	case snap.Paused:
		renderOverlay(dst, "Paused", "Press Space to continue")
	}
	dst.DrawTextCentered(oy+bh, hint)
}

func (g *Game) renderHUD(dst *core.Screen, s Snapshot) {
	hud := fmt.Sprintf(" %s  Score: %d  Length: %d  Speed: %dms ",
		s.Mode.Title(), s.Score, len(s.Snake), s.TickInterval.Milliseconds())
	x := (dst.Width() - len([]rune(hud))) / 2
	dst.DrawTextColored(x, 0, hud, core.ColorHUD)
}

// renderOverlay draws a centered two-line message box.
func renderOverlay(dst *core.Screen, line1, line2 string) {
	w := max(len([]rune(line1)), len([]rune(line2))) + 4
	h := 5
	r := core.NewRect((dst.Width()-w)/2, (dst.Height()-h)/2, w, h)

	dst.DrawRect(r, ' ')
	dst.DrawBox(r, core.ColorDefault)
	dst.DrawTextCentered(r.Y+1, line1)
	dst.DrawTextCentered(r.Y+3, line2)
}
