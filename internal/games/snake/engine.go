package snake

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// Outcome describes what a single Tick did.
type Outcome int

const (
	OutcomeNone     Outcome = iota // Not running or paused, nothing moved
	OutcomeMoved                   // Snake advanced one cell
	OutcomeAte                     // Snake advanced onto food and grew
	OutcomeGameOver                // Fatal collision, round ended
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeAte:
		return "ate"
	case OutcomeGameOver:
		return "game_over"
	default:
		return "none"
	}
}

// Engine is the snake simulation: a discrete-time state machine over a
// square grid. It is not safe for concurrent use; exactly one goroutine
// (the UI loop or a Driver) may call its methods.
//
// Commands never fail. Anything that makes no sense in the current state is
// ignored.
type Engine struct {
	settings Settings
	mode     Mode
	rng      *rand.Rand

	snake     []core.Point // Head at index 0
	food      core.Point
	direction core.Direction // Direction of the last applied move
	pending   core.Direction // Applied on the next tick

	score    int
	interval time.Duration
	ticks    uint64
	running  bool
	paused   bool

	onGameOver func(finalScore int)
}

// NewEngine creates an idle engine. Call Start to begin a round.
func NewEngine(mode Mode, settings Settings, seed int64) *Engine {
	if mode != ModeWrap {
		mode = ModeWalls
	}
	s := settings.normalized()
	return &Engine{
		settings: s,
		mode:     mode,
		rng:      rand.New(rand.NewSource(seed)),
		interval: s.InitialInterval,
	}
}

// OnGameOver registers the listener called once per round with the final
// score. Only one listener is kept; nil removes it.
func (e *Engine) OnGameOver(fn func(finalScore int)) {
	e.onGameOver = fn
}

// Start discards any round in progress and begins a fresh one.
func (e *Engine) Start() {
	mid := e.settings.GridSize / 2
	e.snake = []core.Point{
		{X: mid, Y: mid},
		{X: mid - 1, Y: mid},
		{X: mid - 2, Y: mid},
	}
	e.direction = core.DirRight
	e.pending = core.DirRight
	e.score = 0
	e.ticks = 0
	e.interval = e.settings.InitialInterval
	e.running = true
	e.paused = false
	e.placeFood()
}

// SetDirection buffers a turn for the next tick. The last accepted call
// before a tick wins. A turn straight back into the neck is rejected; the
// check is against the direction the snake is actually moving, not against
// other buffered turns. Turns made while paused take effect on resume.
func (e *Engine) SetDirection(d core.Direction) {
	if !e.running {
		return
	}
	if d == e.direction.Opposite() {
		return
	}
	e.pending = d
}

// TogglePause flips between running and paused. No-op between rounds.
func (e *Engine) TogglePause() {
	if !e.running {
		return
	}
	e.paused = !e.paused
}

// Tick advances the simulation by one cell.
func (e *Engine) Tick() Outcome {
	if !e.running || e.paused {
		return OutcomeNone
	}
	e.ticks++

	e.direction = e.pending
	newHead := e.snake[0].Add(e.direction.Delta())

	if e.mode == ModeWalls {
		if !newHead.In(e.settings.GridSize) {
			e.end()
			return OutcomeGameOver
		}
	} else {
		newHead = newHead.Wrap(e.settings.GridSize)
	}

	// The tail is excluded: it vacates its cell this tick unless food is
	// eaten, and food never sits on the snake.
	if e.hits(newHead, e.snake[:len(e.snake)-1]) {
		e.end()
		return OutcomeGameOver
	}

	e.snake = append(e.snake, core.Point{})
	copy(e.snake[1:], e.snake)
	e.snake[0] = newHead

	if newHead == e.food {
		e.score += e.settings.FoodReward
		e.interval = max(e.settings.MinInterval, e.interval-e.settings.IntervalStep)
		e.placeFood()
		return OutcomeAte
	}

	e.snake = e.snake[:len(e.snake)-1]
	return OutcomeMoved
}

// end stops the round and notifies the listener exactly once.
func (e *Engine) end() {
	e.running = false
	e.paused = false
	if e.onGameOver != nil {
		e.onGameOver(e.score)
	}
}

func (e *Engine) hits(p core.Point, body []core.Point) bool {
	for _, seg := range body {
		if seg == p {
			return true
		}
	}
	return false
}

// Mode returns the boundary mode of the engine.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Settings returns the normalized engine constants.
func (e *Engine) Settings() Settings {
	return e.settings
}

// TickInterval returns the period the tick driver should use right now.
func (e *Engine) TickInterval() time.Duration {
	return e.interval
}

// Score returns the current score.
func (e *Engine) Score() int {
	return e.score
}

// Running reports whether a round is in progress (possibly paused).
func (e *Engine) Running() bool {
	return e.running
}

// Paused reports whether the current round is paused.
func (e *Engine) Paused() bool {
	return e.paused
}
