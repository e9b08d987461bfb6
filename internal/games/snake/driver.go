package snake

import (
	"context"
	"time"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// CommandKind identifies an inbound engine command.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdDirection
	CmdTogglePause
)

// Command is a fire-and-forget request delivered to a Driver.
type Command struct {
	Kind CommandKind
	Dir  core.Direction // Only for CmdDirection
}

// StartCommand begins a fresh round.
func StartCommand() Command {
	return Command{Kind: CmdStart}
}

// PauseCommand toggles pause.
func PauseCommand() Command {
	return Command{Kind: CmdTogglePause}
}

// TurnCommand buffers a direction change.
func TurnCommand(d core.Direction) Command {
	return Command{Kind: CmdDirection, Dir: d}
}

// Driver runs an Engine on its own goroutine without a UI. A single timer is
// re-armed after every tick with the engine's current interval, so the period
// follows the speed-up. Commands are applied between ticks on the same
// goroutine, which keeps the engine single-writer.
type Driver struct {
	engine    *Engine
	commands  chan Command
	publish   func(Snapshot)
	timeScale float64
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithSnapshots registers a callback invoked on the driver goroutine after
// every tick and every applied command.
func WithSnapshots(fn func(Snapshot)) DriverOption {
	return func(d *Driver) {
		d.publish = fn
	}
}

// WithTimeScale divides every tick interval by scale (2 = twice as fast).
func WithTimeScale(scale float64) DriverOption {
	return func(d *Driver) {
		if scale > 0 {
			d.timeScale = scale
		}
	}
}

// NewDriver wraps an engine. The engine must not be used elsewhere while
// Run is active.
func NewDriver(e *Engine, opts ...DriverOption) *Driver {
	d := &Driver{
		engine:    e,
		commands:  make(chan Command, 16),
		timeScale: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send queues a command without blocking and returns false if the queue is
// full. The queue fills when the driver is not running or falls behind, so a
// dropped command is possible; use SendContext for commands that must land.
// Send is safe to call from a snapshot callback.
func (d *Driver) Send(cmd Command) bool {
	select {
	case d.commands <- cmd:
		return true
	default:
		return false
	}
}

// SendContext queues a command, waiting for room until ctx is done. It must
// not be called from a snapshot callback: the callback runs on the goroutine
// that drains the queue.
func (d *Driver) SendContext(ctx context.Context, cmd Command) error {
	select {
	case d.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes ticks and commands until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	timer := time.NewTimer(d.period())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd := <-d.commands:
			d.apply(cmd)
			if cmd.Kind == CmdStart {
				// A fresh round restarts the clock at the initial interval.
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(d.period())
			}
			d.emit()

		case <-timer.C:
			if d.engine.Tick() != OutcomeNone {
				d.emit()
			}
			timer.Reset(d.period())
		}
	}
}

func (d *Driver) apply(cmd Command) {
	switch cmd.Kind {
	case CmdStart:
		d.engine.Start()
	case CmdDirection:
		d.engine.SetDirection(cmd.Dir)
	case CmdTogglePause:
		d.engine.TogglePause()
	}
}

func (d *Driver) emit() {
	if d.publish != nil {
		d.publish(d.engine.Snapshot())
	}
}

func (d *Driver) period() time.Duration {
	p := time.Duration(float64(d.engine.TickInterval()) / d.timeScale)
	return max(p, time.Millisecond)
}
