package core

import "time"

// RuntimeConfig contains configuration passed to games at initialization.
type RuntimeConfig struct {
	ScreenW int   // Screen width in characters
	ScreenH int   // Screen height in characters
	Seed    int64 // RNG seed for deterministic gameplay, 0 = time based
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW: 80,
		ScreenH: 24,
	}
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Score    int  // Current score
	Running  bool // A round is in progress (possibly paused)
	Paused   bool // Whether the round is paused
	GameOver bool // A round has ended and no new one was started yet
}

// StepResult is returned by Game.Step() after each command batch or tick.
type StepResult struct {
	State GameState

	// Ended is true only on the step where the round finished.
	Ended bool

	// NextTick is the delay before the platform should fire the next tick.
	NextTick time.Duration
}
