// Package session holds the per-player navigation state: who is playing,
// which mode is selected, which screen is showing and the last score.
// One Context exists per terminal or SSH connection and is passed
// explicitly to every screen.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-snake/internal/games/snake"
	"github.com/vovakirdan/tui-snake/internal/leaderboard"
)

// Screen identifies what the player is looking at.
type Screen string

const (
	ScreenLogin       Screen = "login"
	ScreenMenu        Screen = "menu"
	ScreenGame        Screen = "game"
	ScreenGameOver    Screen = "gameover"
	ScreenLeaderboard Screen = "leaderboard"
)

// transitions lists the allowed screen changes.
var transitions = map[Screen][]Screen{
	ScreenLogin:       {ScreenMenu},
	ScreenMenu:        {ScreenGame, ScreenLeaderboard, ScreenLogin},
	ScreenGame:        {ScreenGameOver, ScreenMenu},
	ScreenGameOver:    {ScreenGame, ScreenMenu, ScreenLeaderboard},
	ScreenLeaderboard: {ScreenMenu, ScreenGame},
}

// Context is the state of one player session.
type Context struct {
	ID        string
	Username  string
	Mode      snake.Mode
	Screen    Screen
	LastScore int
	Submit    *leaderboard.Result // Outcome of the last submission, nil while pending
}

// New creates a session on the login screen, or on the menu when the
// username is already known and valid.
func New(username string) *Context {
	c := &Context{
		ID:     uuid.NewString(),
		Mode:   snake.ModeWalls,
		Screen: ScreenLogin,
	}
	if err := c.Login(username); err == nil {
		c.Screen = ScreenMenu
	}
	return c
}

// Login sets the username after sanitizing it. The screen is not changed.
func (c *Context) Login(name string) error {
	clean := leaderboard.SanitizeUsername(name)
	if err := leaderboard.ValidateUsername(clean); err != nil {
		return err
	}
	c.Username = clean
	return nil
}

// Logout clears the player and returns to the login screen.
func (c *Context) Logout() {
	c.Username = ""
	c.LastScore = 0
	c.Submit = nil
	c.Screen = ScreenLogin
}

// CanGoto reports whether the transition to s is allowed right now.
func (c *Context) CanGoto(s Screen) bool {
	if s == ScreenMenu && c.Username == "" {
		return false
	}
	for _, next := range transitions[c.Screen] {
		if next == s {
			return true
		}
	}
	return false
}

// Goto switches screens. Invalid transitions leave the session unchanged
// and return false.
func (c *Context) Goto(s Screen) bool {
	if !c.CanGoto(s) {
		return false
	}
	if s == ScreenLogin {
		c.Logout()
		return true
	}
	c.Screen = s
	return true
}

// SetMode selects the mode for the next round.
func (c *Context) SetMode(m snake.Mode) {
	c.Mode = m
}

// Finish records a finished round and moves to the game over screen.
func (c *Context) Finish(score int) bool {
	if !c.Goto(ScreenGameOver) {
		return false
	}
	c.LastScore = score
	c.Submit = nil
	return true
}

// Submitted stores the outcome of the score submission for the last round.
func (c *Context) Submitted(res leaderboard.Result) {
	c.Submit = &res
}

func (c *Context) String() string {
	return fmt.Sprintf("session %s user=%q mode=%s screen=%s", c.ID, c.Username, c.Mode, c.Screen)
}
