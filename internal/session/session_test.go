package session

import (
	"testing"

	"github.com/vovakirdan/tui-snake/internal/games/snake"
	"github.com/vovakirdan/tui-snake/internal/leaderboard"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		wantScreen Screen
		wantUser   string
	}{
		{"no user", "", ScreenLogin, ""},
		{"invalid user", "x", ScreenLogin, ""},
		{"valid user", " alice ", ScreenMenu, "ALICE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.username)
			if c.Screen != tt.wantScreen || c.Username != tt.wantUser {
				t.Errorf("New(%q) = screen %s user %q, want %s %q", tt.username, c.Screen, c.Username, tt.wantScreen, tt.wantUser)
			}
			if c.ID == "" {
				t.Error("session has no ID")
			}
			if c.Mode != snake.ModeWalls {
				t.Errorf("default mode = %v", c.Mode)
			}
		})
	}

	if New("").ID == New("").ID {
		t.Error("session IDs are not unique")
	}
}

func TestGoto(t *testing.T) {
	tests := []struct {
		name string
		from Screen
		to   Screen
		want bool
	}{
		{"menu to game", ScreenMenu, ScreenGame, true},
		{"menu to leaderboard", ScreenMenu, ScreenLeaderboard, true},
		{"game to gameover", ScreenGame, ScreenGameOver, true},
		{"gameover to game", ScreenGameOver, ScreenGame, true},
		{"leaderboard to menu", ScreenLeaderboard, ScreenMenu, true},
		{"login to game", ScreenLogin, ScreenGame, false},
		{"menu to gameover", ScreenMenu, ScreenGameOver, false},
		{"game to leaderboard", ScreenGame, ScreenLeaderboard, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("ALICE")
			c.Screen = tt.from
			if got := c.Goto(tt.to); got != tt.want {
				t.Fatalf("Goto(%s) from %s = %v, want %v", tt.to, tt.from, got, tt.want)
			}
			want := tt.from
			if tt.want {
				want = tt.to
			}
			if c.Screen != want {
				t.Errorf("screen = %s, want %s", c.Screen, want)
			}
		})
	}
}

func TestMenuNeedsUsername(t *testing.T) {
	c := New("")
	if c.Goto(ScreenMenu) {
		t.Fatal("reached menu without a username")
	}
	if err := c.Login("b"); err == nil {
		t.Fatal("Login accepted a one-letter name")
	}
	if err := c.Login("bob"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !c.Goto(ScreenMenu) {
		t.Fatal("menu unreachable after login")
	}
}

func TestFinishAndLogout(t *testing.T) {
	c := New("ALICE")
	c.SetMode(snake.ModeWrap)
	c.Goto(ScreenGame)

	if !c.Finish(120) {
		t.Fatal("Finish from game screen failed")
	}
	if c.Screen != ScreenGameOver || c.LastScore != 120 || c.Submit != nil {
		t.Errorf("after finish: %+v", c)
	}

	c.Submitted(leaderboard.Result{Entry: leaderboard.Entry{Score: 120}})
	if c.Submit == nil || c.Submit.Entry.Score != 120 {
		t.Errorf("submit result not stored: %+v", c.Submit)
	}

	if c.Finish(10) {
		t.Error("Finish accepted from the game over screen")
	}

	c.Goto(ScreenMenu)
	c.Goto(ScreenLogin)
	if c.Screen != ScreenLogin || c.Username != "" || c.LastScore != 0 {
		t.Errorf("after logout: %+v", c)
	}
	if c.Mode != snake.ModeWrap {
		t.Error("logout reset the mode")
	}
}
