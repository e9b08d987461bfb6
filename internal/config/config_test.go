package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadSnake("")
	if err != nil {
		t.Fatalf("LoadSnake: %v", err)
	}
	if cfg != DefaultSnakeConfig() {
		t.Errorf("embedded config = %+v, want %+v", cfg, DefaultSnakeConfig())
	}
	if len(GetDefaultYAML("snake")) == 0 {
		t.Error("embedded snake.yaml is empty")
	}
	if GetDefaultYAML("tetris") != nil {
		t.Error("GetDefaultYAML returned data for an unknown game")
	}
}

func TestLoadSnakeCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snake.yaml")
	writeFile(t, path, "board:\n  grid_size: 30\nspeed:\n  min_interval_ms: 40\n")

	cfg, err := LoadSnake(path)
	if err != nil {
		t.Fatalf("LoadSnake: %v", err)
	}
	if cfg.Board.GridSize != 30 {
		t.Errorf("GridSize = %d, want 30", cfg.Board.GridSize)
	}
	if cfg.Speed.MinInterval() != 40*time.Millisecond {
		t.Errorf("MinInterval = %v, want 40ms", cfg.Speed.MinInterval())
	}
	// Missing keys keep defaults.
	if cfg.Speed.InitialIntervalMs != 150 || cfg.Score.FoodReward != 10 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadSnakeCustomPathErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "board: [unclosed")
	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "board:\n  grid_size: 2\n")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing", filepath.Join(dir, "nope.yaml"), "failed to read"},
		{"malformed", bad, "failed to parse"},
		{"invalid", invalid, "grid_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSnake(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadSnake(%s) error = %v, want containing %q", tt.name, err, tt.want)
			}
		})
	}
}

func TestLoadSnakeUserDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".snake", "configs", "snake.yaml"), "score:\n  food_reward: 25\n")

	cfg, err := LoadSnake("")
	if err != nil {
		t.Fatalf("LoadSnake: %v", err)
	}
	if cfg.Score.FoodReward != 25 {
		t.Errorf("FoodReward = %d, want 25 from user config", cfg.Score.FoodReward)
	}
}

func TestLoadSnakeSkipsBrokenUserFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writeFile(t, filepath.Join(home, ".snake", "configs", "snake.yaml"), "speed:\n  min_interval_ms: -5\n")

	cfg, err := LoadSnake("")
	if err != nil {
		t.Fatalf("LoadSnake: %v", err)
	}
	if cfg != DefaultSnakeConfig() {
		t.Errorf("broken user file not skipped: %+v", cfg)
	}
}

func TestSnakeConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SnakeConfig)
		wantErr []string
	}{
		{"defaults", func(*SnakeConfig) {}, nil},
		{"tiny grid", func(c *SnakeConfig) { c.Board.GridSize = 3 }, []string{"grid_size"}},
		{
			"several",
			func(c *SnakeConfig) {
				c.Speed.IntervalStepMs = -1
				c.Score.FoodReward = 0
			},
			[]string{"interval_step_ms", "food_reward"},
		},
		{"initial below min", func(c *SnakeConfig) { c.Speed.InitialIntervalMs = 10 }, []string{"initial_interval_ms"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSnakeConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			for _, w := range tt.wantErr {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q does not mention %q", err, w)
				}
			}
		})
	}
}

func TestApplySnakePreset(t *testing.T) {
	tests := []struct {
		preset      DifficultyPreset
		wantInitial int
		wantStep    int
	}{
		{DifficultyEasy, 180, 5},
		{DifficultyNormal, 150, 5},
		{DifficultyHard, 100, 5},
		{DifficultyFixed, 150, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			cfg := DefaultSnakeConfig()
			ApplySnakePreset(&cfg, tt.preset)
			if cfg.Speed.InitialIntervalMs != tt.wantInitial {
				t.Errorf("initial = %d, want %d", cfg.Speed.InitialIntervalMs, tt.wantInitial)
			}
			if cfg.Speed.IntervalStepMs != tt.wantStep {
				t.Errorf("step = %d, want %d", cfg.Speed.IntervalStepMs, tt.wantStep)
			}
		})
	}

	cfg := DefaultSnakeConfig()
	cfg.Speed.MinIntervalMs = 120
	ApplySnakePreset(&cfg, DifficultyHard)
	if cfg.Speed.InitialIntervalMs != 120 {
		t.Errorf("hard preset went below the minimum: %d", cfg.Speed.InitialIntervalMs)
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]DifficultyPreset{
		"":      DifficultyNormal,
		"easy":  DifficultyEasy,
		"HARD":  DifficultyHard,
		"fixed": DifficultyFixed,
	} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Error("ParseDifficulty(nightmare) = nil error")
	}
}

func TestServerConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{"defaults", func(*ServerConfig) {}, false},
		{"http only", func(c *ServerConfig) { c.SSHAddr = "" }, false},
		{"no listeners", func(c *ServerConfig) { c.SSHAddr, c.HTTPAddr = "", "" }, true},
		{"ssh without key", func(c *ServerConfig) { c.HostKeyPath = "" }, true},
		{"no db", func(c *ServerConfig) { c.DBPath = "" }, true},
		{"bad level", func(c *ServerConfig) { c.LogLevel = "loud" }, true},
		{"negative timeout", func(c *ServerConfig) { c.IdleTimeout = -time.Second }, true},
		{"no rate limit", func(c *ServerConfig) { c.RateLimit = 0 }, false},
		{"negative rate limit", func(c *ServerConfig) { c.RateLimit = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/.snake/snake.db")
	if err != nil {
		t.Fatalf("ExpandHome: %v", err)
	}
	if want := filepath.Join(home, ".snake", "snake.db"); got != want {
		t.Errorf("ExpandHome = %q, want %q", got, want)
	}
	if got, _ := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("absolute path changed: %q", got)
	}
}
