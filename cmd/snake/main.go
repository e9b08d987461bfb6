// snake is a terminal snake game with a shared leaderboard.
//
// Usage:
//
//	snake play               - Log in and play in this terminal
//	snake modes              - List available modes
//	snake scores             - Show the leaderboard
//	snake serve              - Start the SSH game server and the HTTP API
//	snake autoplay           - Let the autopilot play one round
//
// Global flags:
//
//	--seed <value>         - Set RNG seed for reproducible gameplay
//	--db <path>            - Set database path (default: ~/.snake/snake.db)
//	--config <path>        - Custom snake.yaml
//	--difficulty <preset>  - easy, normal, hard or fixed
//	--log-level <level>    - debug, info, warn or error
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/config"
	"github.com/vovakirdan/tui-snake/internal/games/snake"
)

var (
	// Global flags
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snake",
	Short: "Snake - the classic game in your terminal",
	Long: `Snake is a terminal snake game with a shared leaderboard.

Available commands:
  play      - Log in and play in this terminal
  modes     - Show all game modes
  scores    - View the leaderboard
  serve     - Start the SSH game server and the HTTP API
  autoplay  - Let the autopilot play one round

Examples:
  snake play
  snake play --user alice --mode wrap
  snake scores --mode walls
  snake serve --ssh :2222 --http :8080`,
	SilenceUsage:      true,
	PersistentPreRunE: configureGame,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", config.DefaultServerConfig().DBPath, "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom snake config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(autoplayCmd)
}

// configureGame loads snake.yaml, applies the difficulty preset and makes
// the result the settings of every game created afterwards.
func configureGame(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadSnake(flagConfig)
	if err != nil {
		return err
	}
	preset, err := config.ParseDifficulty(flagDifficulty)
	if err != nil {
		return err
	}
	config.ApplySnakePreset(&cfg, preset)
	snake.Configure(snake.SettingsFromConfig(cfg))
	return nil
}

// newLogger creates the process logger at --log-level.
func newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "snake",
	}), nil
}

// openLogFile opens ~/.snake/snake.log for appending. Bubble Tea owns the
// terminal while a game runs, so interactive commands log there instead.
func openLogFile() (io.WriteCloser, error) {
	dir := config.DataDir()
	if dir == "" {
		return nil, errors.New("cannot locate home directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "snake.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// interactiveLogger returns a logger writing to the log file, or one that
// discards output when the file cannot be opened.
func interactiveLogger() (*log.Logger, io.Closer, error) {
	var w io.WriteCloser = nopCloser{io.Discard}
	if f, err := openLogFile(); err == nil {
		w = f
	}
	logger, err := newLogger(w)
	if err != nil {
		w.Close()
		return nil, nil, err
	}
	return logger, w, nil
}
