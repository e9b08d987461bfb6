package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-snake/internal/core"
	"github.com/vovakirdan/tui-snake/internal/games/snake"
	"github.com/vovakirdan/tui-snake/internal/leaderboard"
	"github.com/vovakirdan/tui-snake/internal/platform/tui"
	"github.com/vovakirdan/tui-snake/internal/registry"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

var (
	flagPlayMode  string
	flagPlayUser  string
	flagPlayGuest bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play snake in this terminal",
	Long: `Log in and play. After a round the score is saved to the leaderboard.

Controls:
  Arrows/WASD/HJKL - Turn
  Space/P          - Pause
  Enter/R          - Start or restart
  Esc/B            - Back to the menu
  Q/Ctrl+C         - Quit

Modes:
  walls  - Hitting the border ends the round
  wrap   - The snake passes through the border

Difficulty options:
  easy   - Start at 180ms per tick
  normal - Start at 150ms per tick
  hard   - Start at 100ms per tick
  fixed  - No speed-up, stays at the config's initial interval

Examples:
  snake play
  snake play --user alice
  snake play --mode wrap --difficulty hard
  snake play --guest --config ./my-snake.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayMode, "mode", "", "Mode to highlight in the menu, or to play as guest: walls or wrap")
	playCmd.Flags().StringVar(&flagPlayUser, "user", "", "Player name, skips the login screen")
	playCmd.Flags().BoolVar(&flagPlayGuest, "guest", false, "Play one mode without login or scores")
}

func runPlay(cmd *cobra.Command, args []string) {
	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	// Create runtime config
	cfg := core.RuntimeConfig{
		ScreenW: width,
		ScreenH: height,
		Seed:    flagSeed,
	}

	mode, err := snake.ParseMode(flagPlayMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'snake modes' to see available modes.")
		os.Exit(1)
	}

	if flagPlayGuest {
		runGuest(mode, cfg)
		return
	}

	logger, logFile, err := interactiveLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	deps := tui.Deps{Logger: logger}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		logger.Warn("playing without scores", "db", flagDBPath, "err", err)
		// Continue without storage - game still works
	} else {
		defer store.Close()
		svc := leaderboard.NewService(store, leaderboard.WithLogger(logger.WithPrefix("leaderboard")))
		deps.Leaderboard = svc
		deps.Reporter = leaderboard.NewReporter(svc, logger.WithPrefix("reporter"), 0)
	}

	if err := tui.RunSession(deps, cfg, flagPlayUser, mode); err != nil {
		logger.Error("session failed", "err", err)
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		if store != nil {
			store.Close()
		}
		os.Exit(1)
	}
}

// runGuest plays a single mode with nothing saved.
func runGuest(mode snake.Mode, cfg core.RuntimeConfig) {
	game, err := registry.Create(snake.GameID(mode))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	if err := tui.RunGame(game, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}
