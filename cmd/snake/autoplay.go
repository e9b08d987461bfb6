package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/games/snake"
	"github.com/vovakirdan/tui-snake/internal/leaderboard"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

var (
	flagAutoMode  string
	flagAutoUser  string
	flagAutoSpeed float64
)

var autoplayCmd = &cobra.Command{
	Use:   "autoplay",
	Short: "Let the autopilot play one round",
	Long: `Run one headless round driven by the built-in autopilot.

The round runs on the real tick schedule divided by --speed. With --user
the final score is submitted to the leaderboard like any other round.

Examples:
  snake autoplay
  snake autoplay --mode wrap --speed 20
  snake autoplay --user robot --seed 42`,
	Args: cobra.NoArgs,
	Run:  runAutoplay,
}

func init() {
	autoplayCmd.Flags().StringVar(&flagAutoMode, "mode", "walls", "Mode: walls or wrap")
	autoplayCmd.Flags().StringVar(&flagAutoUser, "user", "", "Submit the score under this name")
	autoplayCmd.Flags().Float64Var(&flagAutoSpeed, "speed", 10, "Time scale, 1 is real time")
}

func runAutoplay(_ *cobra.Command, _ []string) {
	if err := autoplay(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func autoplay() error {
	mode, err := snake.ParseMode(flagAutoMode)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr)
	if err != nil {
		return err
	}

	reporter := leaderboard.NewReporter(nil, logger, 0)
	if flagAutoUser != "" {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		svc := leaderboard.NewService(store, leaderboard.WithLogger(logger.WithPrefix("leaderboard")))
		reporter = leaderboard.NewReporter(svc, logger.WithPrefix("reporter"), 0)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := snake.NewEngine(mode, snake.CurrentSettings(), seed)
	results := make(chan leaderboard.Result, 1)
	engine.OnGameOver(reporter.Hook(ctx, flagAutoUser, mode.String(), func(res leaderboard.Result) {
		results <- res
	}))

	var (
		pilot  snake.Autopilot
		driver *snake.Driver
		last   snake.Snapshot
	)
	driver = snake.NewDriver(engine,
		snake.WithTimeScale(flagAutoSpeed),
		snake.WithSnapshots(func(s snake.Snapshot) {
			if s.Score > last.Score {
				logger.Debug("food eaten", "score", s.Score, "length", len(s.Snake), "interval", s.TickInterval)
			}
			last = s
			if dir, ok := pilot.Next(s); ok && dir != s.Direction {
				driver.Send(snake.TurnCommand(dir))
			}
		}),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- driver.Run(runCtx) }()

	if err := driver.SendContext(ctx, snake.StartCommand()); err != nil {
		cancel()
		<-done
		return errors.New("interrupted")
	}
	logger.Info("autopilot started", "mode", mode, "seed", seed, "speed", flagAutoSpeed)

	var res leaderboard.Result
	select {
	case res = <-results:
	case <-ctx.Done():
		cancel()
		<-done
		return errors.New("interrupted")
	}
	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("Mode:   %s\n", mode.Title())
	fmt.Printf("Score:  %d\n", res.Submission.Score)
	fmt.Printf("Length: %d\n", len(last.Snake))
	fmt.Printf("Ticks:  %d\n", last.Ticks)
	switch {
	case res.Skipped:
		fmt.Println("Score not saved (no --user)")
	case res.Err != nil:
		return fmt.Errorf("score not saved: %s", leaderboard.AsError(res.Err).Message)
	default:
		fmt.Printf("Saved as %s (#%d)\n", res.Entry.Username, res.Entry.ID)
	}
	return nil
}
