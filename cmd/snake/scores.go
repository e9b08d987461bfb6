package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-snake/internal/games/snake"
	"github.com/vovakirdan/tui-snake/internal/leaderboard"
	"github.com/vovakirdan/tui-snake/internal/platform/tui"
	"github.com/vovakirdan/tui-snake/internal/storage"
)

var (
	flagScoresMode  string
	flagScoresUser  string
	flagScoresLimit int
	flagScoresSort  string
	flagScoresTUI   bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the leaderboard",
	Long: `Display the top scores, optionally for one mode or one player.

Examples:
  snake scores
  snake scores --mode wrap --limit 20
  snake scores --user alice
  snake scores --sort date
  snake scores --tui`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresMode, "mode", "", "Only this mode: walls or wrap")
	scoresCmd.Flags().StringVar(&flagScoresUser, "user", "", "Only this player's scores")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", leaderboard.DefaultLimit, "Number of scores to show (1-100)")
	scoresCmd.Flags().StringVar(&flagScoresSort, "sort", leaderboard.SortScore, "Order: score or date")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Open the interactive scoreboard")
}

func runScores(cmd *cobra.Command, args []string) {
	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	svc := leaderboard.NewService(store)

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		if err := tui.RunScoreboard(svc, width, height); err != nil {
			store.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := printScores(cmd.Context(), svc); err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printScores(ctx context.Context, svc *leaderboard.Service) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q := leaderboard.Query{Limit: flagScoresLimit, Sort: flagScoresSort}
	title := "All Modes"
	if flagScoresMode != "" {
		mode, err := snake.ParseMode(flagScoresMode)
		if err != nil {
			return err
		}
		q.Mode = mode.String()
		title = mode.Title()
	}

	var (
		page leaderboard.Page
		err  error
	)
	if flagScoresUser != "" {
		page, err = svc.UserScores(ctx, flagScoresUser, q)
		title = fmt.Sprintf("%s - %s", leaderboard.SanitizeUsername(flagScoresUser), title)
	} else {
		page, err = svc.Leaderboard(ctx, q)
	}
	if leaderboard.CodeOf(err) == leaderboard.CodeNotFound {
		fmt.Println(leaderboard.AsError(err).Message)
		return nil
	}
	if err != nil {
		return err
	}

	// Display scores
	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(page.Entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'snake play' to set the first high score!")
		return nil
	}

	// Print header
	fmt.Printf("  %-4s  %-20s  %-8s  %-13s  %s\n", "Rank", "Player", "Score", "Mode", "Date")
	fmt.Printf("  %-4s  %-20s  %-8s  %-13s  %s\n", "----", "------", "-----", "----", "----")

	// Print scores
	for i, e := range page.Entries {
		rank := e.Rank
		if rank == 0 {
			rank = page.Offset + i + 1
		}
		dateStr := e.Date.Local().Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-20s  %-8d  %-13s  %s\n", rank, e.Username, e.Score, e.Mode, dateStr)
	}

	fmt.Println()
	fmt.Printf("Showing %d of %d\n", len(page.Entries), page.Total)
	return nil
}
