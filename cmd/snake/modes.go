package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-snake/internal/games/snake"
	"github.com/vovakirdan/tui-snake/internal/registry"
)

var modesCmd = &cobra.Command{
	Use:     "modes",
	Aliases: []string{"list"},
	Short:   "List all game modes",
	Long:    `Shows every registered game mode with the engine settings in effect.`,
	Run:     runModes,
}

func runModes(cmd *cobra.Command, args []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No modes available.")
		return
	}

	fmt.Println("Available modes:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, g := range games {
		if len(g.ID) > maxIDLen {
			maxIDLen = len(g.ID)
		}
	}

	// Print header
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "ID", 15, "Mode", "Title")
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "--", 15, "----", "-----")

	// Print modes
	for _, g := range games {
		mode, _ := snake.ModeForID(g.ID)
		fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, g.ID, 15, mode, g.Title)
	}

	s := snake.CurrentSettings()
	fmt.Println()
	fmt.Printf("Board %dx%d, %s per tick (-%s per food, min %s), %d points per food\n",
		s.GridSize, s.GridSize, s.InitialInterval, s.IntervalStep, s.MinInterval, s.FoodReward)
	fmt.Println()
	fmt.Println("Run 'snake play --mode <mode>' to play.")
}
