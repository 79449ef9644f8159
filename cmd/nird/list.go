package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List difficulty presets",
	Long:  `Shows the difficulty presets and what each one asks of you.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	fmt.Println("Difficulty presets:")
	fmt.Println()

	fmt.Printf("  %-9s  %-10s  %-6s  %-6s  %-7s  %s\n", "ID", "Title", "Grid", "Step", "Target", "Computers")
	fmt.Printf("  %-9s  %-10s  %-6s  %-6s  %-7s  %s\n", "--", "-----", "----", "----", "------", "---------")
	for _, d := range snake.Difficulties() {
		fmt.Printf("  %-9s  %-10s  %-6s  %-6s  %-7d  %d\n",
			d.ID, d.Title,
			fmt.Sprintf("%dx%d", d.Cols, d.Rows),
			d.StepInterval,
			d.TargetScore,
			d.FoodToWin(),
		)
	}

	fmt.Println()
	fmt.Println("Run 'nird play --difficulty <id>' to start on a preset.")
}
