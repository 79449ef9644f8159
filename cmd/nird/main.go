// nird is a hidden snake game: type the secret code to open it, then
// liberate old computers before the clock and your tail catch up with you.
//
// Usage:
//
//	nird play              - Play in this terminal
//	nird serve             - Start the SSH server and spectator API
//	nird scores [level]    - Show the leaderboard and round history
//	nird list              - List difficulty presets
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default from config: 60)
//	--seed <value>   - Set RNG seed for reproducible gameplay
//	--db <path>      - Set database path (default: ~/.nird/nird.db)
//	--config <path>  - Read this config file instead of the search path
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagFPS    int
	flagSeed   int64
	flagDBPath string
	flagConfig string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nird",
	Short: "NIRD snake - liberate computers in your terminal",
	Long: `NIRD snake is a terminal snake game that stays hidden until you type
the activation code. Every computer you reach is liberated from planned
obsolescence; reach the target score to liberate them all.

Available commands:
  play     - Play in this terminal
  serve    - Start SSH server for remote play plus the spectator API
  scores   - View the leaderboard and round history
  list     - Show difficulty presets

Examples:
  nird play
  nird play --difficulty expert --no-code
  nird serve --ssh :2222 --http :8089
  nird scores beginner`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate in frames per second (0 = from config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to the database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a config YAML")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}
