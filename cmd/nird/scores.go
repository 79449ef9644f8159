package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/session"
	"github.com/vovakirdan/nird-snake/internal/storage"
)

var flagClear bool

var scoresCmd = &cobra.Command{
	Use:   "scores [level]",
	Short: "Show the leaderboard and round history",
	Long: `Display the record, the top 5 scores and the 10 best rounds,
optionally for one difficulty preset.

Examples:
  nird scores
  nird scores expert
  nird scores --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the round history")
}

func runScores(_ *cobra.Command, args []string) {
	cfg := loadConfig()

	var filter string
	if len(args) == 1 {
		d, err := snake.LookupDifficulty(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Run 'nird list' to see difficulty presets.")
			os.Exit(1)
		}
		filter = string(d.ID)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		if err := store.ClearRounds(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing rounds: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Round history cleared.")
		return
	}

	logger, closeLog := newLogger(cfg, nil, "nird")
	defer closeLog()
	scores := session.NewAdapter(store, logger)

	fmt.Printf("Record: %d\n\n", scores.LoadHighScore())

	board := scores.Leaderboard()
	fmt.Println("Top 5")
	if len(board) == 0 {
		fmt.Println("  No scores recorded yet.")
	}
	for i, s := range board {
		fmt.Printf("  %d. %d\n", i+1, s)
	}
	fmt.Println()

	rounds, err := store.TopRounds(filter, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving rounds: %v\n", err)
		os.Exit(1)
	}

	title := "Best rounds"
	if filter != "" {
		title += " - " + snake.MustDifficulty(snake.DifficultyID(filter)).Title
	}
	fmt.Println(title)
	if len(rounds) == 0 {
		fmt.Println("  No rounds recorded yet.")
		fmt.Println()
		fmt.Println("Run 'nird play' and type the code to start liberating computers!")
		return
	}

	fmt.Printf("  %-4s  %-6s  %-6s  %-9s  %-12s  %s\n", "Rank", "Score", "Freed", "Level", "Player", "Date")
	fmt.Printf("  %-4s  %-6s  %-6s  %-9s  %-12s  %s\n", "----", "-----", "-----", "-----", "------", "----")
	for i, r := range rounds {
		player := r.Player
		if player == "" {
			player = "-"
		}
		result := ""
		if r.Won {
			result = " (won)"
		}
		fmt.Printf("  %-4d  %-6d  %-6d  %-9s  %-12s  %s%s\n",
			i+1, r.Score, r.Liberated, r.Difficulty, player,
			r.CreatedAt.Format("2006-01-02 15:04"), result)
	}

	stats, err := store.Stats()
	if err != nil {
		return
	}
	fmt.Println()
	for _, d := range snake.Difficulties() {
		st, ok := stats[string(d.ID)]
		if !ok || (filter != "" && filter != st.Difficulty) {
			continue
		}
		fmt.Printf("%s: %d rounds, %d won, best %d, average %.1f, %d computers liberated\n",
			d.Title, st.Rounds, st.Wins, st.HighScore, st.AvgScore, st.Liberated)
	}
}
