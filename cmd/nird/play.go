package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/metrics"
	"github.com/vovakirdan/nird-snake/internal/platform/tui"
	"github.com/vovakirdan/nird-snake/internal/session"
	"github.com/vovakirdan/nird-snake/internal/spectate"
)

var (
	flagDifficulty string
	flagNoCode     bool
	flagWatch      string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start the game in this terminal.

The screen stays quiet until the activation code is typed. After a short
hint the round starts with a 3 second countdown.

Controls:
  Arrows/WASD - Steer (no reversing)
  1 / 2       - Beginner / Expert (not while a round is running)
  R           - New round (after game over)
  Tab         - Leaderboard and round history (not while a round is running)
  Ctrl+S      - Save a PNG screenshot
  Esc         - Close the game
  Q/Ctrl+C    - Quit

Difficulty presets:
  beginner - 20x20 grid, one step every 200ms, target 200
  expert   - 15x15 grid, one step every 120ms, target 400

Examples:
  nird play
  nird play --difficulty expert
  nird play --no-code
  nird play --watch :8089`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Starting preset: beginner, expert (default from config)")
	playCmd.Flags().BoolVar(&flagNoCode, "no-code", false, "Open the game without typing the activation code")
	playCmd.Flags().StringVar(&flagWatch, "watch", "", "Serve the spectator API on this address while playing")
}

func runPlay(_ *cobra.Command, _ []string) {
	if err := play(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// play runs one local game. Every resource it opens is closed before it
// returns, including on error.
func play() error {
	cfg := loadConfig()
	if flagDifficulty != "" {
		cfg.Difficulty = flagDifficulty
	}
	if flagNoCode {
		cfg.Activation.Required = false
	}
	d, err := snake.LookupDifficulty(cfg.Difficulty)
	if err != nil {
		return fmt.Errorf("%w (run 'nird list' to see difficulty presets)", err)
	}

	// the alt screen owns stdout
	logger, closeLog := newLogger(cfg, nil, "nird")
	defer closeLog()

	store, kv := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}
	scores := session.NewAdapter(kv, logger)
	m := metrics.Default()

	opts := sessionOptions(cfg, d, scores, store, m, logger)
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		opts.Config.ScreenW = w
		opts.Config.ScreenH = h
	}

	if flagWatch != "" {
		hub := spectate.NewHub(cfg.Spectate.CORSOrigins, m, logger)
		srv := newSpectateServer(cfg, flagWatch, hub, scores, store, m, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("spectator API shutdown", "error", err)
			}
		}()
		opts.Publisher = hub
		opts.SessionID = "local"
	}

	if err := tui.Run(opts); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}
