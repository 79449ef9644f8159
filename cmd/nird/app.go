package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/nird-snake/internal/config"
	"github.com/vovakirdan/nird-snake/internal/core"
	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/metrics"
	"github.com/vovakirdan/nird-snake/internal/platform/tui"
	"github.com/vovakirdan/nird-snake/internal/session"
	"github.com/vovakirdan/nird-snake/internal/spectate"
	"github.com/vovakirdan/nird-snake/internal/storage"
)

// loadConfig reads the config and applies global flag overrides.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagFPS > 0 {
		cfg.TickRate = flagFPS
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	return cfg
}

// newLogger writes to w, or to the configured log file when w is nil.
// The returned closer must be called on exit.
func newLogger(cfg config.Config, w io.Writer, prefix string) (*log.Logger, func()) {
	closer := func() {}
	if w == nil {
		w = io.Discard
		if cfg.LogFile != "" {
			path := config.ExpandPath(cfg.LogFile)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
				if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
					w = f
					closer = func() { f.Close() }
				}
			}
		}
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           cfg.Level(),
	})
	return logger, closer
}

// openStore opens the database. On failure the game keeps its scores in
// memory for this run.
func openStore(cfg config.Config, logger *log.Logger) (*storage.Store, session.KV) {
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open database, scores will not be kept", "path", cfg.DBPath, "error", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		return nil, session.NewMemoryKV()
	}
	return store, store
}

// sessionOptions builds the game options shared by play and serve.
func sessionOptions(cfg config.Config, d snake.Difficulty, scores *session.Adapter, store *storage.Store, m *metrics.Metrics, logger *log.Logger) tui.Options {
	opts := tui.Options{
		Config: core.RuntimeConfig{
			ScreenW:  80,
			ScreenH:  24,
			TickRate: cfg.TickRate,
			Seed:     flagSeed,
		},
		Difficulty:        d,
		Code:              cfg.Activation.Code,
		RequireActivation: cfg.Activation.Required,
		HintDuration:      cfg.Activation.HintDuration,
		MilestoneDuration: cfg.MilestoneDuration,
		BurstDuration:     cfg.BurstDuration,
		ScreenshotDir:     config.ExpandPath(cfg.ScreenshotDir),
		Scores:            scores,
		Metrics:           m,
		Logger:            logger,
	}
	if store != nil {
		opts.Rounds = store
	}
	return opts
}

// newSpectateServer wires the spectator API to the shared game state.
func newSpectateServer(cfg config.Config, addr string, hub *spectate.Hub, scores *session.Adapter, store *storage.Store, m *metrics.Metrics, logger *log.Logger) *spectate.Server {
	router := spectate.RouterConfig{
		Hub:         hub,
		Scores:      scores,
		Metrics:     m,
		CORSOrigins: cfg.Spectate.CORSOrigins,
		Logger:      logger,
	}
	if store != nil {
		router.Rounds = store
	}
	return spectate.NewServer(spectate.ServerConfig{
		Address: addr,
		Router:  router,
		RateLimit: &spectate.RateLimitConfig{
			RequestsPerSecond: cfg.Spectate.RequestsPerSecond,
			Burst:             cfg.Spectate.Burst,
		},
		Logger: logger,
	})
}
