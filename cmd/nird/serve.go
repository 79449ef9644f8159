package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/nird-snake/internal/config"
	"github.com/vovakirdan/nird-snake/internal/metrics"
	"github.com/vovakirdan/nird-snake/internal/platform/tui"
	"github.com/vovakirdan/nird-snake/internal/session"
	"github.com/vovakirdan/nird-snake/internal/spectate"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagHTTPAddr    string
	flagNoHTTP      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server and spectator API",
	Long: `Start an SSH server that lets users connect and play, plus an HTTP
API for spectators.

Every SSH connection gets its own dormant game; the activation code works
the same as locally. All players share one record and top-5 leaderboard.

Spectator API (when enabled):
  GET /api/leaderboard             - record and top 5
  GET /api/rounds?difficulty=&limit= - round history
  GET /api/sessions                - live games
  GET /api/sessions/{id}           - one live game
  GET /api/sessions/{id}/frame.png - rendered frame
  GET /ws                          - websocket stream of snapshots
  GET /metrics                     - Prometheus metrics

Examples:
  nird serve                            # SSH on :23234, API on :8089
  nird serve --ssh :2222                # Listen on port 2222
  nird serve --host-key ./my_host_key   # Use specific host key
  nird serve --no-http                  # SSH only

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default from config)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "Spectator API address (default from config)")
	serveCmd.Flags().BoolVar(&flagNoHTTP, "no-http", false, "Disable the spectator API")
}

func runServe(_ *cobra.Command, _ []string) {
	if err := serve(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve() error {
	cfg := loadConfig()
	if flagSSHAddr != "" {
		cfg.SSH.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.SSH.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.SSH.IdleTimeout = flagIdleTimeout
	}
	if flagHTTPAddr != "" {
		cfg.Spectate.Address = flagHTTPAddr
	}
	if flagNoHTTP {
		cfg.Spectate.Enabled = false
	}
	d, err := cfg.StartDifficulty()
	if err != nil {
		return err
	}

	logger, closeLog := newLogger(cfg, os.Stderr, "nird-serve")
	defer closeLog()

	store, kv := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}
	scores := session.NewAdapter(kv, logger)
	m := metrics.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := sessionOptions(cfg, d, scores, store, m, logger)

	var srv *spectate.Server
	if cfg.Spectate.Enabled {
		hub := spectate.NewHub(cfg.Spectate.CORSOrigins, m, logger)
		srv = newSpectateServer(cfg, cfg.Spectate.Address, hub, scores, store, m, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("spectator API shutdown", "error", err)
			}
		}()
		opts.Publisher = hub
	}

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     cfg.SSH.Address,
		HostKeyPath: config.ExpandPath(cfg.SSH.HostKeyPath),
		IdleTimeout: cfg.SSH.IdleTimeout,
		Session:     opts,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting NIRD SSH server on %s\n", cfg.SSH.Address)
	if srv != nil {
		fmt.Printf("Spectator API on %s\n", srv.Addr())
	}
	fmt.Printf("Level %s, record %d\n", d.Title, scores.LoadHighScore())
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
