package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.nird/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Session is the template for every player's Options. Player,
	// SessionID, Seed and screen size are filled in per connection.
	Session Options

	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer wraps a Wish SSH server. All sessions share the score adapter,
// round store, metrics and publisher from the session template.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	logger *log.Logger
	nextID atomic.Uint64

	// leases maps each live ssh.Session to its game's lease.
	leases sync.Map
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	srv := &SSHServer{
		config: cfg,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".nird", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.releaseMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// sessionOptions derives one player's options from the template.
func (s *SSHServer) sessionOptions(user string, width, height int) Options {
	opts := s.config.Session
	opts.Player = user
	opts.SessionID = fmt.Sprintf("%s-%d", user, s.nextID.Add(1))
	opts.Config.ScreenW = width
	opts.Config.ScreenH = height
	opts.Config.Seed = time.Now().UnixNano()
	opts.ScreenshotDir = "" // the server's disk is not the player's
	opts.Logger = s.logger.With("user", user)
	return opts
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	opts := s.sessionOptions(sshSession.User(), pty.Window.Width, pty.Window.Height)
	opts.Lease = NewLease(opts.SessionID, opts.Publisher, opts.Metrics)
	s.leases.Store(sshSession, opts.Lease)

	model := NewModel(opts)
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// releaseMiddleware closes the player's game once the program has exited,
// whether the player quit, the connection dropped or the idle timeout hit.
func (s *SSHServer) releaseMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		defer s.release(sshSession)
		next(sshSession)
	}
}

func (s *SSHServer) release(sshSession ssh.Session) {
	v, ok := s.leases.LoadAndDelete(sshSession)
	if !ok {
		return
	}
	if v.(*Lease).Release() {
		s.logger.Info("released abandoned game", "user", sshSession.User())
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is done, then
// shuts down gracefully.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("ssh server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
