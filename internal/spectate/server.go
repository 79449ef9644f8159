package spectate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// ServerConfig configures the spectator HTTP server.
type ServerConfig struct {
	Address     string
	Router      RouterConfig
	RateLimit   *RateLimitConfig // nil disables rate limiting
	Logger      *log.Logger
	ReadTimeout time.Duration
}

// Server serves the spectator API.
type Server struct {
	http    *http.Server
	limiter *IPRateLimiter
	hub     *Hub
	logger  *log.Logger
	addr    net.Addr
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewServer builds the router and wraps it in an http.Server.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.RateLimit != nil && cfg.Router.RateLimiter == nil {
		cfg.Router.RateLimiter = NewIPRateLimiter(*cfg.RateLimit)
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Address,
			Handler:           NewRouter(cfg.Router),
			ReadHeaderTimeout: cfg.ReadTimeout,
		},
		limiter: cfg.Router.RateLimiter,
		hub:     cfg.Router.Hub,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start listens on the configured address and serves in the background.
// Listen errors are returned immediately.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("spectate: listen %s: %w", s.http.Addr, err)
	}
	s.addr = ln.Addr()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if s.limiter != nil {
		go s.limiter.Run(ctx)
	}

	go func() {
		defer close(s.done)
		s.logger.Info("Spectator API listening", "address", s.addr.String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Spectator API stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Shutdown disconnects spectators and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.hub != nil {
		s.hub.Close()
	}
	err := s.http.Shutdown(ctx)
	if s.addr != nil {
		select {
		case <-s.done:
		case <-ctx.Done():
		}
	}
	return err
}
