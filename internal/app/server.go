package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatsync/internal/auth"
	"github.com/vovakirdan/chatsync/internal/config"
	"github.com/vovakirdan/chatsync/internal/store"
	"github.com/vovakirdan/chatsync/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/chatsync/internal/transport/http"
)

// Server wires the reference backend: sqlite store, auth, API and socket hub.
type Server struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *transporthttp.Hub
	store           store.Store
	log             *zerolog.Logger
}

// NewServer opens the store and builds the HTTP server.
func NewServer(cfg config.StubConfig, logger *zerolog.Logger) (*Server, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	return newServer(cfg, st, logger), nil
}

func newServer(cfg config.StubConfig, st store.Store, logger *zerolog.Logger) *Server {
	jwtConfig := &auth.JWTConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: "chatsync",
		TTL:    cfg.TokenTTL,
	}
	authService := auth.NewService(st, jwtConfig, 0)

	hub := transporthttp.NewHub(logger)
	return &Server{
		server:          transporthttp.NewServer(hub, authService, st, cfg, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}
}

// Handler exposes the routes, for serving from a test listener.
func (s *Server) Handler() stdhttp.Handler {
	return s.server.Handler
}

// Run listens on the configured address and blocks until ctx is cancelled
// or the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cleanup()
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully and closes the store.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErr := make(chan error, 1)
	// Hijacked websocket connections are not tracked by Shutdown; tie them to ctx.
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		s.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.log.Info().Msg("shutting down http server")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.cleanup()
			return err
		}

		s.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (s *Server) cleanup() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn().Err(err).Msg("failed to close store")
		} else {
			s.log.Info().Msg("store closed")
		}
	}
}
