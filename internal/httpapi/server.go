// ABOUTME: HTTP server wiring routes, the auth gate, and graceful shutdown
// ABOUTME: Owns the ServeMux and the process-wide auth collaborators

package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fernworks/authgate/internal/auth"
	"github.com/fernworks/authgate/internal/config"
	"github.com/fernworks/authgate/internal/store"
)

// shutdownTimeout bounds graceful shutdown after the run context is canceled.
const shutdownTimeout = 5 * time.Second

// Server serves the authentication API. All fields are immutable after New;
// per-request state lives in request contexts only.
type Server struct {
	addr          string
	logger        *slog.Logger
	users         store.UserStore
	codec         *auth.JWTCodec
	gate          *auth.Gate
	tokenLifetime time.Duration
	handler       http.Handler
}

// New wires the API routes with their role allow-sets and returns the server.
func New(cfg *config.Config, users store.UserStore, codec *auth.JWTCodec, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		addr:          cfg.Server.HTTPAddr,
		logger:        logger.With("component", "httpapi"),
		users:         users,
		codec:         codec,
		gate:          auth.NewGate(users, codec, logger, cfg.Auth.LookupTimeout),
		tokenLifetime: cfg.Auth.TokenLifetime,
	}

	mux := http.NewServeMux()

	// Session endpoints
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("GET /api/auth/logout", s.authenticated(s.handleLogout))

	// User endpoints
	mux.Handle("GET /api/users/me", s.authenticated(s.handleMe))
	mux.Handle("GET /api/users", s.adminOnly(s.handleListUsers))

	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handler = mux
	return s
}

// authenticated admits any signed-in user.
func (s *Server) authenticated(h http.HandlerFunc) http.Handler {
	return s.gate.Require(store.Authenticated)(h)
}

// adminOnly admits administrators only.
func (s *Server) adminOnly(h http.HandlerFunc) http.Handler {
	return s.gate.Require(store.AdminOnly)(h)
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// Fresh context: the run context is already canceled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	return httpServer.Shutdown(shutdownCtx)
}
