// Package server exposes the health check and the webhook that automation
// workflows use to trigger agent actions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-agent/internal/logging"
	"github.com/jonathan/outreach-agent/internal/schemas"
	"github.com/jonathan/outreach-agent/internal/server/middleware"
	"github.com/jonathan/outreach-agent/internal/server/ratelimit"
)

// ServiceName is reported by the health check.
const ServiceName = "outreach-agent"

// maxBodyBytes bounds webhook bodies; network exports can be large.
const maxBodyBytes = 10 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	dispatcher  *Dispatcher
	rateLimiter *ratelimit.Limiter
	shutdown    time.Duration
	logger      *slog.Logger
}

// Config holds server configuration
type Config struct {
	Port      int
	RateLimit *ratelimit.Config
	// ShutdownTimeout bounds graceful shutdown. Zero means 30s.
	ShutdownTimeout time.Duration
}

// New creates a new server instance
func New(cfg Config, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		dispatcher:  NewDispatcher(deps),
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		shutdown:    cfg.ShutdownTimeout,
		logger:      logger,
	}
	if s.shutdown <= 0 {
		s.shutdown = 30 * time.Second
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /actions", s.handleActions)
	mux.HandleFunc("POST /webhook/trigger", s.handleTrigger)

	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = ratelimit.Middleware(s.rateLimiter, logger)(handler)
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.RequestID(handler)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second, // discovery and generation can be slow
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the server's root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
		defer cancel()
		defer s.rateLimiter.Stop()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.logger.Info("server stopped")
	return err
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(r.Context(), w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// handleActions lists the registered actions by workflow.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(r.Context(), w, http.StatusOK, map[string]any{
		"workflows": ActionGroups(),
		"aliases":   aliases,
	})
}

// handleTrigger runs the action named in the body. The rest of the body is
// the action's parameters.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(ctx, w, "", &ValidationError{Field: "(body)", Message: err.Error()})
		return
	}

	action, err := parseEnvelope(body)
	if err != nil {
		s.errorResponse(ctx, w, "", err)
		return
	}

	logger := logging.FromContext(ctx).With(slog.String("action", string(action)))
	logger.InfoContext(ctx, "dispatching action")

	result, err := s.dispatcher.Dispatch(ctx, action, body)
	if err != nil {
		logger.WarnContext(ctx, "action failed", slog.Any("error", err))
		s.errorResponse(ctx, w, action, err)
		return
	}

	s.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"success": true,
		"action":  action,
		"result":  result,
	})
}

// parseEnvelope checks the body against the webhook request schema and
// returns the registered action it names.
func parseEnvelope(body []byte) (Action, error) {
	if err := schemas.Validate(schemas.WebhookRequest, body); err != nil {
		var decodeErr *schemas.DecodeError
		if errors.As(err, &decodeErr) {
			return "", &ValidationError{Field: "(body)", Message: "request body must be a JSON object"}
		}
		return "", &UnsupportedOperationError{Supported: Actions()}
	}

	var envelope struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", &ValidationError{Field: "(body)", Message: err.Error()}
	}
	return ParseAction(envelope.Action)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.FromContext(ctx).ErrorContext(ctx, "failed to encode JSON response", slog.Any("error", err))
	}
}

// errorResponse writes {"success": false, "error": ...} with the status
// from HTTPStatus.
func (s *Server) errorResponse(ctx context.Context, w http.ResponseWriter, action Action, err error) {
	body := map[string]any{
		"success": false,
		"error":   err.Error(),
	}
	if action != "" {
		body["action"] = action
	}
	var unsupported *UnsupportedOperationError
	if errors.As(err, &unsupported) {
		body["available_actions"] = unsupported.Supported
	}
	s.jsonResponse(ctx, w, HTTPStatus(err), body)
}
