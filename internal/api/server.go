// Package api serves the runtime over HTTP.
//
// Calls are submitted through the runtime queue, so the node's Run loop
// must be running for POST /v1/calls to complete. Reads go straight to the
// runtime views and the event store.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roach88/treasury/internal/ir"
	"github.com/roach88/treasury/internal/runtime"
	"github.com/roach88/treasury/internal/store"
)

// EventReader reads recorded events. *store.Store implements it.
type EventReader interface {
	ReadEvents(ctx context.Context, f store.EventFilter) ([]ir.EventRecord, error)
}

// Server exposes one runtime.
type Server struct {
	rt     *runtime.Runtime
	events EventReader
	logger *slog.Logger
	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New builds the routes for rt. events may be nil, in which case
// GET /v1/events answers 501.
func New(rt *runtime.Runtime, events EventReader, opts ...Option) *Server {
	s := &Server{
		rt:     rt,
		events: events,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.logRequests())
	s.registerRoutes(s.engine)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
