// Package server exposes the assistant over HTTP: a chat endpoint, a health
// probe and the Prometheus metrics endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/askdocs"
	"github.com/hupe1980/askdocs/logging"
)

// Options configure the Server.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
	// TurnTimeout bounds one chat turn end to end.
	TurnTimeout time.Duration
}

// Server wraps the Assistant behind an HTTP API.
type Server struct {
	assistant   *askdocs.Assistant
	logger      logging.Logger
	addr        string
	turnTimeout time.Duration
	httpSrv     *http.Server
}

// New creates a Server over the given Assistant.
func New(assistant *askdocs.Assistant, optFns ...func(o *Options)) *Server {
	opts := Options{
		Addr:        ":8080",
		Logger:      logging.NoOpLogger{},
		TurnTimeout: 120 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Server{
		assistant:   assistant,
		logger:      opts.Logger,
		addr:        opts.Addr,
		turnTimeout: opts.TurnTimeout,
	}
}

// Router builds the gin engine with all routes mounted. Exposed separately so
// tests can drive it with httptest without opening a socket.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.POST("/chat/query", s.handleChatQuery)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listening", "addr", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
