package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smallbiznis/prepquiz/internal/config"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// HTTPServer wraps a gin.Engine with graceful shutdown helpers.
type HTTPServer struct {
	Engine       *gin.Engine
	writeTimeout time.Duration
	logger       *zap.Logger
}

// NewHTTPServer prepares the engine and derives the write timeout from the
// generation timeout so long model calls are not cut off mid-response.
func NewHTTPServer(router *gin.Engine, cfg config.Config, logger *zap.Logger) *HTTPServer {
	router.HandleMethodNotAllowed = true
	router.ForwardedByClientIP = true

	var writeTimeout time.Duration
	if cfg.GenerationTimeout > 0 {
		writeTimeout = cfg.GenerationTimeout + 30*time.Second
	}
	return &HTTPServer{Engine: router, writeTimeout: writeTimeout, logger: logger}
}

// Run starts the HTTP server on the provided addr and shuts it down when ctx is done.
func (s *HTTPServer) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Engine,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      s.writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if s.logger != nil {
			s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		}
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
