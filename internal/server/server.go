// Package server exposes the heatmap pipeline over HTTP. It serves the
// dataset's years and samples as JSON and renders per-year heatmaps as PNG,
// keeping recently rendered images in a bounded cache.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	globe "github.com/phanxgames/anomalyglobe"
)

const (
	// DefaultWidth is the heatmap width used when the request names none.
	DefaultWidth = 1024
	// MinWidth and MaxWidth bound the ?width= query parameter.
	MinWidth = 64
	MaxWidth = 4096

	requestTimeout = 30 * time.Second
)

// Server encapsulates the dataset, the renderer and the router.
type Server struct {
	Dataset *globe.ClimateDataset
	Logger  *slog.Logger

	cache  *pngCache
	ramp   globe.ColorRamp
	router *chi.Mux
}

// New creates a server over dataset with room for cacheSize rendered PNGs.
// A cacheSize of zero disables caching.
func New(dataset *globe.ClimateDataset, cacheSize int, logger *slog.Logger) (*Server, error) {
	if dataset == nil {
		return nil, fmt.Errorf("dataset must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	s := &Server{
		Dataset: dataset,
		Logger:  logger,
		cache:   newPNGCache(cacheSize),
		ramp:    globe.DefaultRamp(),
		router:  chi.NewRouter(),
	}
	s.mountRoutes()
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// mountRoutes registers middleware and routes.
//
// Ordering:
//  1. Recoverer      - catches panics; outermost to catch all failures.
//  2. RequestID      - correlation ID for the request log.
//  3. Timeout        - soft deadline on the request context.
//  4. RequestLogger  - structured access log.
func (s *Server) mountRoutes() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Timeout(requestTimeout))
	s.router.Use(RequestLogger(s.Logger))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/years", s.handleYears)
	s.router.Get("/years/{year}/samples", s.handleSamples)
	s.router.Get("/heatmap/{year}.png", s.handleHeatmap)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("heatmapd listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.Logger.Info("server shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.Logger.Info("server shutdown complete")
	return nil
}
