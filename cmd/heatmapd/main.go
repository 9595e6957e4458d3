// Command heatmapd serves per-year climate-anomaly heatmaps over HTTP.
//
// It loads the dataset named by GLOBE_DATASET once at startup, then serves
// GET /healthz, /years, /years/{year}/samples and /heatmap/{year}.png on
// HEATMAPD_ADDR. Graceful shutdown is handled via SIGINT and SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phanxgames/anomalyglobe/internal/config"
	"github.com/phanxgames/anomalyglobe/internal/fetch"
	"github.com/phanxgames/anomalyglobe/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.Timeout)
	dataset, err := fetch.New(logger).Dataset(loadCtx, cfg.Dataset.Source)
	cancel()
	if err != nil {
		return err
	}

	srv, err := server.New(dataset, cfg.Server.CacheSize, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
