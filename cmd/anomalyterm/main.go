// Command anomalyterm previews climate-anomaly heatmaps in a terminal.
//
// ←/→ change the year, h toggles the heatmap, q or Esc quits. Logs go to
// anomalyterm.log so they do not garble the screen.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/anomalyglobe/internal/config"
	"github.com/phanxgames/anomalyglobe/internal/fetch"
	"github.com/phanxgames/anomalyglobe/internal/termview"
)

// previewResolution is the raster width sampled down to the terminal.
const previewResolution = 512

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logFile, err := os.OpenFile("anomalyterm.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.Timeout)
	dataset, err := fetch.New(logger).Dataset(loadCtx, cfg.Dataset.Source)
	cancel()
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	termview.NewView(screen, dataset, previewResolution, logger).Run(ctx)
	return nil
}
