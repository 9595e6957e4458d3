// Command anomalyglobe opens the interactive climate-anomaly globe.
//
// Configuration comes from the environment and an optional .env file; see
// internal/config. Set GLOBE_SCRIPT to a JSON script to drive the globe
// automatically and exit when the script finishes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	globe "github.com/phanxgames/anomalyglobe"
	"github.com/phanxgames/anomalyglobe/internal/config"
	"github.com/phanxgames/anomalyglobe/internal/fetch"
)

// fadeIn is how long the overlay takes to appear when switched on.
const fadeIn = 0.4

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
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	fetcher := fetch.New(logger)
	app := globe.NewApp(globe.AppConfig{
		Load: func(ctx context.Context) (*globe.ClimateDataset, error) {
			ctx, cancel := context.WithTimeout(ctx, cfg.Dataset.Timeout)
			defer cancel()
			return fetcher.Dataset(ctx, cfg.Dataset.Source)
		},
		GlobeTexture:    cfg.Globe.Texture,
		Resolution:      cfg.Globe.HeatmapResolution,
		Segments:        cfg.Globe.SphereSegments,
		StartVisible:    cfg.Globe.HeatmapVisible,
		AutoRotate:      cfg.Globe.AutoRotate,
		FadeIn:          fadeIn,
		ShowFPS:         cfg.Window.ShowFPS,
		Debug:           cfg.Globe.Debug,
		ScreenshotDir:   cfg.Globe.ScreenshotDir,
		ExitAfterScript: cfg.Globe.Script != "",
		Logger:          logger,
	})
	defer app.Close()

	if cfg.Globe.Script != "" {
		data, err := os.ReadFile(cfg.Globe.Script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err := globe.LoadTestScript(data)
		if err != nil {
			return err
		}
		app.SetTestRunner(runner)
	}

	return globe.Run(app, globe.RunConfig{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	})
}
