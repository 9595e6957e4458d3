// Command heatmapgen renders climate-anomaly heatmaps to PNG files.
//
//	heatmapgen -out heatmaps -years 1900,2020 -width 2048
//
// With no -years every year in the dataset is rendered. Years are rendered
// concurrently, one per CPU.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	globe "github.com/phanxgames/anomalyglobe"
	"github.com/phanxgames/anomalyglobe/internal/config"
	"github.com/phanxgames/anomalyglobe/internal/fetch"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	fs := flag.NewFlagSet("heatmapgen", flag.ContinueOnError)
	out := fs.String("out", "heatmaps", "output directory")
	yearsFlag := fs.String("years", "", "comma-separated years (default: all)")
	width := fs.Int("width", cfg.Globe.HeatmapResolution, "raster width in pixels (even)")
	source := fs.String("dataset", cfg.Dataset.Source, "dataset path or URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *width <= 0 || *width%2 != 0 {
		return fmt.Errorf("-width must be a positive even number, got %d", *width)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dataset.Timeout)
	dataset, err := fetch.New(logger).Dataset(ctx, *source)
	cancel()
	if err != nil {
		return err
	}

	years, err := parseYears(*yearsFlag, dataset)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	synth := globe.NewSynthesizer(*width)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, year := range years {
		g.Go(func() error {
			samples := dataset.Samples(year)
			if len(samples) == 0 {
				logger.Warn("no samples, skipping", slog.Int("year", year))
				return nil
			}
			path := filepath.Join(*out, fmt.Sprintf("heatmap_%d.png", year))
			if err := globe.WritePNG(path, synth.Synthesize(samples)); err != nil {
				return fmt.Errorf("year %d: %w", year, err)
			}
			logger.Info("heatmap written", slog.Int("year", year), slog.String("path", path))
			return nil
		})
	}
	return g.Wait()
}

// parseYears turns "1900, 2020" into a year list. Empty input selects every
// year in the dataset.
func parseYears(s string, d *globe.ClimateDataset) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return d.Years(), nil
	}
	var years []int
	for _, part := range strings.Split(s, ",") {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("-years: %q is not a year", part)
		}
		years = append(years, y)
	}
	return years, nil
}
