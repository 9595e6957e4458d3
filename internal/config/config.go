// Package config defines the process configuration shared by the globe
// binaries. Configuration is loaded once at startup and is immutable
// thereafter.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> Struct Defaults (Lowest)
package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is the top-level configuration struct.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Dataset DatasetConfig
	Globe   GlobeConfig
	Window  WindowConfig
	Server  ServerConfig
}

// DatasetConfig locates the anomaly dataset.
type DatasetConfig struct {
	// Source is a file path or an http(s) URL.
	Source  string        `envconfig:"GLOBE_DATASET" default:"./public/temperature_anomalies.json" validate:"required"`
	Timeout time.Duration `envconfig:"GLOBE_DATASET_TIMEOUT" default:"30s" validate:"gt=0"`
}

// GlobeConfig tunes the globe and its heatmap.
type GlobeConfig struct {
	Texture           string  `envconfig:"GLOBE_TEXTURE" default:"./public/output_earth_texture_optimized.jpg"`
	HeatmapResolution int     `envconfig:"GLOBE_HEATMAP_RESOLUTION" default:"2048" validate:"min=64,max=8192,even"`
	SphereSegments    int     `envconfig:"GLOBE_SPHERE_SEGMENTS" default:"64" validate:"min=8,max=128"`
	HeatmapVisible    bool    `envconfig:"GLOBE_HEATMAP_VISIBLE" default:"true"`
	AutoRotate        float64 `envconfig:"GLOBE_AUTO_ROTATE" default:"0"`
	Debug             bool    `envconfig:"GLOBE_DEBUG" default:"false"`
	Script            string  `envconfig:"GLOBE_SCRIPT"`
	ScreenshotDir     string  `envconfig:"GLOBE_SCREENSHOT_DIR" default:"screenshots"`
}

// WindowConfig holds desktop window settings.
type WindowConfig struct {
	Width   int    `envconfig:"GLOBE_WINDOW_WIDTH" default:"1280" validate:"min=320"`
	Height  int    `envconfig:"GLOBE_WINDOW_HEIGHT" default:"800" validate:"min=240"`
	Title   string `envconfig:"GLOBE_WINDOW_TITLE" default:"Climate Anomaly Globe"`
	ShowFPS bool   `envconfig:"GLOBE_SHOW_FPS" default:"false"`
}

// ServerConfig holds heatmapd settings.
type ServerConfig struct {
	Addr      string `envconfig:"HEATMAPD_ADDR" default:":8080" validate:"required"`
	CacheSize int    `envconfig:"HEATMAPD_CACHE_SIZE" default:"16" validate:"min=0,max=1024"`
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
