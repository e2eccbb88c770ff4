// Package config loads downloader configuration from a TOML file.
// Command-line flags override file values; file values override defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is looked up in the working directory when no config path
// is given.
const DefaultFileName = "finlex.toml"

// Config holds every tunable of the downloader with its file representation.
type Config struct {
	// Output is the root directory documents are written under.
	Output string `toml:"output"`

	// Categories selects what to download: act, judgment, doc, or the
	// authority-regulation pseudo-category.
	Categories []string `toml:"categories"`

	// Years is the default year window; YearOverrides refines it per
	// category.
	Years         int            `toml:"years"`
	YearOverrides map[string]int `toml:"year_overrides"`

	// Lang is the langAndVersion marker requested from the API.
	Lang string `toml:"lang"`

	// PageSize and MaxPages bound listing requests.
	PageSize int `toml:"page_size"`
	MaxPages int `toml:"max_pages"`

	// SleepSeconds is the pacing interval between requests; MaxRetries
	// bounds transient-failure retries.
	SleepSeconds float64 `toml:"sleep_seconds"`
	MaxRetries   int     `toml:"max_retries"`

	// Companion toggles.
	FetchPDF   bool `toml:"pdf"`
	FetchZip   bool `toml:"zip"`
	FetchMedia bool `toml:"media"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file and no flags are
// present.
func Default() Config {
	return Config{
		Output:       "./finlex-data",
		Categories:   []string{"act"},
		Years:        1,
		Lang:         "fin@",
		PageSize:     10,
		SleepSeconds: 5.0,
		MaxRetries:   3,
		LogLevel:     "info",
	}
}

// Load reads a config file over the defaults. A missing file is not an
// error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Level parses the configured log level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
