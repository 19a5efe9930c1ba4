package main

import (
	"fmt"
	"io"
	"log/slog"

	"lsmkv/pkg/config"
)

// initConfig loads the YAML config and applies command-line overrides.
func initConfig(path string, ov overrides) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if ov.dir != "" {
		cfg.Storage.Path = ov.dir
	}
	if ov.threshold > 0 {
		cfg.Storage.FlushThreshold = ov.threshold
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// initLogger installs the global slog.Logger (JSON or text).
func initLogger(cfg *config.Config, w io.Writer) {
	level, _ := cfg.Logger.SlogLevel()
	opts := &slog.HandlerOptions{AddSource: true, Level: level}

	var handler slog.Handler
	if cfg.Logger.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)
}
