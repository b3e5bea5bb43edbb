package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/buildq/internal/config"
	"github.com/vk/buildq/internal/ctxlog"
)

// App encapsulates the driver's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	model  *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded
// manifest model.
func NewApp(outW, errW io.Writer, appConfig *Config, loader config.Loader) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	logger.Debug("Manifest loaded and translated into unified model.", "tasks", len(model.Tasks))

	return &App{
		outW:   outW,
		errW:   errW,
		logger: logger,
		model:  model,
	}, nil
}

// Model returns the loaded manifest model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// levels maps the -log-level values accepted by the CLI to slog levels.
// Unknown values fall back to the zero value, slog.LevelInfo.
var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app's isolated logger. The global default logger is
// left untouched so embedding callers keep theirs.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levels[level]}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
