package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/specialistvlad/embedcheck/internal/analyzer"
	"github.com/specialistvlad/embedcheck/internal/config"
	"github.com/specialistvlad/embedcheck/internal/ctxlog"
	"github.com/specialistvlad/embedcheck/internal/diagnostic"
	"github.com/specialistvlad/embedcheck/internal/fsutil"
	"github.com/specialistvlad/embedcheck/internal/hcl"
	"github.com/specialistvlad/embedcheck/internal/toml"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *config.Settings
	analyzer analyzer.Analyzer
	finder   *fsutil.Finder
}

// Option customizes an App.
type Option func(*App)

// WithAnalyzer replaces the shellcheck analyzer.
func WithAnalyzer(a analyzer.Analyzer) Option {
	return func(app *App) { app.analyzer = a }
}

// NewApp is the constructor for the main application. The report goes to
// outW and logs to logW. Settings are read from cfg.ConfigPath or from a
// settings file found in the root.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}
	logger := newLogger(level, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	settings, err := loadSettings(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		settings: settings,
		finder:   &fsutil.Finder{Exclude: settings.Exclude},
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.analyzer == nil {
		app.analyzer = analyzer.NewShellCheck(settings.AnalyzerBinary)
	}

	logger.Debug("App initialized.",
		"root", cfg.Root,
		"workers", settings.Workers,
		"min_severity", settings.MinSeverity.String(),
		"analyzer", settings.AnalyzerBinary,
	)
	return app, nil
}

// Settings returns the effective settings. This is primarily for testing.
func (a *App) Settings() *config.Settings {
	return a.settings
}

func loadSettings(ctx context.Context, cfg *Config) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	settings := config.Default()

	path := cfg.ConfigPath
	if path == "" {
		dir := cfg.Root
		if isFile(dir) {
			dir = filepath.Dir(dir)
		}
		found, err := config.Find(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}

	if path != "" {
		loader, err := loaderFor(path)
		if err != nil {
			return nil, err
		}
		f, err := loader.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		if err := settings.Apply(f); err != nil {
			return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
		}
		logger.Debug("Settings file applied.", "path", path)
	}

	if cfg.Workers > 0 {
		settings.Workers = cfg.Workers
	}
	if cfg.AnalyzerBinary != "" {
		settings.AnalyzerBinary = cfg.AnalyzerBinary
	}
	if cfg.MinSeverity != "" {
		sev, err := diagnostic.ParseSeverity(cfg.MinSeverity)
		if err != nil {
			return nil, err
		}
		settings.MinSeverity = sev
	}
	return settings, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func loaderFor(path string) (config.Loader, error) {
	switch filepath.Ext(path) {
	case ".hcl":
		return hcl.NewLoader(), nil
	case ".toml":
		return toml.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported settings file %s: want .hcl or .toml", path)
	}
}
