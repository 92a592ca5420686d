package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/embedcheck/internal/analyzer"
	"github.com/specialistvlad/embedcheck/internal/config"
	"github.com/specialistvlad/embedcheck/internal/ctxlog"
	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/fsutil"
	"github.com/specialistvlad/embedcheck/internal/report"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watch runs a pass, then another one every time a document or settings
// file under the root changes, until ctx is canceled. onPass, when not nil,
// receives every completed pass.
func (a *App) Watch(ctx context.Context, debounce time.Duration, onPass func(*report.Run)) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	var dirs []string
	if isFile(a.config.Root) {
		dirs = []string{filepath.Dir(a.config.Root)}
	} else if dirs, err = a.finder.Dirs(a.config.Root); err != nil {
		return fmt.Errorf("failed to list directories to watch: %w", err)
	}
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}
	a.logger.Info("Watching for changes.", "root", a.config.Root, "directories", len(dirs))

	pass := func() error {
		run, err := a.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.logger.Error("Lint pass failed.", "error", err)
			return nil
		}
		if onPass != nil {
			onPass(run)
		}
		return nil
	}
	if err := pass(); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && a.watchNewDir(watcher, ev.Name) {
				continue
			}
			if !a.relevant(ev.Name) {
				continue
			}
			a.logger.Debug("Change detected.", "path", ev.Name, "op", ev.Op.String())
			if slices.Contains(config.FileNames, filepath.Base(ev.Name)) {
				a.reloadSettings(ctx)
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("File watcher error.", "error", err)

		case <-fire:
			fire = nil
			if err := pass(); err != nil {
				return err
			}
		}
	}
}

// watchNewDir starts watching a directory created under the root.
func (a *App) watchNewDir(watcher *fsnotify.Watcher, path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if slices.Contains(fsutil.SkippedDirs, filepath.Base(path)) {
		return true
	}
	if err := watcher.Add(path); err != nil {
		a.logger.Warn("Failed to watch new directory.", "path", path, "error", err)
	}
	return true
}

func (a *App) relevant(path string) bool {
	return document.DetectKind(path) != document.Unknown ||
		slices.Contains(config.FileNames, filepath.Base(path))
}

func (a *App) reloadSettings(ctx context.Context) {
	settings, err := loadSettings(ctx, a.config)
	if err != nil {
		a.logger.Error("Keeping previous settings.", "error", err)
		return
	}
	a.settings = settings
	a.finder = &fsutil.Finder{Exclude: settings.Exclude}
	if sc, ok := a.analyzer.(*analyzer.ShellCheck); ok {
		sc.Binary = settings.AnalyzerBinary
	}
	a.logger.Info("Settings reloaded.")
}

// IsInterrupt reports whether err ended a run because of a signal or
// cancellation.
func IsInterrupt(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, analyzer.ErrInterrupted)
}
