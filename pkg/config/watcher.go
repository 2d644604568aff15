package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/replybot/pkg/logger"
)

// defaultDebounce coalesces the burst of events editors emit for one save.
const defaultDebounce = 200 * time.Millisecond

// Watcher reloads config.toml whenever it changes on disk and hands the new
// Config to a callback.
type Watcher struct {
	configer *Configer
	onChange func(*Config)
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher returns a Watcher for the configer's config.toml.
func NewWatcher(c *Configer, onChange func(*Config), l *slog.Logger) *Watcher {
	if l == nil {
		l = logger.Nop()
	}
	return &Watcher{
		configer: c,
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   l,
	}
}

// Run watches until ctx is done. The directory is watched rather than the
// file so that editors replacing the file by rename are noticed.
// A config that fails to parse is logged and skipped.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	path := filepath.Clean(w.configer.GetTarget())
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching config dir: %w", err)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			cfg, err := w.configer.LoadConfig()
			if err != nil {
				w.logger.Warn("ignoring invalid config change", "path", path, "error", err)
				continue
			}
			w.logger.Info("config reloaded", "path", path)
			w.onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("config watcher error: %w", err)
		}
	}
}
