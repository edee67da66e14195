// Package watch re-runs the pipeline whenever the content tree changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before a run.
const DefaultDebounce = 500 * time.Millisecond

// RunFunc executes one pipeline run.
type RunFunc func(ctx context.Context) error

// Watch observes root recursively and calls run after each burst of changes
// has been quiet for debounce. Runs never overlap: events that arrive during a
// run schedule exactly one follow-up. Returns when ctx is cancelled.
//
// The pipeline converges, so the writes of one run trigger at most one more
// run that finds nothing to do.
func Watch(ctx context.Context, root string, debounce time.Duration, run RunFunc, logger *slog.Logger) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			if err := run(ctx); err != nil {
				if ctx.Err() != nil {
					logger.Info("watcher: stopped")
					return nil
				}
				logger.Error("watcher: run failed", slog.String("error", err.Error()))
			}
			// Directories created by the run (renames, new attachments dirs)
			// are picked up here as well as through Create events.
			if err := addDirsRecursive(w, root); err != nil {
				logger.Warn("watcher: rescan failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
			}
			logger.Debug("watcher: event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(debounce)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// ignored filters out events for atomic-write temp files and dotfiles.
func ignored(name string) bool {
	return strings.HasPrefix(filepath.Base(name), ".")
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
