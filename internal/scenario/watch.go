package scenario

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rescale/navlist/internal/logging"
)

// DefaultDebounce is how long a file must stay quiet before a change fires.
const DefaultDebounce = 300 * time.Millisecond

// Watch calls onChange every time the file at path settles after a change,
// until ctx is done. The parent directory is watched so that editors that
// save by rename are picked up.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *logging.Logger, onChange func()) error {
	if logger == nil {
		logger = logging.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Debug().Str("path", abs).Msg("watching scenario")

	ticker := time.NewTicker(debounce / 3)
	defer ticker.Stop()

	var changed time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				changed = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")

		case <-ticker.C:
			if !changed.IsZero() && time.Since(changed) >= debounce {
				changed = time.Time{}
				onChange()
			}
		}
	}
}
