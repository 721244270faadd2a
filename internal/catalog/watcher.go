package catalog

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads reg whenever the catalog file changes, until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are picked up too. A file that fails to parse keeps the previous content.
func Watch(ctx context.Context, path string, reg *Registry, logger zerolog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info().Str("path", abs).Msg("Watching node catalog")

	var timer *time.Timer
	var reloadCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-reloadCh:
			reloadCh = nil
			types, err := Load(abs)
			if err != nil {
				logger.Error().Err(err).Str("path", abs).Msg("Catalog reload failed, keeping previous catalog")
				continue
			}
			reg.Replace(types)
			logger.Info().Int("nodeTypes", reg.Len()).Msg("Node catalog reloaded")

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			reloadCh = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("Catalog watcher error")
		}
	}
}
