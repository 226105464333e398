package library

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ShHaWkK/SpootifyCLI/logger"
)

// rescanDebounce batches bursts of filesystem events (a copy of a large
// file emits many writes) into a single rescan.
const rescanDebounce = 2 * time.Second

// Watch rescans the catalog whenever files appear in or vanish from the
// music directory outside of the upload/delete handlers. It blocks until
// ctx is cancelled.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !hasAudioExtension(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(rescanDebounce)
				timerC = timer.C
			} else {
				timer.Reset(rescanDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("library watcher error", logger.ErrorField(err))
		case <-timerC:
			timer = nil
			timerC = nil
			logger.Info("music directory changed, rescanning library")
			if err := c.Scan(); err != nil {
				logger.Error("library rescan failed", logger.ErrorField(err))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
