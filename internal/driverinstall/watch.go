package driverinstall

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// WatchBundle re-validates a provider's bundle whenever its directory
// changes on disk and reports each fresh result. It blocks until ctx is
// done or the watcher fails. The UI uses it to keep its pre-flight status
// current while a bundle is being replaced.
func (c *Coordinator) WatchBundle(ctx context.Context, provider Provider, report func(ValidationReport)) error {
	if provider == "" {
		provider = PreferredProvider(c.platform)
		if provider == "" {
			return errors.New("no virtual audio provider for this platform")
		}
	}

	dir, ok := c.locator.Dir(provider)
	if !ok {
		return fmt.Errorf("%s bundle directory not found", provider)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Warnf("failed to close watcher: %v", err)
		}
	}()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Infof("watching bundle directory: %s", dir)
	report(c.ValidateBundle(provider))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			log.Debugf("bundle change: %s", filepath.Base(event.Name))
			report(c.ValidateBundle(provider))
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
