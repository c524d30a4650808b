package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/soundvaultapp/soundvault-server/internal/config"
	"github.com/soundvaultapp/soundvault-server/internal/library"
	"github.com/soundvaultapp/soundvault-server/internal/logger"
	"github.com/soundvaultapp/soundvault-server/internal/metastore"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/watcher"
)

// FileWatcherHandle owns the watcher goroutines.
type FileWatcherHandle struct {
	watcher *watcher.Watcher
	cancel  context.CancelFunc
	started bool
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if !h.started {
		return nil
	}
	h.cancel()
	return h.watcher.Stop()
}

// ProvideFileWatcher watches an auto-connected folder and rescans on
// settled changes. Disabled unless both the watcher flag and a startup
// sound path are configured: folders connected via the API at runtime
// are rescanned on demand instead.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Watcher.Enabled || cfg.Library.SoundPath == "" {
		return &FileWatcherHandle{started: false}, nil
	}

	sessions := do.MustInvoke[*session.Manager](i)
	librarySvc := do.MustInvoke[*library.Service](i)

	w, err := watcher.New(log.Logger, watcher.Options{
		SettleDelay: cfg.Watcher.SettleDelay,
		// The metadata sidecar is rewritten on every mutation; watching
		// it would rescan in a loop.
		IgnorePatterns: []string{metastore.MetadataFilename, "*.tmp", "*.part", "*.crdownload"},
	})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(cfg.Library.SoundPath); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events():
				if !ok {
					return
				}
				log.Info("folder changed, rescanning", "path", event.Path, "type", event.Type.String())
				if sessions.Current() == nil {
					continue
				}
				if _, err := librarySvc.Scan(ctx); err != nil {
					log.Warn("rescan after folder change failed", "error", err)
				}
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				log.Warn("watcher error", "error", err)
			}
		}
	}()

	log.Info("file watcher started", "path", cfg.Library.SoundPath)
	return &FileWatcherHandle{watcher: w, cancel: cancel, started: true}, nil
}
