package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/soundvaultapp/soundvault-server/internal/config"
	"github.com/soundvaultapp/soundvault-server/internal/logger"
	"github.com/soundvaultapp/soundvault-server/internal/search"
	"github.com/soundvaultapp/soundvault-server/internal/sse"
	"github.com/soundvaultapp/soundvault-server/internal/store"
)

// StoreHandle wraps the backup store with explicit shutdown.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the Badger-backed backup store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := store.New(filepath.Join(cfg.Data.BasePath, "db"), log.Logger)
	if err != nil {
		return nil, err
	}
	return &StoreHandle{Store: st}, nil
}

// SearchIndexHandle wraps the search index with explicit shutdown.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex opens or creates the on-disk search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{SearchIndex: idx}, nil
}

// SSEManagerHandle wraps the SSE manager with its broadcast loop.
type SSEManagerHandle struct {
	Manager *sse.Manager
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	h.Manager.Shutdown()
	return nil
}

// ProvideSSEManager provides the SSE manager and starts its loop.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	return &SSEManagerHandle{Manager: manager, cancel: cancel}, nil
}
