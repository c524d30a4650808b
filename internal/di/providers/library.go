package providers

import (
	"github.com/samber/do/v2"

	"github.com/soundvaultapp/soundvault-server/internal/config"
	"github.com/soundvaultapp/soundvault-server/internal/library"
	"github.com/soundvaultapp/soundvault-server/internal/logger"
	"github.com/soundvaultapp/soundvault-server/internal/metastore"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/scanner"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/tagger"
)

// ProvideSessionManager provides the directory session manager.
func ProvideSessionManager(i do.Injector) (*session.Manager, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return session.NewManager(storeHandle.Store, log.Logger), nil
}

// ProvideMetadataStore provides the dual-tier metadata store.
func ProvideMetadataStore(i do.Injector) (*metastore.Store, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return metastore.New(storeHandle.Store, log.Logger), nil
}

// ProvidePlaybackRegistry provides the playback token registry.
func ProvidePlaybackRegistry(i do.Injector) (*playback.Registry, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return playback.NewRegistry(log.Logger), nil
}

// ProvideReconciler provides the scan reconciler.
func ProvideReconciler(i do.Injector) (*scanner.Reconciler, error) {
	meta := do.MustInvoke[*metastore.Store](i)
	registry := do.MustInvoke[*playback.Registry](i)
	log := do.MustInvoke[*logger.Logger](i)
	return scanner.NewReconciler(meta, registry, scanner.AudiometaProber{}, log.Logger), nil
}

// ProvideTaggerClient provides the AI tagging client. The client may be
// unconfigured; tagging endpoints then report the feature unavailable.
func ProvideTaggerClient(i do.Injector) (*tagger.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return tagger.New(tagger.Options{
		BaseURL:        cfg.Tagger.BaseURL,
		APIKey:         cfg.Tagger.APIKey,
		RequestsPerSec: cfg.Tagger.RequestsPerSec,
		MaxSampleBytes: cfg.Tagger.MaxSampleBytes,
		Logger:         log.Logger,
	}), nil
}

// ProvideLibraryService provides the library service.
func ProvideLibraryService(i do.Injector) (*library.Service, error) {
	meta := do.MustInvoke[*metastore.Store](i)
	sessions := do.MustInvoke[*session.Manager](i)
	reconciler := do.MustInvoke[*scanner.Reconciler](i)
	registry := do.MustInvoke[*playback.Registry](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	tagClient := do.MustInvoke[*tagger.Client](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return library.NewService(
		meta,
		sessions,
		reconciler,
		registry,
		searchHandle.SearchIndex,
		tagClient,
		scanner.AudiometaProber{},
		sseHandle.Manager,
		log.Logger,
	), nil
}
