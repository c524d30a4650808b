// Package di provides dependency injection configuration for the SoundVault server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/soundvaultapp/soundvault-server/internal/config"
	"github.com/soundvaultapp/soundvault-server/internal/di/providers"
	"github.com/soundvaultapp/soundvault-server/internal/library"
	"github.com/soundvaultapp/soundvault-server/internal/logger"
	"github.com/soundvaultapp/soundvault-server/internal/metastore"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/scanner"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/tagger"
	"github.com/soundvaultapp/soundvault-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSSEManager)

	// Library layer
	do.Provide(injector, providers.ProvideSessionManager)
	do.Provide(injector, providers.ProvideMetadataStore)
	do.Provide(injector, providers.ProvidePlaybackRegistry)
	do.Provide(injector, providers.ProvideReconciler)
	do.Provide(injector, providers.ProvideTaggerClient)
	do.Provide(injector, providers.ProvideLibraryService)

	// Startup and workers
	do.Provide(injector, providers.ProvideBootstrap)
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)

	_ = do.MustInvoke[*session.Manager](injector)
	_ = do.MustInvoke[*metastore.Store](injector)
	_ = do.MustInvoke[*playback.Registry](injector)
	_ = do.MustInvoke[*scanner.Reconciler](injector)
	_ = do.MustInvoke[*tagger.Client](injector)
	_ = do.MustInvoke[*library.Service](injector)

	_ = do.MustInvoke[*providers.Bootstrap](injector)
	_ = do.MustInvoke[*providers.FileWatcherHandle](injector)

	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
