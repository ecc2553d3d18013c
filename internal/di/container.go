// Package di provides dependency injection configuration for the POS sync server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/Iceblockp/mobile-pos-sub001/internal/config"
	"github.com/Iceblockp/mobile-pos-sub001/internal/di/providers"
	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/recovery"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/export"
	snapimport "github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/import"
	"github.com/Iceblockp/mobile-pos-sub001/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Snapshot engine
	do.Provide(injector, providers.ProvideSnapshotService)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideCheckpoints)
	do.Provide(injector, providers.ProvideExporter)
	do.Provide(injector, providers.ProvideImporter)

	// Workers
	do.Provide(injector, providers.ProvideSnapshotWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization
// in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*snapshot.Service](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*recovery.Checkpoints](injector)
	_ = do.MustInvoke[*export.Exporter](injector)
	_ = do.MustInvoke[*snapimport.Importer](injector)
	_ = do.MustInvoke[*providers.SnapshotWatcherHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
