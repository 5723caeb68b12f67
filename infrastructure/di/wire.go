//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"hazboun-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideCatalogProvider,
	ProvideCatalog,
	ProvideCatalogWatcher,
	ProvideDirectory,
	ProvideMetrics,
	ProvideTracer,
	ProvideMemberStore,
	ProvideEventPublisher,
	ProvideExportArchive,
	ProvideDirectoryLoader,
	ProvideQueryCache,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The returned cleanup
// closes the store, flushes traces and stops background goroutines.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
