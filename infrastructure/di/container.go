package di

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"hazboun-backend/application/commands/bus"
	"hazboun-backend/application/ports"
	querybus "hazboun-backend/application/queries/bus"
	"hazboun-backend/application/services"
	"hazboun-backend/application/state"
	"hazboun-backend/infrastructure/config"
	"hazboun-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Catalog        *config.CatalogProvider
	CatalogWatcher *config.CatalogWatcher // nil without CATALOG_FILE
	Directory      *state.Directory
	Store          ports.MemberStore
	Publisher      ports.EventPublisher
	Archive        ports.ExportArchive // nil when archiving is not configured
	Loader         *services.DirectoryLoader
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Cache          *QueryCache
	Metrics        *observability.Collector
	Tracer         trace.Tracer
}
