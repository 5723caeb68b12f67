package di

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hazboun-backend/application/commands"
	"hazboun-backend/application/commands/bus"
	commandhandlers "hazboun-backend/application/commands/handlers"
	"hazboun-backend/application/ports"
	"hazboun-backend/application/queries"
	querybus "hazboun-backend/application/queries/bus"
	queryhandlers "hazboun-backend/application/queries/handlers"
	"hazboun-backend/application/services"
	"hazboun-backend/application/state"
	domainconfig "hazboun-backend/domain/config"
	"hazboun-backend/infrastructure/archive/fs"
	"hazboun-backend/infrastructure/archive/s3"
	"hazboun-backend/infrastructure/config"
	"hazboun-backend/infrastructure/messaging/eventbridge"
	"hazboun-backend/infrastructure/messaging/logging"
	"hazboun-backend/infrastructure/persistence/decorators"
	"hazboun-backend/infrastructure/persistence/memory"
	"hazboun-backend/infrastructure/persistence/sqlstore"
	"hazboun-backend/infrastructure/persistence/supabase"
	"hazboun-backend/pkg/observability"
)

const (
	serviceName = "hazboun-directory"

	// queryCacheTTL bounds how long a cached view may outlive its data
	// version; version changes already invalidate it.
	queryCacheTTL      = 300
	queryCacheInterval = time.Minute
)

// ProvideLogger builds the zap logger. LOG_FILE redirects output, which the
// terminal UI relies on to keep the screen clean.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() || cfg.IsLambda {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		zc.OutputPaths = []string{cfg.LogFile}
		zc.ErrorOutputPaths = []string{cfg.LogFile}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideCatalogProvider loads the domain catalog.
func ProvideCatalogProvider(cfg *config.Config) (*config.CatalogProvider, error) {
	return config.NewCatalogProvider(cfg)
}

// ProvideCatalog exposes the catalog provider as the application port.
func ProvideCatalog(p *config.CatalogProvider) ports.CatalogProvider {
	return p
}

// ProvideCatalogWatcher watches CATALOG_FILE. It returns nil when no file is
// configured. The caller starts it.
func ProvideCatalogWatcher(p *config.CatalogProvider, cache *QueryCache, logger *zap.Logger) (*config.CatalogWatcher, func(), error) {
	if p.Path() == "" {
		return nil, func() {}, nil
	}
	w, err := config.NewCatalogWatcher(p, logger)
	if err != nil {
		return nil, nil, err
	}
	// Cached views embed catalog content such as colors and narratives.
	w.OnChange(func(_ *domainconfig.DomainConfig) { _ = cache.Clear(context.Background()) })
	return w, w.Stop, nil
}

// ProvideDirectory creates the shared in-memory directory.
func ProvideDirectory() *state.Directory {
	return state.NewDirectory()
}

// ProvideMetrics creates the Prometheus collector.
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("hazboun")
}

// ProvideTracer returns the service tracer. With tracing disabled it is the
// global no-op tracer.
func ProvideTracer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (trace.Tracer, func(), error) {
	if !cfg.EnableTracing {
		return observability.NoopTracer(serviceName), func() {}, nil
	}
	tp, err := observability.InitTracing(ctx, serviceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp.Tracer(), cleanup, nil
}

// ProvideMemberStore opens the configured record store and wraps it with
// instrumentation and, if enabled, a circuit breaker.
func ProvideMemberStore(
	ctx context.Context,
	cfg *config.Config,
	tracer trace.Tracer,
	metrics *observability.Collector,
	logger *zap.Logger,
) (ports.MemberStore, func(), error) {
	var (
		store   ports.MemberStore
		cleanup = func() {}
	)

	switch cfg.StoreDriver {
	case config.DriverSupabase:
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, nil, err
		}
		store = supabase.NewStore(client, cfg.MembersTable, logger)

	case config.DriverPostgres, config.DriverSQLite:
		dialect, err := sqlstore.DialectFor(cfg.StoreDriver)
		if err != nil {
			return nil, nil, err
		}
		dsn := cfg.DatabaseURL
		if cfg.StoreDriver == config.DriverSQLite {
			dsn = cfg.SQLitePath
		}
		s, err := sqlstore.Open(ctx, dialect, dsn, cfg.MembersTable, logger)
		if err != nil {
			return nil, nil, err
		}
		store = s
		cleanup = func() { _ = s.Close() }

	case config.DriverMemory:
		if cfg.SeedFile != "" {
			s, err := memory.LoadFile(cfg.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			store = s
		} else {
			store = memory.NewStore()
		}

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	var observer decorators.StoreObserver
	if cfg.EnableMetrics {
		observer = metrics
	}
	store = decorators.NewInstrumentedStore(store, cfg.StoreDriver, tracer, observer)
	if cfg.EnableCircuitBreaker {
		store = decorators.NewBreakerStore(store, decorators.DefaultBreakerConfig("member-store"), logger)
	}

	logger.Info("Member store ready", zap.String("driver", cfg.StoreDriver), zap.Bool("circuitBreaker", cfg.EnableCircuitBreaker))
	return store, cleanup, nil
}

// ProvideEventPublisher publishes to EventBridge when EVENT_BUS_NAME is set,
// and to the log otherwise.
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	if cfg.EventBusName == "" {
		return logging.NewPublisher(logger), nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.EventBusName, logger), nil
}

// ProvideExportArchive stores archived exports in EXPORT_BUCKET, or under
// EXPORT_DIR when no bucket is set. Lambda has no writable directory to
// speak of, so there the archive is left out without a bucket.
func ProvideExportArchive(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.ExportArchive, error) {
	if cfg.ExportBucket != "" {
		archive, err := s3.New(ctx, s3.Config{Region: cfg.AWSRegion, Bucket: cfg.ExportBucket, Endpoint: cfg.S3Endpoint}, logger)
		if err != nil {
			return nil, err
		}
		return archive, nil
	}
	if cfg.IsLambda || cfg.ExportDir == "" {
		return nil, nil
	}
	archive, err := fs.New(cfg.ExportDir, logger)
	if err != nil {
		return nil, err
	}
	return archive, nil
}

// ProvideDirectoryLoader creates the load sequence runner.
func ProvideDirectoryLoader(store ports.MemberStore, directory *state.Directory, publisher ports.EventPublisher, logger *zap.Logger) *services.DirectoryLoader {
	return services.NewDirectoryLoader(store, directory, publisher, logger)
}

// ProvideQueryCache creates the query cache.
func ProvideQueryCache() (*QueryCache, func()) {
	cache := NewQueryCache(queryCacheInterval)
	return cache, cache.Stop
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	store ports.MemberStore,
	directory *state.Directory,
	catalog ports.CatalogProvider,
	publisher ports.EventPublisher,
	archive ports.ExportArchive,
	loader *services.DirectoryLoader,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	commandBus.Use(bus.LoggingMiddleware(logger))
	if cfg.EnableMetrics {
		commandBus.Use(bus.MetricsMiddleware(metrics), directorySizeMiddleware(directory, metrics))
	}

	members := commandhandlers.NewMemberHandler(store, directory, catalog, publisher, logger)
	dir := commandhandlers.NewDirectoryHandler(directory, loader, archive, catalog, publisher, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.AddMemberCommand{}, commandHandler(members.HandleAdd)},
		{commands.UpdateMemberCommand{}, commandHandler(members.HandleUpdate)},
		{commands.DeleteMemberCommand{}, commandHandler(func(ctx context.Context, cmd commands.DeleteMemberCommand) (interface{}, error) {
			return nil, members.HandleDelete(ctx, cmd)
		})},
		{commands.ImportDirectoryCommand{}, commandHandler(dir.HandleImport)},
		{commands.ReloadDirectoryCommand{}, commandHandler(dir.HandleReload)},
		{commands.ArchiveExportCommand{}, commandHandler(dir.HandleArchive)},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, err
		}
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	directory *state.Directory,
	catalog ports.CatalogProvider,
	cache *QueryCache,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	if cfg.EnableMetrics {
		queryBus.Use(querybus.MetricsMiddleware(metrics))
	}
	queryBus.Use(querybus.NewCachingMiddleware(cache, directory, queryCacheTTL).Middleware())

	h := queryhandlers.NewDirectoryQueryHandler(directory, catalog, logger)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.ListMembersQuery{}, queryHandler(h.HandleListMembers)},
		{queries.GetMemberQuery{}, queryHandler(h.HandleGetMember)},
		{queries.GetFamilyTreeQuery{}, queryHandler(h.HandleGetFamilyTree)},
		{queries.GetCountryStatsQuery{}, queryHandler(h.HandleGetCountryStats)},
		{queries.GetCountryMembersQuery{}, queryHandler(h.HandleGetCountryMembers)},
		{queries.GetBranchStatsQuery{}, queryHandler(h.HandleGetBranchStats)},
		{queries.GetFamilyHistoryQuery{}, queryHandler(h.HandleGetFamilyHistory)},
		{queries.GetOverviewQuery{}, queryHandler(h.HandleGetOverview)},
		{queries.GetFormOptionsQuery{}, queryHandler(h.HandleGetFormOptions)},
		{queries.ExportDirectoryQuery{}, queryHandler(h.HandleExportDirectory)},
		{queries.ResolveCountryQuery{}, queryHandler(h.HandleResolveCountry)},
		{queries.GetDirectoryStatusQuery{}, queryHandler(h.HandleGetDirectoryStatus)},
	}
	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.handler); err != nil {
			return nil, err
		}
	}
	return queryBus, nil
}

// commandHandler adapts a typed handler method to the bus interface.
func commandHandler[C bus.Command, R any](fn func(context.Context, C) (R, error)) bus.CommandHandler {
	return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
		typed, ok := cmd.(C)
		if !ok {
			return nil, fmt.Errorf("invalid command type %T", cmd)
		}
		return fn(ctx, typed)
	})
}

// queryHandler adapts a typed handler method to the bus interface.
func queryHandler[Q querybus.Query, R any](fn func(context.Context, Q) (R, error)) querybus.QueryHandler {
	return querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
		typed, ok := query.(Q)
		if !ok {
			return nil, fmt.Errorf("invalid query type %T", query)
		}
		return fn(ctx, typed)
	})
}

// directorySizeMiddleware refreshes the directory size gauge after every
// command.
func directorySizeMiddleware(directory *state.Directory, metrics *observability.Collector) bus.Middleware {
	return func(next bus.CommandHandler) bus.CommandHandler {
		return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
			result, err := next.Handle(ctx, cmd)
			metrics.SetDirectorySize(directory.Info().Members)
			return result, err
		})
	}
}
