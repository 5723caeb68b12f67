// Package rest exposes the family directory over HTTP.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"hazboun-backend/application/queries"
	"hazboun-backend/application/state"
	"hazboun-backend/infrastructure/config"
	"hazboun-backend/interfaces/http/rest/handlers"
	"hazboun-backend/interfaces/http/rest/middleware"
	"hazboun-backend/pkg/auth"
	"hazboun-backend/pkg/common"
	"hazboun-backend/pkg/errors"
	"hazboun-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	commandBus handlers.CommandDispatcher
	queryBus   handlers.QueryAsker
	versioner  handlers.Versioner
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewRouter creates a new router instance. metrics may be nil.
func NewRouter(
	cfg *config.Config,
	commandBus handlers.CommandDispatcher,
	queryBus handlers.QueryAsker,
	versioner handlers.Versioner,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		commandBus: commandBus,
		queryBus:   queryBus,
		versioner:  versioner,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() (*chi.Mux, error) {
	errs := errors.NewErrorHandler(rt.logger, !rt.cfg.IsProduction())

	var validator *auth.JWTValidator
	if rt.cfg.AdminAuthEnabled() {
		v, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: rt.cfg.JWTSecret,
			Issuer:    rt.cfg.JWTIssuer,
			Audience:  []string{auth.Audience},
		})
		if err != nil {
			return nil, err
		}
		validator = v
	} else {
		rt.logger.Warn("Admin authentication disabled: ADMIN_JWT_SECRET is not set")
	}
	admin := middleware.NewAdminAuth(validator, rt.cfg.AdminRateLimit, errs, rt.logger)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errs.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: !allowsAnyOrigin(rt.cfg.CORSAllowedOrigins),
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck(errs))
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	members := handlers.NewMemberHandler(rt.commandBus, rt.queryBus, rt.versioner, errs, rt.logger)
	directory := handlers.NewDirectoryHandler(rt.commandBus, rt.queryBus, rt.versioner, rt.cfg.MaxImportBytes, errs, rt.logger)
	views := handlers.NewViewHandler(rt.queryBus, rt.versioner, errs, rt.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Get("/", members.ListMembers)
			r.Get("/{memberID}", members.GetMember)
			r.With(admin.Require).Post("/", members.AddMember)
			r.With(admin.Require).Patch("/{memberID}", members.UpdateMember)
			r.With(admin.Require).Delete("/{memberID}", members.DeleteMember)
		})

		r.Get("/tree", views.FamilyTree)
		r.Route("/locations", func(r chi.Router) {
			r.Get("/", views.Countries)
			r.Get("/resolve", views.ResolveCountry)
			r.Get("/{country}/members", views.CountryMembers)
		})
		r.Get("/branches", views.Branches)
		r.Get("/history", views.History)
		r.Get("/overview", views.Overview)
		r.Get("/form-options", views.FormOptions)

		r.Route("/directory", func(r chi.Router) {
			r.Get("/status", directory.Status)
			r.Post("/reload", directory.Reload)
			r.Get("/export", directory.Export)
			r.With(admin.Require).Post("/export/archive", directory.Archive)
			r.With(admin.Require).Post("/import", directory.Import)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errs.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router, nil
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports 200 only once the directory has loaded.
func (rt *Router) readinessCheck(errs *errors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := rt.queryBus.Ask(r.Context(), queries.GetDirectoryStatusQuery{})
		if err != nil {
			errs.Handle(w, r, err)
			return
		}
		info, _ := result.(state.Info)
		status := http.StatusOK
		if info.Status != state.StatusReady {
			status = http.StatusServiceUnavailable
		}
		common.RespondJSON(w, status, info)
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
