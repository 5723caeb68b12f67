package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"hazboun-backend/infrastructure/di"
	"hazboun-backend/pkg/observability"
)

const shutdownTimeout = 30 * time.Second

// Serve runs the API until ctx is canceled, then drains in-flight requests.
// The directory loads in the background; /ready reports when it is done.
func Serve(ctx context.Context, c *di.Container) error {
	cfg := c.Config

	var metrics *observability.Collector
	if cfg.EnableMetrics {
		metrics = c.Metrics
	}
	handler, err := NewRouter(cfg, c.CommandBus, c.QueryBus, c.Directory, metrics, c.Logger).Setup()
	if err != nil {
		return err
	}

	if c.CatalogWatcher != nil {
		c.CatalogWatcher.Start()
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	loadCtx, cancelLoad := context.WithCancel(ctx)
	defer cancelLoad()
	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		if err := c.Loader.Load(loadCtx); err != nil {
			c.Logger.Warn("Initial directory load failed", zap.Error(err))
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		c.Logger.Info("Starting server",
			zap.String("address", srv.Addr),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		cancelLoad()
		<-loaded
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down server...")
	cancelLoad()
	<-loaded
	c.Directory.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.Logger.Error("Server shutdown error", zap.Error(err))
		return err
	}
	for err := range serveErr {
		return err
	}
	return nil
}
