package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hazboun-backend/infrastructure/config"
	"hazboun-backend/infrastructure/di"
	"hazboun-backend/interfaces/http/rest"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	if err := rest.Serve(ctx, container); err != nil {
		container.Logger.Error("Server stopped with error", zap.Error(err))
	}
	_ = container.Logger.Sync()
	log.Println("Server stopped")
}
