// Package main is the Lambda that archives the directory export whenever
// an EventBridge rule delivers a member change.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"hazboun-backend/infrastructure/config"
	"hazboun-backend/infrastructure/di"
	"hazboun-backend/interfaces/eventhandlers"
)

var archiver *eventhandlers.Archiver

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.IsLambda = true
	if cfg.ExportBucket == "" {
		log.Fatal("EXPORT_BUCKET is required")
	}

	container, _, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}
	archiver = eventhandlers.NewArchiver(container.CommandBus, container.Logger)
}

func main() {
	lambda.Start(archiver.Handle)
}
