package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"training-planner/handler"
	"training-planner/internal/app"
	"training-planner/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	log := app.NewLogger(cfg)
	slog.SetDefault(log)

	svc, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build service", "err", err)
		os.Exit(1)
	}

	adapter, err := handler.NewLambdaAdapter(svc.Router)
	if err != nil {
		log.Error("failed to create lambda adapter", "err", err)
		os.Exit(1)
	}

	lambda.Start(adapter.Handle)
}
