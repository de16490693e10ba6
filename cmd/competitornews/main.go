package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/jserafin20190423/competitor-news/internal/app"
	"github.com/jserafin20190423/competitor-news/internal/config"
	"github.com/jserafin20190423/competitor-news/internal/logging"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}
