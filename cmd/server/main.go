package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
)

func main() {
	ctx := context.Background()
	logger := logging.NewJSONLogger(os.Stdout, "info")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error(ctx, "config error", "error", err)
		os.Exit(1)
	}
	logger = logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "init error", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server error", "error", err)
		os.Exit(1)
	}
}
