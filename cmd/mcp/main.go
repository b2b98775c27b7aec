package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/internal/app"
	mcpinternal "github.com/felixgeelhaar/calmbox/internal/mcp"
	"github.com/felixgeelhaar/calmbox/pkg/config"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.Format = observability.LogFormat(cfg.LogFormat)
	if cfg.IsDevelopment() {
		logCfg.Level = observability.LogLevelDebug
	}
	logger = observability.NewLogger(logCfg)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	notices, err := container.Bootstrap(ctx)
	if err != nil {
		logger.Error("failed to load inbox", "error", err)
		os.Exit(1)
	}
	for _, notice := range notices {
		logger.Warn(notice.Message, "reason", notice.Reason)
	}

	cliApp := cli.NewApp(container)

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
	if err := cliApp.SaveSession(context.WithoutCancel(ctx), ""); err != nil {
		logger.Warn("failed to save inbox session", "error", err)
	}
}
