package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/adapter/cli/inbox"
	"github.com/felixgeelhaar/calmbox/adapter/cli/serve"
	"github.com/felixgeelhaar/calmbox/adapter/cli/task"
	"github.com/felixgeelhaar/calmbox/internal/app"
	"github.com/felixgeelhaar/calmbox/pkg/config"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var container *app.Container
	cli.SetInitializer(func(ctx context.Context, configFile string, verbose bool) (*cli.App, error) {
		cfg, err := config.LoadFile(configFile)
		if err != nil {
			return nil, err
		}

		logCfg := observability.DefaultLogConfig()
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
		if verbose {
			logCfg.Level = observability.LogLevelDebug
		}
		logger := observability.NewLogger(logCfg)
		cli.SetLogger(logger)

		container, err = app.NewContainer(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		notices, err := container.Bootstrap(ctx)
		if err != nil {
			return nil, err
		}

		cliApp := cli.NewApp(container)
		cliApp.Notices = notices
		return cliApp, nil
	})

	cli.AddCommand(inbox.Cmd)
	cli.AddCommand(task.Cmd)
	cli.AddCommand(serve.Cmd)

	err := cli.Execute(ctx)
	if container != nil {
		container.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
