// Package serve runs calmbox as a long-lived process exposing the HTTP API
// and the MCP server.
package serve

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/calmbox/adapter/api"
	"github.com/felixgeelhaar/calmbox/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/calmbox/internal/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	noAPI   bool
	noMCP   bool
	apiAddr string
	mcpAddr string
)

// Cmd starts the HTTP API and the MCP server.
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the inbox over HTTP and MCP",
	Long: `Start the HTTP API and the MCP server side by side.

Both share one inbox session, so a sync through one surface is visible
through the other. Stop with Ctrl-C; in-flight requests get a few seconds
to finish.

Examples:
  calmbox serve
  calmbox serve --no-mcp --addr :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		if noAPI && noMCP {
			return errors.New("nothing to serve: both --no-api and --no-mcp are set")
		}
		if app.Config == nil {
			return errors.New("serve needs a configured application")
		}

		cfg := *app.Config
		if mcpAddr != "" {
			cfg.MCPAddr = mcpAddr
		}
		logger := cli.Logger()

		g, ctx := errgroup.WithContext(cmd.Context())

		if !noAPI {
			serverCfg := api.DefaultServerConfig()
			serverCfg.Addr = cfg.HTTPAddr
			if apiAddr != "" {
				serverCfg.Addr = apiAddr
			}
			server, err := api.NewServer(serverCfg, app, logger)
			if err != nil {
				return err
			}

			g.Go(server.Start)
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
		}

		if !noMCP {
			g.Go(func() error {
				err := mcpinternal.Serve(ctx, &cfg, app, logger)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		}

		err = g.Wait()
		if saveErr := app.SaveSession(context.WithoutCancel(cmd.Context()), ""); saveErr != nil {
			logger.Warn("failed to save inbox session", "error", saveErr)
		}
		return err
	},
}

func init() {
	Cmd.Flags().BoolVar(&noAPI, "no-api", false, "do not start the HTTP API")
	Cmd.Flags().BoolVar(&noMCP, "no-mcp", false, "do not start the MCP server")
	Cmd.Flags().StringVar(&apiAddr, "addr", "", "HTTP listen address (default HTTP_ADDR)")
	Cmd.Flags().StringVar(&mcpAddr, "mcp-addr", "", "MCP listen address (default MCP_ADDR)")
}
