// Package mcp runs the calmbox MCP server.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	mcplocal "github.com/felixgeelhaar/calmbox/adapter/mcp"
	"github.com/felixgeelhaar/calmbox/pkg/config"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"
)

// ServerName identifies calmbox to MCP clients.
const ServerName = "calmbox-mcp"

// Serve starts an MCP server over the inbox and task handlers and blocks
// until the context is canceled.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	logger = observability.OrDefault(logger)

	srv, err := NewServer(cliApp, logger)
	if err != nil {
		return err
	}

	logger.Info("mcp server listening", "addr", cfg.MCPAddr)
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil,
		mcpgo.WithMiddleware(middlewareStack(cfg, logger)...))
}

// NewServer builds the MCP server with every calmbox tool registered.
// Resources and prompts are optional: a failure there is logged and the
// tools stay usable.
func NewServer(cliApp *cli.App, logger *slog.Logger) (*mcpgo.Server, error) {
	if cliApp == nil {
		return nil, errors.New("CLI app is required")
	}
	logger = observability.OrDefault(logger)

	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:    ServerName,
		Version: cli.Version,
		Capabilities: mcpgo.Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
	})

	deps := mcplocal.ToolDependencies{App: cliApp, Logger: logger}
	if err := mcplocal.RegisterCLITools(srv, deps); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	optional := []struct {
		kind     string
		register func(*mcpgo.Server, mcplocal.ToolDependencies) error
	}{
		{"resources", mcplocal.RegisterResources},
		{"prompts", mcplocal.RegisterPrompts},
	}
	for _, o := range optional {
		if err := o.register(srv, deps); err != nil {
			logger.Warn("skipping MCP "+o.kind, "error", err)
		}
	}
	return srv, nil
}

// middlewareStack puts bearer auth in front of the default stack when a
// token is configured.
func middlewareStack(cfg *config.Config, logger *slog.Logger) []middleware.Middleware {
	adapter := mcpLogger{logger: logger}
	stack := middleware.DefaultStack(adapter)

	if cfg.MCPAuthToken == "" {
		logger.Warn("MCP_AUTH_TOKEN not set, MCP requests are unauthenticated")
		return stack
	}

	identities := map[string]*middleware.Identity{
		cfg.MCPAuthToken: {ID: cfg.UserID, Name: cfg.UserID},
	}
	auth := middleware.Auth(
		middleware.BearerTokenAuthenticator(middleware.StaticTokens(identities)),
		middleware.WithAuthLogger(adapter),
	)
	return append([]middleware.Middleware{auth}, stack...)
}

// mcpLogger forwards mcp-go middleware logs to slog.
type mcpLogger struct {
	logger *slog.Logger
}

func (l mcpLogger) Info(msg string, fields ...middleware.Field) {
	l.logger.Info(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Error(msg string, fields ...middleware.Field) {
	l.logger.Error(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Debug(msg string, fields ...middleware.Field) {
	l.logger.Debug(msg, fieldsToArgs(fields)...)
}

func (l mcpLogger) Warn(msg string, fields ...middleware.Field) {
	l.logger.Warn(msg, fieldsToArgs(fields)...)
}

func fieldsToArgs(fields []middleware.Field) []any {
	args := make([]any, 0, len(fields)*2)
	for _, field := range fields {
		args = append(args, field.Key, field.Value)
	}
	return args
}
