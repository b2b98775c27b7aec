package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"github.com/felixgeelhaar/mcp-go"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App    *cli.App
	Logger *slog.Logger
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	t := newToolset(deps)
	registerInboxTools(srv, t)
	registerTaskTools(srv, t)
	return nil
}

// toolset carries the tool handlers as methods so they can be called
// directly in tests.
type toolset struct {
	app    *cli.App
	logger *slog.Logger
}

func newToolset(deps ToolDependencies) *toolset {
	return &toolset{app: deps.App, logger: observability.OrDefault(deps.Logger)}
}

// saveSession persists the inbox after a mutating tool call. Failures are
// logged and the tool result still stands.
func (t *toolset) saveSession(ctx context.Context, source string) {
	if err := t.app.SaveSession(ctx, source); err != nil {
		t.logger.WarnContext(ctx, "failed to save inbox session", "error", err)
	}
}
