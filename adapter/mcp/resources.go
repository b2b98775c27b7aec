package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	inboxQueries "github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/queries"
	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose inbox and task data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	if deps.App == nil {
		return fmt.Errorf("app is required")
	}
	app := deps.App

	srv.Resource("calmbox://inbox").
		Name("Inbox").
		Description("All emails in inbox order, with analysis where processed").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			emails, err := app.ListEmailsHandler.Handle(ctx, inboxQueries.ListEmailsQuery{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, emails)
		})

	srv.Resource("calmbox://inbox/urgent").
		Name("Urgent Emails").
		Description("Unread high priority emails").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			return jsonResource(uri, app.StatsHandler.Stats(ctx).Stats.UrgentUnread)
		})

	srv.Resource("calmbox://stress").
		Name("Stress").
		Description("Aggregate stress level of the inbox").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			return jsonResource(uri, app.StatsHandler.Stress(ctx))
		})

	srv.Resource("calmbox://tasks/open").
		Name("Open Tasks").
		Description("Tasks that are not complete, most important first").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			tasks, err := app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{OpenOnly: true, Prioritized: true})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, tasks)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
