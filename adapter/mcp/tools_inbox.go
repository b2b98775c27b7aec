package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	inboxCommands "github.com/felixgeelhaar/calmbox/internal/inbox/application/commands"
	inboxQueries "github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/store"
	"github.com/felixgeelhaar/mcp-go"
)

type inboxSyncInput struct {
	Replace bool `json:"replace,omitempty"`
}

type inboxSyncOutput struct {
	Source  string               `json:"source"`
	Notice  *datasource.Notice   `json:"notice,omitempty"`
	Fetched int                  `json:"fetched"`
	Added   int                  `json:"added"`
	Updated int                  `json:"updated"`
	Stress  inbox.StressSnapshot `json:"stress"`
}

type inboxListInput struct {
	UnreadOnly  bool   `json:"unread_only,omitempty"`
	FlaggedOnly bool   `json:"flagged_only,omitempty"`
	Pending     bool   `json:"pending,omitempty"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
	StressLevel string `json:"stress_level,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

type inboxProcessInput struct {
	IDs []string `json:"ids,omitempty"`
}

type inboxProcessOutput struct {
	Report store.ProcessReport  `json:"report"`
	Stress inbox.StressSnapshot `json:"stress"`
}

type emailIDInput struct {
	EmailID string `json:"email_id" jsonschema:"required"`
}

type inboxFlagInput struct {
	EmailID string `json:"email_id" jsonschema:"required"`
	Unflag  bool   `json:"unflag,omitempty"`
}

type markOutput struct {
	EmailID string `json:"email_id"`
	Found   bool   `json:"found"`
}

type analyzeInput struct {
	Text string `json:"text" jsonschema:"required"`
}

func registerInboxTools(srv *mcp.Server, t *toolset) {
	srv.Tool("inbox.sync").
		Description("Fetch the inbox from the configured data source and merge it").
		Handler(t.syncInbox)

	srv.Tool("inbox.list").
		Description("List emails in inbox order with optional filters").
		Handler(t.listEmails)

	srv.Tool("inbox.show").
		Description("Show one email with its analysis").
		Handler(t.showEmail)

	srv.Tool("inbox.stats").
		Description("Inbox statistics and the current stress level").
		Handler(t.inboxStats)

	srv.Tool("inbox.process").
		Description("Analyze unprocessed emails; pass ids to limit the batch").
		Handler(t.processEmails)

	srv.Tool("inbox.mark_read").
		Description("Mark an email as read").
		Handler(t.markRead)

	srv.Tool("inbox.flag").
		Description("Flag or unflag an email").
		Handler(t.flagEmail)

	srv.Tool("inbox.analyze").
		Description("Score arbitrary text for stress, priority and action items").
		Handler(t.analyzeText)

	srv.Tool("stress.get").
		Description("Aggregate stress level of the inbox and whether a break is advised").
		Handler(t.stress)
}

func (t *toolset) syncInbox(ctx context.Context, input inboxSyncInput) (*inboxSyncOutput, error) {
	result, err := t.app.SyncInboxHandler.Handle(ctx, inboxCommands.SyncInboxCommand{Replace: input.Replace})
	if err != nil {
		return nil, err
	}
	t.saveSession(ctx, result.Source)
	return &inboxSyncOutput{
		Source:  result.Source,
		Notice:  result.Notice,
		Fetched: result.Fetched,
		Added:   result.Added,
		Updated: result.Updated,
		Stress:  result.Stress,
	}, nil
}

func (t *toolset) listEmails(ctx context.Context, input inboxListInput) ([]inbox.Email, error) {
	return t.app.ListEmailsHandler.Handle(ctx, inboxQueries.ListEmailsQuery{
		UnreadOnly:  input.UnreadOnly,
		FlaggedOnly: input.FlaggedOnly,
		Pending:     input.Pending,
		Category:    input.Category,
		Priority:    input.Priority,
		StressLevel: input.StressLevel,
		Limit:       input.Limit,
	})
}

func (t *toolset) showEmail(ctx context.Context, input emailIDInput) (*inbox.Email, error) {
	if input.EmailID == "" {
		return nil, errors.New("email_id is required")
	}
	return t.app.GetEmailHandler.Handle(ctx, inboxQueries.GetEmailQuery{EmailID: input.EmailID})
}

func (t *toolset) inboxStats(ctx context.Context, _ struct{}) (inboxQueries.InboxView, error) {
	return t.app.StatsHandler.Stats(ctx), nil
}

func (t *toolset) stress(ctx context.Context, _ struct{}) (inbox.StressSnapshot, error) {
	return t.app.StatsHandler.Stress(ctx), nil
}

func (t *toolset) processEmails(ctx context.Context, input inboxProcessInput) (*inboxProcessOutput, error) {
	result, err := t.app.ProcessEmailsHandler.Handle(ctx, inboxCommands.ProcessEmailsCommand{IDs: input.IDs})
	if result != nil {
		t.saveSession(context.WithoutCancel(ctx), "")
	}
	if err != nil {
		return nil, err
	}
	return &inboxProcessOutput{Report: result.Report, Stress: result.Stress}, nil
}

func (t *toolset) markRead(ctx context.Context, input emailIDInput) (*markOutput, error) {
	if input.EmailID == "" {
		return nil, errors.New("email_id is required")
	}
	result, err := t.app.MarkEmailHandler.MarkRead(ctx, inboxCommands.MarkReadCommand{EmailID: input.EmailID})
	if err != nil {
		return nil, err
	}
	if result.Found {
		t.saveSession(ctx, "")
	}
	return &markOutput{EmailID: input.EmailID, Found: result.Found}, nil
}

func (t *toolset) flagEmail(ctx context.Context, input inboxFlagInput) (*markOutput, error) {
	if input.EmailID == "" {
		return nil, errors.New("email_id is required")
	}
	result, err := t.app.MarkEmailHandler.Flag(ctx, inboxCommands.FlagEmailCommand{
		EmailID: input.EmailID,
		Unflag:  input.Unflag,
	})
	if err != nil {
		return nil, err
	}
	if result.Found {
		t.saveSession(ctx, "")
	}
	return &markOutput{EmailID: input.EmailID, Found: result.Found}, nil
}

func (t *toolset) analyzeText(ctx context.Context, input analyzeInput) (inbox.Analysis, error) {
	return t.app.AnalyzeTextHandler.Handle(ctx, inboxQueries.AnalyzeTextQuery{Text: input.Text})
}
