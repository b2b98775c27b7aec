package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/inbox/store"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// MarkReadCommand marks one email read.
type MarkReadCommand struct {
	EmailID string
}

// FlagEmailCommand sets or clears the flag of one email.
type FlagEmailCommand struct {
	EmailID string
	Unflag  bool
}

// MarkEmailResult reports whether the email exists. An unknown ID is not an
// error.
type MarkEmailResult struct {
	Found bool
}

// MarkEmailHandler handles MarkReadCommand and FlagEmailCommand.
type MarkEmailHandler struct {
	emails *store.EmailStore
	logger *slog.Logger
}

// NewMarkEmailHandler creates a new MarkEmailHandler.
func NewMarkEmailHandler(emails *store.EmailStore, logger *slog.Logger) *MarkEmailHandler {
	return &MarkEmailHandler{emails: emails, logger: observability.OrDefault(logger)}
}

// MarkRead executes the MarkReadCommand.
func (h *MarkEmailHandler) MarkRead(ctx context.Context, cmd MarkReadCommand) (*MarkEmailResult, error) {
	found := h.emails.MarkRead(cmd.EmailID)
	h.logResult(ctx, "read", cmd.EmailID, found)
	return &MarkEmailResult{Found: found}, nil
}

// Flag executes the FlagEmailCommand.
func (h *MarkEmailHandler) Flag(ctx context.Context, cmd FlagEmailCommand) (*MarkEmailResult, error) {
	var found bool
	action := "flag"
	if cmd.Unflag {
		action = "unflag"
		found = h.emails.Unflag(cmd.EmailID)
	} else {
		found = h.emails.Flag(cmd.EmailID)
	}
	h.logResult(ctx, action, cmd.EmailID, found)
	return &MarkEmailResult{Found: found}, nil
}

func (h *MarkEmailHandler) logResult(ctx context.Context, action, id string, found bool) {
	if !found {
		h.logger.DebugContext(ctx, "ignored mark on unknown email", "action", action, "email_id", id)
		return
	}
	h.logger.DebugContext(ctx, "email marked", "action", action, "email_id", id)
}
