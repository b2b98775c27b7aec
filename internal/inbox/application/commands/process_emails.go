package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/store"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// ProcessEmailsCommand analyzes emails. Empty IDs means every unprocessed
// email in the inbox.
type ProcessEmailsCommand struct {
	IDs      []string
	Progress store.ProgressFunc
}

// ProcessEmailsResult reports the outcome per ID and the stress afterwards.
type ProcessEmailsResult struct {
	Report store.ProcessReport
	Stress domain.StressSnapshot
}

// ProcessEmailsHandler handles the ProcessEmailsCommand.
type ProcessEmailsHandler struct {
	userID string
	emails *store.EmailStore
	events eventPublisher
	logger *slog.Logger
}

// NewProcessEmailsHandler creates a new ProcessEmailsHandler.
func NewProcessEmailsHandler(
	userID string,
	emails *store.EmailStore,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *ProcessEmailsHandler {
	logger = observability.OrDefault(logger)
	return &ProcessEmailsHandler{
		userID: userID,
		emails: emails,
		events: eventPublisher{publisher: publisher, logger: logger},
		logger: logger,
	}
}

// Handle executes the ProcessEmailsCommand. Per-email failures are listed in
// the report; only cancellation returns an error, together with the partial
// result.
func (h *ProcessEmailsHandler) Handle(ctx context.Context, cmd ProcessEmailsCommand) (*ProcessEmailsResult, error) {
	ids := cmd.IDs
	if len(ids) == 0 {
		ids = h.emails.PendingIDs()
	}

	before := h.emails.Stress()
	report, err := h.emails.Process(ctx, ids, cmd.Progress)
	result := &ProcessEmailsResult{Report: report, Stress: h.emails.Stress()}

	for _, id := range report.Processed {
		email, ok := h.emails.Get(id)
		if !ok {
			continue
		}
		event, evErr := domain.NewEmailProcessedEvent(email)
		h.events.publish(ctx, event, evErr)
	}
	h.events.stressMoved(ctx, h.userID, before, result.Stress)

	h.logger.InfoContext(ctx, "emails processed",
		"requested", len(ids),
		"processed", len(report.Processed),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"missing", len(report.Missing),
	)

	return result, err
}
