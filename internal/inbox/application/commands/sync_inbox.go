package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/store"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// SyncInboxCommand pulls emails from the data source into the inbox.
type SyncInboxCommand struct {
	// Replace drops emails the source no longer returns. By default the
	// batch is merged into the current inbox.
	Replace bool
}

// SyncInboxResult describes a completed sync.
type SyncInboxResult struct {
	Source  string
	Notice  *datasource.Notice
	Fetched int
	Added   int
	Updated int
	Stress  domain.StressSnapshot
}

// SyncInboxHandler handles the SyncInboxCommand.
type SyncInboxHandler struct {
	userID string
	emails *store.EmailStore
	source datasource.DataSource
	events eventPublisher
	logger *slog.Logger
}

// NewSyncInboxHandler creates a new SyncInboxHandler.
func NewSyncInboxHandler(
	userID string,
	emails *store.EmailStore,
	source datasource.DataSource,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *SyncInboxHandler {
	logger = observability.OrDefault(logger)
	return &SyncInboxHandler{
		userID: userID,
		emails: emails,
		source: source,
		events: eventPublisher{publisher: publisher, logger: logger},
		logger: logger,
	}
}

// Handle executes the SyncInboxCommand. Fallback data is not an error; it
// comes back with a Notice.
func (h *SyncInboxHandler) Handle(ctx context.Context, cmd SyncInboxCommand) (*SyncInboxResult, error) {
	batch, err := h.source.FetchEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch emails: %w", err)
	}

	before := h.emails.Stress()
	result := &SyncInboxResult{
		Source:  batch.Source,
		Notice:  batch.Notice,
		Fetched: len(batch.Emails),
	}

	if cmd.Replace {
		h.emails.Replace(batch.Emails)
		result.Added = len(batch.Emails)
	} else {
		ingested := h.emails.Ingest(batch.Emails)
		result.Added = ingested.Added
		result.Updated = ingested.Updated
	}
	result.Stress = h.emails.Stress()

	if batch.Notice != nil {
		h.logger.WarnContext(ctx, "inbox synced from sample data", "reason", batch.Notice.Reason)
	}
	h.logger.InfoContext(ctx, "inbox synced",
		"source", batch.Source,
		"fetched", result.Fetched,
		"added", result.Added,
		"updated", result.Updated,
	)

	event, err := domain.NewInboxSyncedEvent(h.userID, domain.InboxSynced{
		Source:   batch.Source,
		Count:    result.Fetched,
		Fallback: batch.Fallback(),
	})
	h.events.publish(ctx, event, err)
	h.events.stressMoved(ctx, h.userID, before, result.Stress)

	return result, nil
}
