package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	shared "github.com/felixgeelhaar/calmbox/internal/shared/domain"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/eventbus"
)

type eventPublisher struct {
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// publish sends event; a broker failure never fails the command.
func (p eventPublisher) publish(ctx context.Context, event shared.Event, err error) {
	if p.publisher == nil {
		return
	}
	if err == nil {
		err = eventbus.PublishEvent(ctx, p.publisher, event)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "failed to publish event",
			"routing_key", event.RoutingKey,
			"error", err,
		)
	}
}

// stressMoved publishes stress.changed when the overall level differs.
func (p eventPublisher) stressMoved(ctx context.Context, userID string, before, after domain.StressSnapshot) {
	if before.OverallLevel == after.OverallLevel {
		return
	}
	p.logger.InfoContext(ctx, "inbox stress changed",
		"from", before.OverallLevel,
		"to", after.OverallLevel,
		"needs_break", after.NeedsBreak,
	)
	event, err := domain.NewStressChangedEvent(userID, before.OverallLevel, after)
	p.publish(ctx, event, err)
}
