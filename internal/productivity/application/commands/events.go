package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/store"
	"github.com/felixgeelhaar/calmbox/internal/shared/domain"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/eventbus"
)

// publish sends event; a broker failure never fails the command.
func publish(ctx context.Context, publisher eventbus.Publisher, logger *slog.Logger, event domain.Event, err error) {
	if publisher == nil {
		return
	}
	if err == nil {
		err = eventbus.PublishEvent(ctx, publisher, event)
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			"routing_key", event.RoutingKey,
			"error", err,
		)
	}
}

// reconcile restores the local copy of a task after its change could not be
// confirmed. Authoritative data from the source replaces the whole list;
// when only sample data is available, previous is put back.
func reconcile(ctx context.Context, source datasource.DataSource, tasks *store.TaskStore, logger *slog.Logger, previous *task.Task) {
	batch, err := source.FetchTasks(ctx)
	if err == nil && !batch.Fallback() {
		tasks.Load(batch.Tasks)
		logger.InfoContext(ctx, "reloaded tasks after failed confirmation", "count", len(batch.Tasks))
		return
	}

	if previous != nil {
		tasks.Put(previous)
	}
	logger.WarnContext(ctx, "authoritative tasks unavailable, restored previous task state",
		"task_id", taskID(previous),
		"error", err,
	)
}

func taskID(t *task.Task) string {
	if t == nil {
		return ""
	}
	return t.ID().String()
}
