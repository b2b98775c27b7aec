package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/store"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"github.com/google/uuid"
)

// UpdateTaskStatusCommand moves a task to another status.
type UpdateTaskStatusCommand struct {
	TaskID uuid.UUID
	Status string
}

// UpdateTaskStatusResult contains the confirmed task.
type UpdateTaskStatusResult struct {
	Task     *task.Task
	Previous task.Status
	Changed  bool
}

// UpdateTaskStatusHandler handles the UpdateTaskStatusCommand.
type UpdateTaskStatusHandler struct {
	tasks     *store.TaskStore
	source    datasource.DataSource
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewUpdateTaskStatusHandler creates a new UpdateTaskStatusHandler.
func NewUpdateTaskStatusHandler(
	tasks *store.TaskStore,
	source datasource.DataSource,
	publisher eventbus.Publisher,
	metrics observability.Metrics,
	logger *slog.Logger,
) *UpdateTaskStatusHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &UpdateTaskStatusHandler{
		tasks:     tasks,
		source:    source,
		publisher: publisher,
		metrics:   metrics,
		logger:    observability.OrDefault(logger),
	}
}

// Handle applies the change locally, then confirms it with the data source.
// When confirmation fails the local state is reconciled and the error is
// returned.
func (h *UpdateTaskStatusHandler) Handle(ctx context.Context, cmd UpdateTaskStatusCommand) (*UpdateTaskStatusResult, error) {
	status, err := task.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	before, err := h.tasks.Get(cmd.TaskID)
	if err != nil {
		return nil, err
	}

	updated, previous, err := h.tasks.UpdateStatus(cmd.TaskID, status)
	if err != nil {
		return nil, err
	}

	if err := h.source.SaveTask(ctx, updated); err != nil {
		reconcile(ctx, h.source, h.tasks, h.logger, before)
		return nil, fmt.Errorf("failed to confirm status change: %w", err)
	}

	changed := previous != updated.Status()
	if changed {
		h.metrics.Counter(observability.MetricTaskStatusChanges, 1, observability.T("to", updated.Status().String()))
		h.logger.InfoContext(ctx, "task status changed",
			"task_id", updated.ID(),
			"from", previous,
			"to", updated.Status(),
		)

		event, err := task.NewStatusChangedEvent(updated, previous)
		publish(ctx, h.publisher, h.logger, event, err)
	}

	return &UpdateTaskStatusResult{Task: updated, Previous: previous, Changed: changed}, nil
}
