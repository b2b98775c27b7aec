package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	"github.com/felixgeelhaar/calmbox/internal/productivity/store"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// SyncTasksCommand reloads the task list from the data source.
type SyncTasksCommand struct{}

// SyncTasksResult describes what was loaded.
type SyncTasksResult struct {
	Count  int
	Source string
	Notice *datasource.Notice
}

// SyncTasksHandler handles the SyncTasksCommand.
type SyncTasksHandler struct {
	tasks  *store.TaskStore
	source datasource.DataSource
	logger *slog.Logger
}

// NewSyncTasksHandler creates a new SyncTasksHandler.
func NewSyncTasksHandler(tasks *store.TaskStore, source datasource.DataSource, logger *slog.Logger) *SyncTasksHandler {
	return &SyncTasksHandler{
		tasks:  tasks,
		source: source,
		logger: observability.OrDefault(logger),
	}
}

// Handle executes the SyncTasksCommand.
func (h *SyncTasksHandler) Handle(ctx context.Context, _ SyncTasksCommand) (*SyncTasksResult, error) {
	batch, err := h.source.FetchTasks(ctx)
	if err != nil {
		return nil, err
	}

	h.tasks.Load(batch.Tasks)
	h.logger.InfoContext(ctx, "tasks synced", "count", len(batch.Tasks), "source", batch.Source)

	return &SyncTasksResult{
		Count:  len(batch.Tasks),
		Source: batch.Source,
		Notice: batch.Notice,
	}, nil
}
