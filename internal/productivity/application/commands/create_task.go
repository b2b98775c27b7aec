package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/calmbox/internal/productivity/store"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	Title       string
	Description string
	Priority    string
	Status      string
	Category    string
	DueDate     *time.Time
	EmailID     string
	Tags        []string
}

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	Task *task.Task
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	tasks     *store.TaskStore
	source    datasource.DataSource
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(
	tasks *store.TaskStore,
	source datasource.DataSource,
	publisher eventbus.Publisher,
	metrics observability.Metrics,
	logger *slog.Logger,
) *CreateTaskHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &CreateTaskHandler{
		tasks:     tasks,
		source:    source,
		publisher: publisher,
		metrics:   metrics,
		logger:    observability.OrDefault(logger),
	}
}

// Handle executes the CreateTaskCommand. The task is added locally only
// after the data source confirmed it.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	input := store.CreateInput{
		Title:       cmd.Title,
		Description: cmd.Description,
		Category:    cmd.Category,
		DueDate:     cmd.DueDate,
		EmailID:     cmd.EmailID,
		Tags:        cmd.Tags,
	}

	if cmd.Priority != "" {
		priority, err := value_objects.ParsePriority(cmd.Priority)
		if err != nil {
			return nil, err
		}
		input.Priority = priority
	}
	if cmd.Status != "" {
		status, err := task.ParseStatus(cmd.Status)
		if err != nil {
			return nil, err
		}
		input.Status = status
	}

	t, err := h.tasks.Build(input)
	if err != nil {
		return nil, err
	}

	if err := h.source.SaveTask(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	h.tasks.Put(t)

	h.metrics.Counter(observability.MetricTasksCreated, 1)
	h.logger.InfoContext(ctx, "task created", "task_id", t.ID(), "priority", t.Priority())

	event, err := task.NewCreatedEvent(t)
	publish(ctx, h.publisher, h.logger, event, err)

	return &CreateTaskResult{Task: t.Clone()}, nil
}
