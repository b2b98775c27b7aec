package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/calmbox/internal/productivity/store"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// ExtractedTaskTag marks tasks created from email action items.
const ExtractedTaskTag = "email"

// ErrEmailNotProcessed is returned when an email has no analysis yet.
var ErrEmailNotProcessed = errors.New("email has not been processed")

// EmailReader looks up emails by ID.
type EmailReader interface {
	Get(id string) (inbox.Email, bool)
}

// ExtractTasksCommand turns the open action items of an email into tasks.
type ExtractTasksCommand struct {
	EmailID string
}

// ExtractTasksResult lists new tasks and the action items that already had one.
type ExtractTasksResult struct {
	Created []*task.Task
	Skipped []string
}

// ExtractTasksHandler handles the ExtractTasksCommand.
type ExtractTasksHandler struct {
	emails    EmailReader
	tasks     *store.TaskStore
	source    datasource.DataSource
	publisher eventbus.Publisher
	metrics   observability.Metrics
	logger    *slog.Logger

	// mu covers the check-then-insert of each action item.
	mu sync.Mutex
}

// NewExtractTasksHandler creates a new ExtractTasksHandler.
func NewExtractTasksHandler(
	emails EmailReader,
	tasks *store.TaskStore,
	source datasource.DataSource,
	publisher eventbus.Publisher,
	metrics observability.Metrics,
	logger *slog.Logger,
) *ExtractTasksHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ExtractTasksHandler{
		emails:    emails,
		tasks:     tasks,
		source:    source,
		publisher: publisher,
		metrics:   metrics,
		logger:    observability.OrDefault(logger),
	}
}

// Handle executes the ExtractTasksCommand. Running it twice for the same
// email creates nothing the second time.
func (h *ExtractTasksHandler) Handle(ctx context.Context, cmd ExtractTasksCommand) (*ExtractTasksResult, error) {
	email, ok := h.emails.Get(cmd.EmailID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", inbox.ErrEmailNotFound, cmd.EmailID)
	}
	if !email.Processed {
		return nil, fmt.Errorf("%w: %s", ErrEmailNotProcessed, cmd.EmailID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result := &ExtractTasksResult{Created: []*task.Task{}, Skipped: []string{}}
	for _, item := range email.ActionItems {
		if item.Completed {
			continue
		}
		if h.tasks.HasEmailTask(email.ID, item.Description) {
			result.Skipped = append(result.Skipped, item.Description)
			continue
		}

		t, err := h.tasks.Build(store.CreateInput{
			Title:       item.Description,
			Description: email.Subject,
			Priority:    priorityFor(email.Priority),
			Category:    email.Category,
			EmailID:     email.ID,
			Tags:        []string{ExtractedTaskTag},
		})
		if err != nil {
			return result, err
		}

		if err := h.source.SaveTask(ctx, t); err != nil {
			return result, fmt.Errorf("failed to save extracted task: %w", err)
		}
		h.tasks.Put(t)
		result.Created = append(result.Created, t.Clone())

		h.metrics.Counter(observability.MetricTasksCreated, 1, observability.T("origin", "email"))
		event, err := task.NewCreatedEvent(t)
		publish(ctx, h.publisher, h.logger, event, err)
	}

	h.logger.InfoContext(ctx, "extracted tasks from email",
		"email_id", email.ID,
		"created", len(result.Created),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func priorityFor(level inbox.Level) value_objects.Priority {
	switch level {
	case inbox.LevelHigh:
		return value_objects.PriorityHigh
	case inbox.LevelLow:
		return value_objects.PriorityLow
	default:
		return value_objects.PriorityMedium
	}
}
