package queries

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/store"
	"github.com/google/uuid"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	EmailID     string     `json:"email_id,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ToDTO converts a task.
func ToDTO(t *task.Task) TaskDTO {
	return TaskDTO{
		ID:          t.ID(),
		Title:       t.Title(),
		Description: t.Description(),
		Status:      t.Status().String(),
		Priority:    t.Priority().String(),
		Category:    t.Category(),
		DueDate:     t.DueDate(),
		EmailID:     t.EmailID(),
		Tags:        t.Tags(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
		CompletedAt: t.CompletedAt(),
	}
}

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	Status      string // "", "all" or a status name
	EmailID     string
	OpenOnly    bool // leave out completed tasks
	Prioritized bool // order by priority instead of insertion
	Limit       int  // 0 = no limit
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	tasks *store.TaskStore
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(tasks *store.TaskStore) *ListTasksHandler {
	return &ListTasksHandler{tasks: tasks}
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	var tasks []*task.Task
	if query.Prioritized {
		tasks = h.tasks.PrioritizedList(math.MaxInt)
	} else {
		tasks = h.tasks.List()
	}

	filterStatus := query.Status != "" && query.Status != "all"
	var status task.Status
	if filterStatus {
		var err error
		if status, err = task.ParseStatus(query.Status); err != nil {
			return nil, err
		}
	}

	dtos := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		if filterStatus && t.Status() != status {
			continue
		}
		if query.EmailID != "" && t.EmailID() != query.EmailID {
			continue
		}
		if query.OpenOnly && t.IsComplete() {
			continue
		}
		dtos = append(dtos, ToDTO(t))
		if query.Limit > 0 && len(dtos) == query.Limit {
			break
		}
	}
	return dtos, nil
}

// GetTaskQuery fetches one task.
type GetTaskQuery struct {
	TaskID uuid.UUID
}

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	tasks *store.TaskStore
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(tasks *store.TaskStore) *GetTaskHandler {
	return &GetTaskHandler{tasks: tasks}
}

// Handle executes the GetTaskQuery.
func (h *GetTaskHandler) Handle(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	t, err := h.tasks.Get(query.TaskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	dto := ToDTO(t)
	return &dto, nil
}
