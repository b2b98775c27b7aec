package task

import (
	"time"

	"github.com/felixgeelhaar/calmbox/internal/shared/domain"
)

const (
	RoutingKeyCreated       = "task.created"
	RoutingKeyStatusChanged = "task.status_changed"
)

// Created is emitted when a new task is created.
type Created struct {
	TaskID   string `json:"task_id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
	EmailID  string `json:"email_id,omitempty"`
}

// StatusChanged is emitted when a task moves to another status.
type StatusChanged struct {
	TaskID      string     `json:"task_id"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewCreatedEvent builds the task.created event for t.
func NewCreatedEvent(t *Task) (domain.Event, error) {
	return domain.NewEvent(RoutingKeyCreated, t.ID().String(), Created{
		TaskID:   t.ID().String(),
		Title:    t.Title(),
		Priority: t.Priority().String(),
		EmailID:  t.EmailID(),
	})
}

// NewStatusChangedEvent builds the task.status_changed event for t.
func NewStatusChangedEvent(t *Task, from Status) (domain.Event, error) {
	return domain.NewEvent(RoutingKeyStatusChanged, t.ID().String(), StatusChanged{
		TaskID:      t.ID().String(),
		From:        from.String(),
		To:          t.Status().String(),
		CompletedAt: t.CompletedAt(),
	})
}
